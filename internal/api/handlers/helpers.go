package handlers

import (
	"encoding/json"
	"net/http"
	"ttgen/internal/platform/log"

	"github.com/vmihailenco/msgpack/v5"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnw("encode failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
}

// writeMsgPack encodes with the json tags so both formats share field names.
func writeMsgPack(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/x-msgpack")
	w.WriteHeader(status)
	enc := msgpack.NewEncoder(w)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		log.Warnw("encode failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
}

func writeText(w http.ResponseWriter, r *http.Request, status int, b []byte) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(b); err != nil {
		log.Warnw("write failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}
