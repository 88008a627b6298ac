package tables

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"ttgen/internal/domain"
	"ttgen/internal/platform/obs"
)

// DirSink writes each table to <dir>/<prefix>.<phase>.
type DirSink struct {
	Dir    string
	Prefix string
}

func NewDirSink(dir, prefix string) (*DirSink, error) {
	if dir == "" {
		return nil, errors.New("table sink: output directory is empty")
	}
	if prefix == "" {
		return nil, errors.New("table sink: file prefix is empty")
	}
	if err := domain.ValidatePhaseName(prefix); err != nil {
		return nil, fmt.Errorf("table sink: file prefix: %w", err)
	}
	return &DirSink{Dir: dir, Prefix: prefix}, nil
}

func (s *DirSink) Path(phase string) string {
	return filepath.Join(s.Dir, s.Prefix+"."+phase)
}

// WriteTable replaces the phase's file atomically, so readers never see a
// half-written table.
func (s *DirSink) WriteTable(ctx context.Context, t *domain.TravelTimeTable) (err error) {
	defer obs.Time(ctx, "tables.WriteTable")(&err)

	if t == nil {
		return errors.New("write table: table is nil")
	}
	if err := domain.ValidatePhaseName(t.Phase.Name); err != nil {
		return fmt.Errorf("write table: %w", err)
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("write table %s: create output dir: %w", t.Phase.Name, err)
	}

	tmp, err := os.CreateTemp(s.Dir, "."+s.Prefix+"."+t.Phase.Name+".*")
	if err != nil {
		return fmt.Errorf("write table %s: create temp file: %w", t.Phase.Name, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(Format(t)); err != nil {
		tmp.Close()
		return fmt.Errorf("write table %s: %w", t.Phase.Name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write table %s: close: %w", t.Phase.Name, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("write table %s: chmod: %w", t.Phase.Name, err)
	}
	if err := os.Rename(tmp.Name(), s.Path(t.Phase.Name)); err != nil {
		return fmt.Errorf("write table %s: rename: %w", t.Phase.Name, err)
	}

	return nil
}
