// Package tables reads and writes travel-time tables in the fixed LocSAT
// layout consumed by the location program.
package tables

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"ttgen/internal/domain"
)

const (
	samplesPerLine = 10
	sampleWidth    = 8
)

// Format renders a table. The output has no trailing newline.
//
//	<phase>
//	<N>    # number of depth samples
//	<depths, %8.2f, 10 per line>
//	<M>    # number of distance samples
//	<distances, same layout>
//	# z = <depth> km
//	<time %12.3f, one per distance>
//	...
func Format(t *domain.TravelTimeTable) []byte {
	var lines []string

	lines = append(lines, t.Phase.Name)
	lines = append(lines, fmt.Sprintf("%d    # number of depth samples", len(t.Grid.Depths)))
	lines = append(lines, sampleLines(t.Grid.Depths)...)
	lines = append(lines, fmt.Sprintf("%d    # number of distance samples", len(t.Grid.Distances)))
	lines = append(lines, sampleLines(t.Grid.Distances)...)

	for i, depth := range t.Grid.Depths {
		lines = append(lines, fmt.Sprintf("# z = %s km", depthLabel(depth)))
		for _, v := range t.Values[i] {
			lines = append(lines, fmt.Sprintf("%12.3f", v))
		}
	}

	return []byte(strings.Join(lines, "\n"))
}

// sampleLines lays samples out 10 per line; the last line is padded with
// blanks to the full width.
func sampleLines(xs []float64) []string {
	var out []string
	var b strings.Builder
	n := 0
	for _, x := range xs {
		fmt.Fprintf(&b, "%*.2f", sampleWidth, x)
		n++
		if n == samplesPerLine {
			out = append(out, b.String())
			b.Reset()
			n = 0
		}
	}
	if n > 0 {
		b.WriteString(strings.Repeat(" ", sampleWidth*(samplesPerLine-n)))
		out = append(out, b.String())
	}
	return out
}

// Whole depths keep one decimal: 5 -> "5.0", 2.5 -> "2.5".
func depthLabel(d float64) string {
	s := strconv.FormatFloat(d, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

type token struct {
	text string
	line int
}

// Parse reads a table written by Format. Text after # on any line is
// ignored. The phase flags come from the catalog.
func Parse(r io.Reader, source string) (*domain.TravelTimeTable, error) {
	toks, err := tokenize(r, source)
	if err != nil {
		return nil, err
	}

	p := &parser{toks: toks, source: source}

	name, err := p.next()
	if err != nil {
		return nil, err
	}

	depths, err := p.samples("depth")
	if err != nil {
		return nil, err
	}
	distances, err := p.samples("distance")
	if err != nil {
		return nil, err
	}

	grid := domain.Grid{Depths: depths, Distances: distances}
	tbl := domain.NewTravelTimeTable(domain.LookupPhase(name.text, true), grid)
	for i := range depths {
		for j := range distances {
			v, err := p.float()
			if err != nil {
				return nil, err
			}
			tbl.Values[i][j] = v
		}
	}

	if p.pos < len(p.toks) {
		t := p.toks[p.pos]
		return nil, &domain.ParseError{Source: source, Line: t.line, Msg: fmt.Sprintf("unexpected trailing value %q", t.text)}
	}
	if err := grid.Validate(); err != nil {
		return nil, &domain.ParseError{Source: source, Msg: err.Error()}
	}

	return tbl, nil
}

func tokenize(r io.Reader, source string) ([]token, error) {
	var toks []token
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Bytes()
		if i := bytes.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		for _, f := range strings.Fields(string(line)) {
			toks = append(toks, token{text: f, line: lineNo})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}
	return toks, nil
}

type parser struct {
	toks   []token
	pos    int
	source string
}

func (p *parser) next() (token, error) {
	if p.pos >= len(p.toks) {
		line := 0
		if n := len(p.toks); n > 0 {
			line = p.toks[n-1].line
		}
		return token{}, &domain.ParseError{Source: p.source, Line: line, Msg: "unexpected end of table"}
	}
	t := p.toks[p.pos]
	p.pos++
	return t, nil
}

func (p *parser) float() (float64, error) {
	t, err := p.next()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(t.text, 64)
	if err != nil {
		return 0, &domain.ParseError{Source: p.source, Line: t.line, Msg: fmt.Sprintf("%q is not a number", t.text)}
	}
	return v, nil
}

func (p *parser) samples(what string) ([]float64, error) {
	t, err := p.next()
	if err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(t.text)
	if err != nil || n <= 0 {
		return nil, &domain.ParseError{Source: p.source, Line: t.line, Msg: fmt.Sprintf("bad number of %s samples %q", what, t.text)}
	}

	out := make([]float64, n)
	for i := range out {
		if out[i], err = p.float(); err != nil {
			return nil, err
		}
	}
	return out, nil
}
