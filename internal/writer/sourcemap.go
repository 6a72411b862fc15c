package writer

import (
	"encoding/json"
	"io"
	"strings"

	"bennypowers.dev/lessc/internal/position"
	"bennypowers.dev/lessc/internal/token"
)

const base64Digits = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// Mapping ties a generated position to a source position. Lines and
// columns are 0-based.
type Mapping struct {
	GeneratedLine   int
	GeneratedColumn int
	Source          int
	Line            int
	Column          int
}

// SourceMapWriter collects mappings and renders a version 3 source map
type SourceMapWriter struct {
	// File is the generated file the map describes
	File string
	// SourceRoot is prepended to the sources by consumers
	SourceRoot string

	sources  []string
	index    map[string]int
	mappings []Mapping
}

// NewSourceMapWriter creates a source map for the generated file
func NewSourceMapWriter(file string) *SourceMapWriter {
	return &SourceMapWriter{File: file, index: map[string]int{}}
}

// WriteMapping records a mapping. Mappings must arrive in output order.
func (s *SourceMapWriter) WriteMapping(generated position.Cursor, original token.Location) {
	src, ok := s.index[original.Source]
	if !ok {
		src = len(s.sources)
		s.index[original.Source] = src
		s.sources = append(s.sources, original.Source)
	}
	m := Mapping{
		GeneratedLine:   generated.Line - 1,
		GeneratedColumn: generated.Column,
		Source:          src,
		Line:            original.Line - 1,
		Column:          original.Column - 1,
	}
	if n := len(s.mappings); n > 0 && s.mappings[n-1] == m {
		return
	}
	s.mappings = append(s.mappings, m)
}

// Sources lists the source files in index order
func (s *SourceMapWriter) Sources() []string {
	return append([]string(nil), s.sources...)
}

// Mappings returns the recorded mappings
func (s *SourceMapWriter) Mappings() []Mapping {
	return append([]Mapping(nil), s.mappings...)
}

// EncodeMappings renders the `mappings` field: lines separated by `;`,
// segments by `,`, every field a base64 VLQ delta
func (s *SourceMapWriter) EncodeMappings() string {
	var b strings.Builder
	line, prevCol, prevSrc, prevLine, prevOrigCol := 0, 0, 0, 0, 0
	first := true
	for _, m := range s.mappings {
		for line < m.GeneratedLine {
			b.WriteByte(';')
			line++
			prevCol = 0
			first = true
		}
		if !first {
			b.WriteByte(',')
		}
		first = false
		writeVLQ(&b, m.GeneratedColumn-prevCol)
		writeVLQ(&b, m.Source-prevSrc)
		writeVLQ(&b, m.Line-prevLine)
		writeVLQ(&b, m.Column-prevOrigCol)
		prevCol, prevSrc, prevLine, prevOrigCol = m.GeneratedColumn, m.Source, m.Line, m.Column
	}
	return b.String()
}

func writeVLQ(b *strings.Builder, v int) {
	u := v << 1
	if v < 0 {
		u = (-v << 1) | 1
	}
	for {
		digit := u & 31
		u >>= 5
		if u > 0 {
			digit |= 32
		}
		b.WriteByte(base64Digits[digit])
		if u == 0 {
			return
		}
	}
}

type sourceMap struct {
	Version    int      `json:"version"`
	File       string   `json:"file,omitempty"`
	SourceRoot string   `json:"sourceRoot,omitempty"`
	Sources    []string `json:"sources"`
	Names      []string `json:"names"`
	Mappings   string   `json:"mappings"`
}

// MarshalJSON renders the source map
func (s *SourceMapWriter) MarshalJSON() ([]byte, error) {
	sources := s.sources
	if sources == nil {
		sources = []string{}
	}
	return json.Marshal(sourceMap{
		Version:    3,
		File:       s.File,
		SourceRoot: s.SourceRoot,
		Sources:    sources,
		Names:      []string{},
		Mappings:   s.EncodeMappings(),
	})
}

// WriteTo writes the source map JSON to w
func (s *SourceMapWriter) WriteTo(w io.Writer) (int64, error) {
	b, err := s.MarshalJSON()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(b)
	return int64(n), err
}

// SourceMappingComment is the trailer linking a stylesheet to its map
func SourceMappingComment(url string) string {
	return "/*# sourceMappingURL=" + url + " */"
}
