package ply

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// endHeaderLine terminates the ASCII header. Everything up to and
	// including this line (and its newline) is header text.
	endHeaderLine = "end_header"

	// shPropertyPrefix marks the extra spherical-harmonics coefficient
	// properties emitted by gaussian-splat exporters.
	shPropertyPrefix = "f_rest_"
)

var (
	// ErrMissingEndHeader is returned when the header terminator line is absent.
	ErrMissingEndHeader = errors.New("ply: missing end_header terminator")

	// ErrMissingVertexCount is returned when no "element vertex N" line exists.
	ErrMissingVertexCount = errors.New("ply: missing element vertex declaration")
)

// shDegreeByExtraCount maps the number of f_rest_* properties to the
// spherical-harmonics degree.
var shDegreeByExtraCount = map[int]int{
	0:  0,
	9:  1,
	24: 2,
	45: 3,
}

// SHDegree is the spherical-harmonics degree derived from the header.
//
// A header whose f_rest_* count matches no known degree yields
// Resolved == false with the offending count; callers decide whether that
// is fatal instead of the parser defaulting silently.
type SHDegree struct {
	Resolved   bool
	Degree     int
	ExtraCount int
}

func (d SHDegree) String() string {
	if !d.Resolved {
		return fmt.Sprintf("unresolved(%d extra properties)", d.ExtraCount)
	}
	return strconv.Itoa(d.Degree)
}

// UnresolvedSHDegreeError indicates an f_rest_* property count that maps to
// no known spherical-harmonics degree.
type UnresolvedSHDegreeError struct {
	ExtraCount int
}

func (e *UnresolvedSHDegreeError) Error() string {
	return fmt.Sprintf("ply: %d spherical-harmonics properties match no known degree (want 0, 9, 24 or 45)", e.ExtraCount)
}

// Header holds the verbatim header text and the facts derived from it.
type Header struct {
	// Text is the raw header bytes, up to and including the end_header
	// line and its trailing newline.
	Text string

	// VertexCount is the declared vertex count.
	VertexCount int

	// Schema lists the vertex properties in declaration order.
	Schema Schema

	// SH is the spherical-harmonics degree derived from the schema.
	SH SHDegree
}

// Width returns the byte width of one vertex record.
func (h *Header) Width() (int, error) {
	return h.Schema.Width()
}

// Parse splits raw into header and vertex payload.
//
// The first end_header line terminates the header. Lines of the form
// "element vertex N" set the vertex count; "property <type> <name>" lines
// append to the schema in declaration order. Unknown property types are NOT
// rejected here; they surface from Schema.Width.
func Parse(raw []byte) (*Header, []byte, error) {
	end, err := headerEnd(raw)
	if err != nil {
		return nil, nil, err
	}

	h := &Header{
		Text:        string(raw[:end]),
		VertexCount: -1,
	}

	extra := 0
	for line := range strings.Lines(h.Text) {
		f := strings.Fields(line)
		switch {
		case len(f) >= 3 && f[0] == "element" && f[1] == "vertex":
			n, err := strconv.Atoi(f[2])
			if err != nil {
				return nil, nil, fmt.Errorf("ply: bad vertex count %q: %w", f[2], err)
			}
			h.VertexCount = n
		case len(f) >= 3 && f[0] == "property":
			h.Schema = append(h.Schema, Property{Name: f[2], Type: f[1]})
			if strings.HasPrefix(f[2], shPropertyPrefix) {
				extra++
			}
		}
	}

	if h.VertexCount < 0 {
		return nil, nil, ErrMissingVertexCount
	}

	deg, ok := shDegreeByExtraCount[extra]
	h.SH = SHDegree{Resolved: ok, Degree: deg, ExtraCount: extra}

	return h, raw[end:], nil
}

// headerEnd returns the byte offset one past the end_header line. Only a
// line that is exactly the terminator counts; a comment or property name
// merely containing the token does not end the header.
func headerEnd(raw []byte) (int, error) {
	for offset := 0; offset < len(raw); {
		next := len(raw)
		line := raw[offset:]
		if i := bytes.IndexByte(line, '\n'); i >= 0 {
			line = line[:i]
			next = offset + i + 1
		}
		if string(line) == endHeaderLine {
			return next, nil
		}
		offset = next
	}
	return 0, ErrMissingEndHeader
}

// Rewrite returns headerText with only the numeral on the "element vertex"
// line replaced by vertexCount. Every other byte, including whitespace and
// line order, is preserved. The result always ends with a newline.
func Rewrite(headerText string, vertexCount int) (string, error) {
	var b strings.Builder
	b.Grow(len(headerText) + 8)

	replaced := false
	for line := range strings.Lines(headerText) {
		if !replaced {
			if f := strings.Fields(line); len(f) >= 3 && f[0] == "element" && f[1] == "vertex" {
				if pos := numeralPos(line, f[2]); pos >= 0 {
					b.WriteString(line[:pos])
					b.WriteString(strconv.Itoa(vertexCount))
					b.WriteString(line[pos+len(f[2]):])
					replaced = true
					continue
				}
			}
		}
		b.WriteString(line)
	}

	if !replaced {
		return "", ErrMissingVertexCount
	}

	out := b.String()
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out, nil
}

// numeralPos locates the count token within the element vertex line.
func numeralPos(line, numeral string) int {
	i := strings.Index(line, "vertex")
	if i < 0 {
		return -1
	}
	j := strings.Index(line[i:], numeral)
	if j < 0 {
		return -1
	}
	return i + j
}
