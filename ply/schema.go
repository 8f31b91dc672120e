package ply

import "fmt"

// Property is a single typed column of a vertex record.
type Property struct {
	Name string
	Type string
}

// Schema is the ordered list of vertex properties as declared in the header.
// Order is significant: it governs both the byte layout of a record and the
// emission order of property lines when a header is rewritten.
type Schema []Property

// typeWidths maps recognized PLY type tokens to their byte widths.
// Unrecognized tokens are a hard error, never a default width.
var typeWidths = map[string]int{
	"float32": 4,
	"float":   4,
	"float64": 8,
	"uint8":   1,
	"uchar":   1,
	"int32":   4,
	"int":     4,
	"uint32":  4,
}

// UnknownPropertyTypeError indicates a property whose type token has no
// known byte width.
type UnknownPropertyTypeError struct {
	Name string
	Type string
}

func (e *UnknownPropertyTypeError) Error() string {
	return fmt.Sprintf("ply: unknown property type %q for property %q", e.Type, e.Name)
}

// Width returns the byte width of one vertex record.
func (s Schema) Width() (int, error) {
	width := 0
	for _, p := range s {
		w, ok := typeWidths[p.Type]
		if !ok {
			return 0, &UnknownPropertyTypeError{Name: p.Name, Type: p.Type}
		}
		width += w
	}
	return width, nil
}

// Pairs returns the schema as ordered [name, type] pairs, the form the
// header_info.json sidecar uses.
func (s Schema) Pairs() [][2]string {
	pairs := make([][2]string, len(s))
	for i, p := range s {
		pairs[i] = [2]string{p.Name, p.Type}
	}
	return pairs
}

// SchemaFromPairs rebuilds a Schema from sidecar [name, type] pairs,
// preserving order.
func SchemaFromPairs(pairs [][2]string) Schema {
	s := make(Schema, len(pairs))
	for i, p := range pairs {
		s[i] = Property{Name: p[0], Type: p[1]}
	}
	return s
}
