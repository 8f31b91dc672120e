package ply

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func splatHeader(vertices int, shExtras int) string {
	var b strings.Builder
	b.WriteString("ply\n")
	b.WriteString("format binary_little_endian 1.0\n")
	b.WriteString("element vertex " + strconv.Itoa(vertices) + "\n")
	for _, name := range []string{"x", "y", "z"} {
		b.WriteString("property float " + name + "\n")
	}
	for i := 0; i < shExtras; i++ {
		b.WriteString("property float f_rest_" + strconv.Itoa(i) + "\n")
	}
	b.WriteString("property uchar red\n")
	b.WriteString("end_header\n")
	return b.String()
}

func TestParse(t *testing.T) {
	header := splatHeader(300, 9)
	payload := make([]byte, 300*49)

	h, rest, err := Parse([]byte(header + string(payload)))
	require.NoError(t, err)
	require.Equal(t, header, h.Text)
	require.Equal(t, 300, h.VertexCount)
	require.Len(t, h.Schema, 13)
	require.Equal(t, Property{Name: "x", Type: "float"}, h.Schema[0])
	require.Equal(t, Property{Name: "red", Type: "uchar"}, h.Schema[12])
	require.Equal(t, payload, rest)

	require.True(t, h.SH.Resolved)
	require.Equal(t, 1, h.SH.Degree)
	require.Equal(t, 9, h.SH.ExtraCount)

	w, err := h.Width()
	require.NoError(t, err)
	require.Equal(t, 12*4+1, w)
}

func TestParseSHDegreeTable(t *testing.T) {
	tests := []struct {
		extras   int
		resolved bool
		degree   int
	}{
		{extras: 0, resolved: true, degree: 0},
		{extras: 9, resolved: true, degree: 1},
		{extras: 24, resolved: true, degree: 2},
		{extras: 45, resolved: true, degree: 3},
		{extras: 7, resolved: false},
		{extras: 46, resolved: false},
	}

	for _, tt := range tests {
		h, _, err := Parse([]byte(splatHeader(10, tt.extras)))
		require.NoError(t, err)
		require.Equal(t, tt.resolved, h.SH.Resolved, "extras=%d", tt.extras)
		if tt.resolved {
			require.Equal(t, tt.degree, h.SH.Degree, "extras=%d", tt.extras)
		} else {
			require.Equal(t, tt.extras, h.SH.ExtraCount)
		}
	}
}

func TestParseTerminatorIsAWholeLine(t *testing.T) {
	// Only a line that is exactly "end_header" terminates the header; a
	// comment or property name containing the token must not.
	header := "ply\n" +
		"format binary_little_endian 1.0\n" +
		"comment exported by end_header-aware tool\n" +
		"element vertex 2\n" +
		"property float x\n" +
		"property float end_header_like\n" +
		"end_header\n"
	payload := make([]byte, 2*8)

	h, rest, err := Parse(append([]byte(header), payload...))
	require.NoError(t, err)
	require.Equal(t, header, h.Text)
	require.Equal(t, 2, h.VertexCount)
	require.Len(t, h.Schema, 2)
	require.Equal(t, payload, rest)
}

func TestParseMissingTerminator(t *testing.T) {
	_, _, err := Parse([]byte("ply\nelement vertex 5\nproperty float x\n"))
	require.ErrorIs(t, err, ErrMissingEndHeader)
}

func TestParseMissingVertexCount(t *testing.T) {
	_, _, err := Parse([]byte("ply\nproperty float x\nend_header\n"))
	require.ErrorIs(t, err, ErrMissingVertexCount)
}

func TestParseTerminatorWithoutNewline(t *testing.T) {
	h, rest, err := Parse([]byte("ply\nelement vertex 0\nend_header"))
	require.NoError(t, err)
	require.Equal(t, 0, h.VertexCount)
	require.Empty(t, rest)
}

func TestRewriteTouchesOnlyTheCount(t *testing.T) {
	header := splatHeader(10000, 24)

	out, err := Rewrite(header, 11)
	require.NoError(t, err)

	inLines := strings.SplitAfter(header, "\n")
	outLines := strings.SplitAfter(out, "\n")
	require.Equal(t, len(inLines), len(outLines))

	for i := range inLines {
		if strings.HasPrefix(inLines[i], "element vertex") {
			require.Equal(t, "element vertex 11\n", outLines[i])
			continue
		}
		require.Equal(t, inLines[i], outLines[i], "line %d changed", i)
	}
}

func TestRewritePreservesOddSpacing(t *testing.T) {
	header := "ply\nelement  vertex   42\nend_header\n"

	out, err := Rewrite(header, 7)
	require.NoError(t, err)
	require.Equal(t, "ply\nelement  vertex   7\nend_header\n", out)
}

func TestRewriteGuaranteesTrailingNewline(t *testing.T) {
	out, err := Rewrite("ply\nelement vertex 3\nend_header", 5)
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(out, "\n"))
	require.Contains(t, out, "element vertex 5\n")
}

func TestRewriteMissingVertexLine(t *testing.T) {
	_, err := Rewrite("ply\nend_header\n", 1)
	require.ErrorIs(t, err, ErrMissingVertexCount)
}

func TestWidthUnknownType(t *testing.T) {
	h, _, err := Parse([]byte("ply\nelement vertex 2\nproperty double x\nend_header\n"))
	require.NoError(t, err)

	_, err = h.Width()
	var unknown *UnknownPropertyTypeError
	require.True(t, errors.As(err, &unknown))
	require.Equal(t, "double", unknown.Type)
	require.Equal(t, "x", unknown.Name)
}
