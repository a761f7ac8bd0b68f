package render

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Template is the display form of one operator.
//
// Format holds positional placeholders "{0}", "{1}", ... replaced by the
// rendered operands. Literal braces are written "{{" and "}}", so the LaTeX
// fraction is `\frac{{{0}}}{{{1}}}`.
type Template struct {
	Format string `json:"format" yaml:"format"`

	// Prefix marks unary operators written before their operand ("-{0}").
	Prefix bool `json:"prefix,omitempty" yaml:"prefix,omitempty"`

	// Enclosed lists the placeholders the format already delimits, such as
	// both slots of a fraction or the slot of "|{0}|". Operands rendered
	// there never get parentheses.
	Enclosed []int `json:"enclosed,omitempty" yaml:"enclosed,omitempty"`
}

// Encloses reports whether placeholder i is delimited by the format.
func (t Template) Encloses(i int) bool {
	return slices.Contains(t.Enclosed, i)
}

// Slots returns the number of placeholders, one past the highest index used.
func (t Template) Slots() (int, error) {
	segs, err := parse(t.Format)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, s := range segs {
		if s.slot >= 0 {
			n = max(n, s.slot+1)
		}
	}
	return n, nil
}

// Apply substitutes args into the format.
func (t Template) Apply(args ...string) (string, error) {
	segs, err := parse(t.Format)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, s := range segs {
		if s.slot < 0 {
			sb.WriteString(s.text)
			continue
		}
		if s.slot >= len(args) {
			return "", fmt.Errorf("template %q: placeholder {%d} has no operand", t.Format, s.slot)
		}
		sb.WriteString(args[s.slot])
	}
	return sb.String(), nil
}

// segment is literal text (slot < 0) or a placeholder.
type segment struct {
	text string
	slot int
}

func parse(format string) ([]segment, error) {
	var (
		segs []segment
		lit  strings.Builder
	)
	flush := func() {
		if lit.Len() > 0 {
			segs = append(segs, segment{text: lit.String(), slot: -1})
			lit.Reset()
		}
	}

	for i := 0; i < len(format); i++ {
		c := format[i]
		switch {
		case c == '{' && i+1 < len(format) && format[i+1] == '{':
			lit.WriteByte('{')
			i++
		case c == '}' && i+1 < len(format) && format[i+1] == '}':
			lit.WriteByte('}')
			i++
		case c == '{':
			end := strings.IndexByte(format[i:], '}')
			if end < 0 {
				return nil, fmt.Errorf("template %q: unclosed placeholder at offset %d", format, i)
			}
			slot, err := strconv.Atoi(format[i+1 : i+end])
			if err != nil || slot < 0 || strconv.Itoa(slot) != format[i+1:i+end] {
				return nil, fmt.Errorf("template %q: invalid placeholder %q", format, format[i:i+end+1])
			}
			flush()
			segs = append(segs, segment{slot: slot})
			i += end
		case c == '}':
			return nil, fmt.Errorf("template %q: unmatched '}' at offset %d", format, i)
		default:
			lit.WriteByte(c)
		}
	}
	flush()
	return segs, nil
}
