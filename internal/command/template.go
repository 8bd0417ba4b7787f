package command

import (
	"fmt"
	"strings"
)

// segment is either literal text or a placeholder name.
type segment struct {
	text        string
	placeholder bool
}

// parseTemplate splits a template into literal and placeholder segments.
func parseTemplate(tmpl string) ([]segment, error) {
	var (
		segs []segment
		lit  strings.Builder
	)

	for i := 0; i < len(tmpl); i++ {
		ch := tmpl[i]
		switch ch {
		case '{':
			if i+1 < len(tmpl) && tmpl[i+1] == '{' {
				lit.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexAny(tmpl[i+1:], "{}")
			if end < 0 || tmpl[i+1+end] != '}' {
				return nil, fmt.Errorf("%w: unclosed '{' at offset %d", ErrMalformedTemplate, i)
			}
			name := tmpl[i+1 : i+1+end]
			if name == "" {
				return nil, fmt.Errorf("%w: empty placeholder at offset %d", ErrMalformedTemplate, i)
			}
			if lit.Len() > 0 {
				segs = append(segs, segment{text: lit.String()})
				lit.Reset()
			}
			segs = append(segs, segment{text: name, placeholder: true})
			i += end + 1
		case '}':
			if i+1 < len(tmpl) && tmpl[i+1] == '}' {
				lit.WriteByte('}')
				i++
				continue
			}
			return nil, fmt.Errorf("%w: single '}' at offset %d", ErrMalformedTemplate, i)
		default:
			lit.WriteByte(ch)
		}
	}

	if lit.Len() > 0 {
		segs = append(segs, segment{text: lit.String()})
	}
	return segs, nil
}

// Placeholders returns the placeholder names in tmpl in order of first
// appearance, without duplicates.
func Placeholders(tmpl string) ([]string, error) {
	segs, err := parseTemplate(tmpl)
	if err != nil {
		return nil, err
	}

	var names []string
	seen := make(map[string]bool)
	for _, s := range segs {
		if s.placeholder && !seen[s.text] {
			seen[s.text] = true
			names = append(names, s.text)
		}
	}
	return names, nil
}

// Render substitutes every {name} placeholder in tmpl with vars[name].
//
// Names are matched exactly. A placeholder without an entry in vars fails
// with a *PlaceholderError; it is never replaced by an empty string. Entries
// in vars that the template does not reference are ignored.
func Render(tmpl string, vars map[string]string) (string, error) {
	segs, err := parseTemplate(tmpl)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.Grow(len(tmpl))
	for _, s := range segs {
		if !s.placeholder {
			b.WriteString(s.text)
			continue
		}
		v, ok := vars[s.text]
		if !ok {
			return "", &PlaceholderError{Name: s.text}
		}
		b.WriteString(v)
	}
	return b.String(), nil
}
