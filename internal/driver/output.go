package driver

import (
	"fmt"
	"strings"
)

// Normalise converts raw session output into text.
//
//   - A string or byte slice is returned as is.
//   - A map keyed by command yields the entry for command. If the device
//     echoed the command differently and there is no such key, the whole
//     map is stringified instead.
//   - A list of lines is joined with newlines.
//   - Anything else is formatted with fmt.Sprint.
func Normalise(raw any, command string) string {
	switch out := raw.(type) {
	case nil:
		return ""
	case string:
		return out
	case []byte:
		return string(out)
	case map[string]string:
		if v, ok := out[command]; ok {
			return v
		}
		return fmt.Sprint(out)
	case map[string]any:
		if v, ok := out[command]; ok {
			return Normalise(v, command)
		}
		return fmt.Sprint(out)
	case []string:
		return strings.Join(out, "\n")
	case []any:
		lines := make([]string, len(out))
		for i, v := range out {
			lines[i] = fmt.Sprint(v)
		}
		return strings.Join(lines, "\n")
	default:
		return fmt.Sprint(out)
	}
}
