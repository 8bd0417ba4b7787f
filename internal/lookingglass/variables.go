package lookingglass

import (
	"strings"
	"unicode"
)

const (
	bracketPrefix = "variables["
	bracketSuffix = "]"
)

// NormaliseVariables converts request variables to a flat name → value map.
//
// Form submissions name variables "variables[name]". If any key has that
// form, the whole input is treated as bracket-form: the wrapper is stripped
// and keys without it are dropped. Otherwise the input is already flat and
// is copied unchanged.
func NormaliseVariables(raw map[string]string) map[string]string {
	bracket := false
	for k := range raw {
		if isBracketKey(k) {
			bracket = true
			break
		}
	}

	out := make(map[string]string, len(raw))
	for k, v := range raw {
		if !bracket {
			out[k] = v
			continue
		}
		if isBracketKey(k) {
			out[strings.TrimSuffix(strings.TrimPrefix(k, bracketPrefix), bracketSuffix)] = v
		}
	}
	return out
}

func isBracketKey(k string) bool {
	return strings.HasPrefix(k, bracketPrefix) && strings.HasSuffix(k, bracketSuffix) &&
		len(k) > len(bracketPrefix)+len(bracketSuffix)
}

// validValue rejects values that could smuggle another CLI line or terminal
// control sequence to the device.
func validValue(v string) bool {
	for _, r := range v {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}
