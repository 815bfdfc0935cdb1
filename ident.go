package loom

// ValidName reports whether n is a valid name for generators, params,
// inputs and outputs. The rules are those of a C identifier, except
// that a leading underscore is forbidden (rather than merely reserved)
// and two underscores in a row are also forbidden.
func ValidName(n string) bool {
	if n == "" {
		return false
	}
	if !isAlpha(n[0]) {
		return false
	}
	for i := 1; i < len(n); i++ {
		if !isAlnum(n[i]) {
			return false
		}
		if n[i] == '_' && n[i-1] == '_' {
			return false
		}
	}
	return true
}

func isAlpha(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// Note that this includes '_'.
func isAlnum(c byte) bool {
	return isAlpha(c) || c == '_' || (c >= '0' && c <= '9')
}
