package strutil

// LStripWS strips leading spaces and horizontal tabs.
func LStripWS(str string) string {
	for i := 0; i < len(str); i++ {
		switch str[i] {
		case ' ', '\t':
		default:
			return str[i:]
		}
	}

	return ""
}

// LStripSpace strips any leading ASCII whitespace, including vertical tabs and form feeds.
func LStripSpace(str string) string {
	for i := 0; i < len(str); i++ {
		if !IsSpace(str[i]) {
			return str[i:]
		}
	}

	return ""
}

func IsSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	default:
		return false
	}
}

// CutSpaces returns the token before the first space and the rest after the run of spaces
// following it. Only the space character itself is a separator.
func CutSpaces(str string) (token, rest string) {
	for i := 0; i < len(str); i++ {
		if str[i] == ' ' {
			return str[:i], LStripSpaces(str[i+1:])
		}
	}

	return str, ""
}

// LStripSpaces strips leading space characters only.
func LStripSpaces(str string) string {
	for i := 0; i < len(str); i++ {
		if str[i] != ' ' {
			return str[i:]
		}
	}

	return ""
}
