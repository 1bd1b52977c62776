package hexconv

// Halfbyte maps a character to its hex value. Non-hex characters are mapped to 0xFF.
var Halfbyte = [256]byte{}

func init() {
	for i := range Halfbyte {
		Halfbyte[i] = 0xFF
	}

	for c := byte('0'); c <= '9'; c++ {
		Halfbyte[c] = c - '0'
	}

	for c := byte('a'); c <= 'f'; c++ {
		Halfbyte[c] = c - 'a' + 10
		Halfbyte[c-'a'+'A'] = c - 'a' + 10
	}
}

// ParseUint parses the leading hex digits of str, stopping at the first non-hex character
// (e.g. a chunk extension separator). Leading spaces and tabs are skipped. ok is false if
// there were no digits at all or the value overflows maxDigits digits.
func ParseUint(str string, maxDigits int) (value uint64, ok bool) {
	i := 0
	for i < len(str) && (str[i] == ' ' || str[i] == '\t') {
		i++
	}

	digits := 0
	for ; i < len(str); i++ {
		val := Halfbyte[str[i]]
		if val == 0xFF {
			break
		}

		if digits++; digits > maxDigits {
			return 0, false
		}

		value = (value << 4) | uint64(val)
	}

	return value, digits > 0
}
