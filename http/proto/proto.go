package proto

import "strings"

type Proto uint8

const (
	Unknown Proto = 0
	HTTP10  Proto = 1 << iota
	HTTP11

	HTTP1 = HTTP10 | HTTP11
)

func (p Proto) String() string {
	lut := [...]string{HTTP10: "HTTP/1.0", HTTP11: "HTTP/1.1"}
	if int(p) >= len(lut) {
		return ""
	}

	return lut[p]
}

const (
	http10Token  = "HTTP/1.0"
	http1xPrefix = "HTTP/1."
)

// FromToken classifies the version token of a status line. The exact HTTP/1.0 token is
// HTTP10, any other token starting with HTTP/1. is treated as HTTP11. Everything else is
// Unknown.
func FromToken(token string) Proto {
	switch {
	case token == http10Token:
		return HTTP10
	case strings.HasPrefix(token, http1xPrefix):
		return HTTP11
	default:
		return Unknown
	}
}
