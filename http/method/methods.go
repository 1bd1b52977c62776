package method

// Methods are plain strings on the wire, any token is allowed. These are just the
// well-known ones.
const (
	GET     = "GET"
	HEAD    = "HEAD"
	POST    = "POST"
	PUT     = "PUT"
	DELETE  = "DELETE"
	CONNECT = "CONNECT"
	OPTIONS = "OPTIONS"
	TRACE   = "TRACE"
	PATCH   = "PATCH"
)

// IsHead reports whether responses to the method never carry a body. Methods are
// case-sensitive, so only the exact HEAD token matches.
func IsHead(m string) bool {
	return m == HEAD
}
