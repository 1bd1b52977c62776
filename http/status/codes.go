package status

type (
	Code   uint16
	Status string
)

// HTTP status codes as registered with IANA. Only a part of them is listed here: the client
// treats every code in the [100, 999] range as valid, however the ones below are either
// consulted by the parser directly or are common enough to be compared against by callers.
// See: https://www.iana.org/assignments/http-status-codes/http-status-codes.xhtml
const (
	Continue           Code = 100 // RFC 9110, 15.2.1
	SwitchingProtocols Code = 101 // RFC 9110, 15.2.2
	EarlyHints         Code = 103 // RFC 8297

	OK        Code = 200 // RFC 9110, 15.3.1
	Created   Code = 201 // RFC 9110, 15.3.2
	Accepted  Code = 202 // RFC 9110, 15.3.3
	NoContent Code = 204 // RFC 9110, 15.3.5

	MovedPermanently Code = 301 // RFC 9110, 15.4.2
	Found            Code = 302 // RFC 9110, 15.4.3
	NotModified      Code = 304 // RFC 9110, 15.4.5

	BadRequest Code = 400 // RFC 9110, 15.5.1
	NotFound   Code = 404 // RFC 9110, 15.5.5

	InternalServerError Code = 500 // RFC 9110, 15.6.1
	ServiceUnavailable  Code = 503 // RFC 9110, 15.6.4
)

const (
	minCode Code = 100
	maxCode Code = 999
)

// Valid reports whether the code fits into the range of three-digit status codes.
func (c Code) Valid() bool {
	return c >= minCode && c <= maxCode
}

// Informational reports whether the code is 1xx.
func (c Code) Informational() bool {
	return c >= 100 && c < 200
}

// BodyForbidden reports whether a response with such a code never carries a body,
// regardless of framing headers.
func (c Code) BodyForbidden() bool {
	return c.Informational() || c == NoContent || c == NotModified
}
