package http1

// Phase names the state the parser is currently in.
type Phase uint8

const (
	PhaseStatusLine Phase = iota + 1
	PhaseHeader
	PhaseBody
	PhaseChunkLength
	PhaseChunkComplete
	PhaseTrailer
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseStatusLine:
		return "status line"
	case PhaseHeader:
		return "header"
	case PhaseBody:
		return "body"
	case PhaseChunkLength:
		return "chunk length"
	case PhaseChunkComplete:
		return "chunk complete"
	case PhaseTrailer:
		return "trailer"
	case PhaseComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// state is a tagged variant: every implementation carries only the data meaningful for it.
type state interface {
	phase() Phase
}

type (
	statusLine struct{}

	// header accumulates the raw text of the header currently being read, as it may
	// still be continued by a folded line.
	header struct {
		current string
	}

	// body is a plain body. If unsized, it lasts until the connection is closed.
	body struct {
		left  uint64
		sized bool
	}

	chunkLength struct{}

	chunkBody struct {
		left uint64
	}

	// chunkComplete awaits the CRLF terminating a chunk's data.
	chunkComplete struct{}

	trailer struct{}

	complete struct{}
)

func (statusLine) phase() Phase    { return PhaseStatusLine }
func (header) phase() Phase        { return PhaseHeader }
func (body) phase() Phase          { return PhaseBody }
func (chunkLength) phase() Phase   { return PhaseChunkLength }
func (chunkBody) phase() Phase     { return PhaseBody }
func (chunkComplete) phase() Phase { return PhaseChunkComplete }
func (trailer) phase() Phase       { return PhaseTrailer }
func (complete) phase() Phase      { return PhaseComplete }
