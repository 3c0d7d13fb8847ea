package mines

import "fmt"

type EventKind int

const (
	EventNone EventKind = iota
	EventWon
	EventLost
)

func (k EventKind) String() string {
	switch k {
	case EventNone:
		return "none"
	case EventWon:
		return "won"
	case EventLost:
		return "lost"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// [EventKind] implements [encoding.TextMarshaler]
func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Event is what a cell action signals to the presentation layer. BestSeconds
// is only set for [EventWon].
type Event struct {
	Kind           EventKind `json:"kind"`
	ElapsedSeconds int       `json:"elapsed_seconds"`
	BestSeconds    int       `json:"best_seconds"`
}

func (e Event) GameOver() bool {
	return e.Kind != EventNone
}
