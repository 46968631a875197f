package task

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownStatus is returned when a serialized status token does not name
// one of the board columns.
var ErrUnknownStatus = errors.New("unknown status")

// Status is a board column. The zero value is Backlog.
type Status int

const (
	Backlog Status = iota
	Today
	InProgress
	Done
	Archived
)

var ring = [...]Status{Backlog, Today, InProgress, Done, Archived}

var tokens = [...]string{
	Backlog:    "backlog",
	Today:      "today",
	InProgress: "in_progress",
	Done:       "done",
	Archived:   "archived",
}

var labels = [...]string{
	Backlog:    "BACKLOG",
	Today:      "TODAY",
	InProgress: "IN PROGRESS",
	Done:       "DONE",
	Archived:   "ARCHIVED",
}

// All returns every status in ring order.
func All() []Status {
	out := make([]Status, len(ring))
	copy(out, ring[:])
	return out
}

// Next returns the following column, wrapping from Archived to Backlog.
func (s Status) Next() Status {
	return ring[(s.index()+1)%len(ring)]
}

// Prev returns the preceding column, wrapping from Backlog to Archived.
func (s Status) Prev() Status {
	return ring[(s.index()+len(ring)-1)%len(ring)]
}

func (s Status) index() int {
	if s < Backlog || int(s) >= len(ring) {
		return 0
	}
	return int(s)
}

// Valid reports whether s is one of the five ring values.
func (s Status) Valid() bool {
	return s >= Backlog && int(s) < len(ring)
}

// String returns the storage token.
func (s Status) String() string {
	if !s.Valid() {
		return fmt.Sprintf("status(%d)", int(s))
	}
	return tokens[s]
}

// Label returns the column title shown on the board.
func (s Status) Label() string {
	if !s.Valid() {
		return s.String()
	}
	return labels[s]
}

// ParseStatus decodes a storage token. Tokens are matched exactly after
// trimming surrounding whitespace; anything else is ErrUnknownStatus.
func ParseStatus(token string) (Status, error) {
	token = strings.TrimSpace(token)
	for i, t := range tokens {
		if t == token {
			return Status(i), nil
		}
	}
	return Backlog, fmt.Errorf("%w: %q", ErrUnknownStatus, token)
}
