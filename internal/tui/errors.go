package tui

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/basket/go-board/internal/task"
)

// humanError extracts the innermost error message from a Go error chain.
// "move task to done: store: update status: database is locked" → "Database is locked"
func humanError(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, task.ErrInvalidDeadline) {
		return "Deadline must be dd/mm/yyyy hh:mm or dd/mm/yyyy"
	}
	msg := err.Error()
	if idx := strings.LastIndex(msg, ": "); idx != -1 && idx+2 < len(msg) {
		inner := msg[idx+2:]
		r, size := utf8.DecodeRuneInString(inner)
		return string(unicode.ToUpper(r)) + inner[size:]
	}
	return msg
}
