package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/basket/go-board/internal/task"
)

// WriteText prints tasks grouped by column for non-interactive output. When
// only is non-nil, the other columns are skipped.
func WriteText(w io.Writer, tasks []task.Task, only *task.Status) error {
	var b strings.Builder
	for _, s := range task.All() {
		if only != nil && *only != s {
			continue
		}
		var col []task.Task
		for _, t := range tasks {
			if t.Status == s {
				col = append(col, t)
			}
		}
		fmt.Fprintf(&b, "%s (%d)\n", s.Label(), len(col))
		for _, t := range col {
			id := int64(0)
			if t.ID != nil {
				id = *t.ID
			}
			desc := strings.ReplaceAll(t.Description, "\n", " / ")
			fmt.Fprintf(&b, "  #%d %s\n", id, desc)
			fmt.Fprintf(&b, "     created %s  updated %s", task.FormatTime(t.CreatedAt), task.FormatTime(t.UpdatedAt))
			if t.Deadline != nil {
				fmt.Fprintf(&b, "  due %s", task.FormatTime(*t.Deadline))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}
