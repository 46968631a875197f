package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/basket/go-board/internal/board"
	"github.com/basket/go-board/internal/task"
)

// Theme holds lipgloss colors; empty fields fall back to the defaults.
type Theme struct {
	Accent   string
	Muted    string
	Selected string
}

const defaultColumnWidth = 28

type styles struct {
	title, header, activeHeader lipgloss.Style
	column, activeColumn        lipgloss.Style
	selected, meta, err         lipgloss.Style
	editor, focus               lipgloss.Style
}

func newStyles(th Theme) styles {
	if th.Accent == "" {
		th.Accent = "62"
	}
	if th.Muted == "" {
		th.Muted = "240"
	}
	if th.Selected == "" {
		th.Selected = "86"
	}
	accent := lipgloss.Color(th.Accent)
	muted := lipgloss.Color(th.Muted)
	return styles{
		title:        lipgloss.NewStyle().Bold(true).Foreground(accent),
		header:       lipgloss.NewStyle().Bold(true).Foreground(muted),
		activeHeader: lipgloss.NewStyle().Bold(true).Foreground(accent).Underline(true),
		column:       lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(muted).Padding(0, 1),
		activeColumn: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(0, 1),
		selected:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(th.Selected)),
		meta:         lipgloss.NewStyle().Foreground(muted),
		err:          lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		editor:       lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(1, 2).Width(60),
		focus:        lipgloss.NewStyle().Foreground(lipgloss.Color(th.Selected)),
	}
}

type model struct {
	ctx        context.Context
	board      *board.Board
	draft      board.Draft
	boardKeys  boardKeyMap
	editorKeys editorKeyMap
	help       help.Model
	styles     styles
	width      int
	err        string
}

func newModel(ctx context.Context, b *board.Board, th Theme) model {
	return model{
		ctx:        ctx,
		board:      b,
		boardKeys:  defaultBoardKeys(),
		editorKeys: defaultEditorKeys(),
		help:       help.New(),
		styles:     newStyles(th),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if m.board.Mode() == board.ModeNewTask {
			m.updateEditor(msg)
		} else {
			m.updateBoard(msg)
		}
		if m.board.ShouldQuit() {
			return m, tea.Quit
		}
	}
	return m, nil
}

// updateBoard handles navigation keys. Store calls run inline so each key
// finishes before the next is read.
func (m *model) updateBoard(msg tea.KeyMsg) {
	var err error
	switch {
	case key.Matches(msg, m.boardKeys.Quit):
		m.board.Quit()
	case key.Matches(msg, m.boardKeys.NextColumn):
		m.board.SelectNextStatus()
	case key.Matches(msg, m.boardKeys.MoveLeft):
		err = m.board.MoveTaskToColumn(m.ctx, m.board.SelectedStatus().Prev())
	case key.Matches(msg, m.boardKeys.MoveRight):
		err = m.board.MoveTaskToColumn(m.ctx, m.board.SelectedStatus().Next())
	case key.Matches(msg, m.boardKeys.Up):
		m.board.SelectPrevTask()
	case key.Matches(msg, m.boardKeys.Down):
		m.board.SelectNextTask()
	case key.Matches(msg, m.boardKeys.Delete):
		err = m.board.DeleteTask(m.ctx)
	case key.Matches(msg, m.boardKeys.New):
		m.board.SwitchMode()
	default:
		return
	}
	m.err = humanError(err)
}

func (m *model) updateEditor(msg tea.KeyMsg) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		m.board.Quit()
		return
	case key.Matches(msg, m.editorKeys.Submit):
		m.err = humanError(m.board.SubmitDraft(m.ctx, &m.draft))
		return
	case key.Matches(msg, m.editorKeys.Cancel):
		m.board.CancelDraft(&m.draft)
	case key.Matches(msg, m.editorKeys.ToggleField):
		m.draft.ToggleField()
	case key.Matches(msg, m.editorKeys.Newline):
		m.draft.Newline()
	case key.Matches(msg, m.editorKeys.Backspace):
		m.draft.Backspace()
	case msg.Type == tea.KeySpace:
		m.draft.Type(" ")
	case msg.Type == tea.KeyRunes:
		m.draft.Type(string(msg.Runes))
	default:
		return
	}
	m.err = ""
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render("goboard") + "\n\n")
	if m.board.Mode() == board.ModeNewTask {
		b.WriteString(m.editorView())
		b.WriteString("\n" + m.errLine())
		b.WriteString("\n" + m.help.View(m.editorKeys))
		return b.String()
	}
	b.WriteString(m.columnsView())
	b.WriteString("\n" + m.errLine())
	b.WriteString("\n" + m.help.View(m.boardKeys))
	return b.String()
}

func (m model) errLine() string {
	if m.err == "" {
		return ""
	}
	return m.styles.err.Render("⚠ "+m.err) + "\n"
}

func (m model) columnWidth() int {
	if m.width <= 0 {
		return defaultColumnWidth
	}
	// Border and padding take four cells per column.
	w := m.width/len(task.All()) - 4
	if w < 12 {
		w = 12
	}
	return w
}

func (m model) columnsView() string {
	width := m.columnWidth()
	cols := make([]string, 0, len(task.All()))
	for _, s := range task.All() {
		active := s == m.board.SelectedStatus()
		var b strings.Builder
		header := m.styles.header
		if active {
			header = m.styles.activeHeader
		}
		tasks := m.board.TasksForStatus(s)
		b.WriteString(header.Render(fmt.Sprintf("%s (%d)", s.Label(), len(tasks))) + "\n")
		for i, t := range tasks {
			b.WriteString("\n" + m.taskView(t, active && i == m.board.SelectedIndex()))
		}
		style := m.styles.column
		if active {
			style = m.styles.activeColumn
		}
		cols = append(cols, style.Width(width).Render(b.String()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (m model) taskView(t task.Task, selected bool) string {
	prefix := "  "
	desc := t.Description
	if selected {
		prefix = "> "
		desc = m.styles.selected.Render(desc)
	}
	var b strings.Builder
	b.WriteString(prefix + desc + "\n")
	b.WriteString(m.styles.meta.Render("  created: "+task.FormatTime(t.CreatedAt)) + "\n")
	b.WriteString(m.styles.meta.Render("  updated: "+task.FormatTime(t.UpdatedAt)) + "\n")
	if t.Deadline != nil {
		b.WriteString(m.styles.meta.Render("  due:     "+task.FormatTime(*t.Deadline)) + "\n")
	}
	return b.String()
}

func (m model) editorView() string {
	mk := func(focused bool) string {
		if focused {
			return m.styles.focus.Render("▸ ")
		}
		return "  "
	}
	var b strings.Builder
	b.WriteString(m.styles.title.Render("New task") + "\n\n")
	b.WriteString(mk(!m.draft.EnteringDeadline) + "Description:\n")
	for _, line := range strings.Split(m.draft.Description, "\n") {
		b.WriteString("    " + line + "\n")
	}
	b.WriteString("\n" + mk(m.draft.EnteringDeadline) + "Deadline: [ " + m.draft.Deadline + " ]\n")
	b.WriteString(m.styles.meta.Render("    dd/mm/yyyy hh:mm or dd/mm/yyyy, blank for none"))
	return m.styles.editor.Render(b.String())
}

// Run drives the board interactively until the user quits or ctx is
// cancelled.
func Run(ctx context.Context, b *board.Board, th Theme) error {
	defer bestEffortResetTTY()

	p := tea.NewProgram(newModel(ctx, b, th), tea.WithAltScreen())

	done := make(chan error, 1)
	go func() {
		_, err := p.Run()
		done <- err
	}()

	select {
	case <-ctx.Done():
		p.Quit()
		<-done
		return ctx.Err()
	case err := <-done:
		return err
	}
}
