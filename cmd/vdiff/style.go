package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/vango-dev/vdiff/pkg/vdom"
)

// styles colors terminal output. Every style is plain when w is not a
// terminal or --no-color is set.
type styles struct {
	insert lipgloss.Style
	remove lipgloss.Style
	update lipgloss.Style
	move   lipgloss.Style
	dim    lipgloss.Style
	good   lipgloss.Style
	bad    lipgloss.Style
	warn   lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	if noColor || !isTerminal(w) {
		plain := r.NewStyle()
		return styles{plain, plain, plain, plain, plain, plain, plain, plain}
	}
	return styles{
		insert: r.NewStyle().Foreground(lipgloss.Color("2")),
		remove: r.NewStyle().Foreground(lipgloss.Color("1")),
		update: r.NewStyle().Foreground(lipgloss.Color("3")),
		move:   r.NewStyle().Foreground(lipgloss.Color("6")),
		dim:    r.NewStyle().Foreground(lipgloss.Color("8")),
		good:   r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		bad:    r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		warn:   r.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
	}
}

func (s styles) op(op vdom.PatchOp) lipgloss.Style {
	switch op {
	case vdom.InsertBeforeNode, vdom.InsertAfterNode, vdom.AppendChildren:
		return s.insert
	case vdom.RemoveNode, vdom.ClearChildren, vdom.RemoveAttributes:
		return s.remove
	case vdom.MoveBeforeNode, vdom.MoveAfterNode:
		return s.move
	default:
		return s.update
	}
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	st := newStyles(w)
	fmt.Fprintf(w, "%s %s\n", st.good.Render("✓"), fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	st := newStyles(w)
	fmt.Fprintf(w, "%s %s\n", st.warn.Render("⚠"), fmt.Sprintf(format, args...))
}
