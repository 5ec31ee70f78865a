package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// renderer prints model answers, as styled Markdown on a terminal and
// verbatim otherwise.
type renderer struct {
	out      io.Writer
	markdown *glamour.TermRenderer
}

func newRenderer(out io.Writer) *renderer {
	r := &renderer{out: out}
	file, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return r
	}

	width := 100
	if termWidth, _, err := term.GetSize(int(file.Fd())); err == nil && termWidth > 0 {
		width = termWidth
	}
	markdown, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err == nil {
		r.markdown = markdown
	}
	return r
}

// Render writes a complete answer.
func (r *renderer) Render(answer string) error {
	if r.markdown != nil {
		styled, err := r.markdown.Render(answer)
		if err == nil {
			_, err = io.WriteString(r.out, styled)
			return err
		}
	}
	_, err := fmt.Fprintln(r.out, strings.TrimRight(answer, "\n"))
	return err
}
