package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"runtime"

	"golang.org/x/term"
)

// stdin is the terminal read by the browse list and overwrite prompts.
var stdin = os.Stdin

type key int

const (
	keyNone key = iota
	keyUp
	keyDown
	keyLeft
	keyRight
	keyEnter
	keyQuit
)

// readKey decodes one key press. It understands ANSI arrow sequences and
// the 0/224 prefixed codes of the Windows console.
func readKey(r *bufio.Reader) (key, error) {
	b1, err := r.ReadByte()
	if err != nil {
		return keyNone, err
	}

	if b1 == 0 || b1 == 224 {
		b2, _ := r.ReadByte()
		switch b2 {
		case 72:
			return keyUp, nil
		case 80:
			return keyDown, nil
		case 75:
			return keyLeft, nil
		case 77:
			return keyRight, nil
		case 13:
			return keyEnter, nil
		}
		return keyNone, nil
	}

	switch b1 {
	case 27: // ESC or CSI
		if r.Buffered() == 0 {
			return keyQuit, nil
		}
		if b2, _ := r.ReadByte(); b2 != '[' || r.Buffered() == 0 {
			return keyNone, nil
		}
		b3, _ := r.ReadByte()
		switch b3 {
		case 'A':
			return keyUp, nil
		case 'B':
			return keyDown, nil
		case 'C':
			return keyRight, nil
		case 'D':
			return keyLeft, nil
		}
	case '\r', '\n':
		return keyEnter, nil
	case 3, 'q': // Ctrl-C
		return keyQuit, nil
	}
	return keyNone, nil
}

// pager tracks the selected entry of a list shown one page at a time.
type pager struct {
	n        int
	size     int
	page     int
	selected int // within the page
}

func (p *pager) pages() int {
	return (p.n + p.size - 1) / p.size
}

// bounds returns the half-open index range of the current page.
func (p *pager) bounds() (start, end int) {
	start = p.page * p.size
	end = start + p.size
	if end > p.n {
		end = p.n
	}
	return start, end
}

// index returns the selected entry.
func (p *pager) index() int {
	return p.page*p.size + p.selected
}

// move applies a navigation key and reports whether the view changed.
func (p *pager) move(k key) bool {
	start, end := p.bounds()
	switch k {
	case keyUp:
		if p.selected > 0 {
			p.selected--
			return true
		}
	case keyDown:
		if p.selected < end-start-1 {
			p.selected++
			return true
		}
	case keyLeft:
		if p.page > 0 {
			p.page--
			p.selected = 0
			return true
		}
	case keyRight:
		if p.page < p.pages()-1 {
			p.page++
			p.selected = 0
			return true
		}
	}
	return false
}

// interactiveSelect shows lines one page at a time on the terminal. ↑/↓
// move within a page, ←/→ change pages, Enter calls show with the selected
// index and Esc quits. When stdin is not a terminal the lines are printed
// as a plain list.
func interactiveSelect(w io.Writer, lines []string, pageSize int, show func(i int)) {
	if len(lines) == 0 {
		return
	}

	fd := int(stdin.Fd())
	if !term.IsTerminal(fd) {
		for _, l := range lines {
			fmt.Fprintln(w, l)
		}
		return
	}

	if runtime.GOOS == "windows" {
		enableVT()
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintln(w, "(interactive selection not supported on this terminal)")
		return
	}
	defer func() { _ = term.Restore(fd, oldState) }()

	reader := bufio.NewReader(stdin)
	p := &pager{n: len(lines), size: pageSize}

	// Raw mode needs explicit carriage returns.
	redraw := func() {
		fmt.Fprint(w, "\033[H\033[2J")
		start, end := p.bounds()
		for i := start; i < end; i++ {
			prefix := "  "
			if i == p.index() {
				prefix = "> "
			}
			fmt.Fprint(w, prefix+lines[i]+"\r\n")
		}
		fmt.Fprintf(w, "(↑/↓ navigate, ←/→ page, Enter details, Esc quit)  Page %d/%d\r\n", p.page+1, p.pages())
	}

	redraw()
	for {
		k, err := readKey(reader)
		if err != nil {
			return
		}
		switch k {
		case keyQuit:
			fmt.Fprint(w, "\r\n")
			return
		case keyEnter:
			_ = term.Restore(fd, oldState)
			fmt.Fprintln(w)
			show(p.index())

			fmt.Fprint(w, "\n(press Enter to return)")
			_, _ = bufio.NewReader(stdin).ReadBytes('\n')

			oldState, err = term.MakeRaw(fd)
			if err != nil {
				return
			}
			if runtime.GOOS == "windows" {
				enableVT()
			}
			reader = bufio.NewReader(stdin)
			redraw()
		default:
			if p.move(k) {
				redraw()
			}
		}
	}
}
