package app

import (
	"strings"

	"github.com/gdamore/tcell/v2"
)

// commands are the verbs ExecuteCommand accepts, sorted.
var commands = []string{"field", "goto", "png", "q", "quit", "w"}

// maxCommandLen caps the command line.
const maxCommandLen = 4096

// lineEditor holds the text of the command line and the cursor in it.
type lineEditor struct {
	buf []rune
	pos int
}

func newLineEditor(s string) *lineEditor {
	e := &lineEditor{}
	e.set(s)
	return e
}

func (e *lineEditor) String() string { return string(e.buf) }

func (e *lineEditor) set(s string) {
	e.buf = []rune(s)
	e.pos = len(e.buf)
}

func (e *lineEditor) insert(r rune) {
	if len(e.buf) >= maxCommandLen {
		return
	}
	e.buf = append(e.buf[:e.pos], append([]rune{r}, e.buf[e.pos:]...)...)
	e.pos++
}

func (e *lineEditor) backspace() {
	if e.pos > 0 {
		e.buf = append(e.buf[:e.pos-1], e.buf[e.pos:]...)
		e.pos--
	}
}

func (e *lineEditor) del() {
	if e.pos < len(e.buf) {
		e.buf = append(e.buf[:e.pos], e.buf[e.pos+1:]...)
	}
}

// verbSpan returns where the first word starts and ends, leading blanks skipped.
func (e *lineEditor) verbSpan() (start, end int) {
	for start < len(e.buf) && e.buf[start] == ' ' {
		start++
	}
	end = start
	for end < len(e.buf) && e.buf[end] != ' ' {
		end++
	}
	return start, end
}

// verbOK reports whether the first word is a command or the start of one.
func (e *lineEditor) verbOK() bool {
	start, end := e.verbSpan()
	verb := string(e.buf[start:end])
	if verb == "" {
		return true
	}
	for _, c := range commands {
		if strings.HasPrefix(c, verb) {
			return true
		}
	}
	return false
}

// complete extends the first word to the longest prefix shared by every
// command it starts. A unique match gets a trailing space. Completion only
// applies while the cursor is at the end of the first word.
func (e *lineEditor) complete() {
	start, end := e.verbSpan()
	if e.pos != end || end == start {
		return
	}
	verb := string(e.buf[start:end])

	var match []string
	for _, c := range commands {
		if strings.HasPrefix(c, verb) {
			match = append(match, c)
		}
	}
	if len(match) == 0 {
		return
	}
	common := match[0]
	for _, m := range match[1:] {
		for !strings.HasPrefix(m, common) {
			common = common[:len(common)-1]
		}
	}
	for _, r := range common[len(verb):] {
		e.insert(r)
	}
	if len(match) == 1 && (e.pos == len(e.buf) || e.buf[e.pos] != ' ') {
		e.insert(' ')
	}
}

// ReadCommand edits a command on the bottom line of the screen, starting
// from initial. It returns the line and true on Enter, or "" and false on
// Esc or when the screen is finalized. Tab completes the command name; Up
// and Down walk through earlier commands; an unknown name shows in red.
func (a *App) ReadCommand(s tcell.Screen, prompt, initial string) (string, bool) {
	e := newLineEditor(initial)
	hist := len(a.history)

	redraw := func() {
		a.Draw(s)
		a.drawCommandLine(s, prompt, e)
		s.Show()
	}

	redraw()
	for {
		switch ev := s.PollEvent().(type) {
		case nil:
			return "", false
		case *tcell.EventKey:
			switch ev.Key() {
			case tcell.KeyEsc:
				s.HideCursor()
				return "", false
			case tcell.KeyEnter:
				s.HideCursor()
				line := e.String()
				if strings.TrimSpace(line) != "" {
					a.history = append(a.history, line)
				}
				return line, true
			case tcell.KeyBackspace, tcell.KeyBackspace2:
				e.backspace()
			case tcell.KeyDelete:
				e.del()
			case tcell.KeyLeft:
				e.pos = maxInt(0, e.pos-1)
			case tcell.KeyRight:
				e.pos = minInt(len(e.buf), e.pos+1)
			case tcell.KeyHome, tcell.KeyCtrlA:
				e.pos = 0
			case tcell.KeyEnd, tcell.KeyCtrlE:
				e.pos = len(e.buf)
			case tcell.KeyTab:
				e.complete()
			case tcell.KeyUp:
				if hist > 0 {
					hist--
					e.set(a.history[hist])
				}
			case tcell.KeyDown:
				if hist < len(a.history)-1 {
					hist++
					e.set(a.history[hist])
				} else if hist < len(a.history) {
					hist = len(a.history)
					e.set("")
				}
			case tcell.KeyRune:
				e.insert(ev.Rune())
			}
			redraw()
		case *tcell.EventResize:
			s.Sync()
			redraw()
		}
	}
}

// drawCommandLine draws prompt and the edited line over the last status
// line, scrolled so the cursor stays on screen.
func (a *App) drawCommandLine(s tcell.Screen, prompt string, e *lineEditor) {
	w, h := s.Size()
	y := h - 1
	style := tcell.StyleDefault
	a.printTextFixedWidth(s, 0, y, prompt, style.Foreground(tcell.ColorYellow), w)

	x := runeLen(prompt)
	field := maxInt(1, w-x-1)
	start := 0
	if e.pos > field {
		start = e.pos - field
	}

	verbStyle := style
	if !e.verbOK() {
		verbStyle = style.Foreground(tcell.ColorRed)
	}
	_, verbEnd := e.verbSpan()
	for i := start; i < len(e.buf) && i-start < field; i++ {
		st := style
		if i < verbEnd {
			st = verbStyle
		}
		s.SetContent(x+i-start, y, e.buf[i], nil, st)
	}
	s.ShowCursor(x+e.pos-start, y)
}
