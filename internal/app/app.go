package app

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"ovlmap/internal/calc"
	"ovlmap/internal/compress"
	"ovlmap/internal/grid"
	"ovlmap/internal/plot"
	"ovlmap/internal/storage"

	"github.com/gdamore/tcell/v2"
)

// App is a terminal heatmap viewer for one sweep result. Screen row 0 of
// the map is the highest y; screen column 0 is the lowest x.
type App struct {
	// layout
	LeftGutter  int
	HeaderLines int
	StatusLines int
	CellWidth   int

	// data
	Result  *grid.Result
	Program *calc.Program // optional; enables per-equation status
	Field   string        // ovlx | ovly
	matrix  [][]float64   // Field reshaped to NY×NX
	lo, hi  float64

	// Compression of the file :w writes when no name is given.
	Compression compress.Type

	// cursor / view, in screen-cell coordinates
	CurRow  int
	CurCol  int
	ViewRow int
	ViewCol int

	Message     string
	Quit        bool
	HelpVisible bool

	history []string // command lines entered with ':'
}

func NewApp(r *grid.Result) *App {
	a := &App{
		LeftGutter:  9,
		HeaderLines: 1,
		StatusLines: 2,
		CellWidth:   2,
		Result:      r,
		Field:       "ovlx",
		Compression: compress.None,
	}
	a.rescale()
	return a
}

func (a *App) rows() int { return a.Result.Domain.NY }
func (a *App) cols() int { return a.Result.Domain.NX }

// Cell returns the result row under screen cell (r, c).
func (a *App) Cell(r, c int) grid.Row {
	return a.Result.At(a.rows()-1-r, c)
}

// Value returns the displayed field at screen cell (r, c).
func (a *App) Value(r, c int) float64 {
	return a.matrix[a.rows()-1-r][c]
}

func (a *App) rescale() {
	m, err := a.Result.Reshape(a.Field)
	if err != nil {
		return
	}
	a.matrix = m
	vals, _ := a.Result.Field(a.Field)
	st := grid.Describe(vals)
	a.lo, a.hi = st.Min, st.Max
}

// SetField switches the displayed field.
func (a *App) SetField(name string) error {
	if name != "ovlx" && name != "ovly" {
		return fmt.Errorf("%w: %q", grid.ErrUnknownField, name)
	}
	a.Field = name
	a.rescale()
	return nil
}

func (a *App) toggleField() {
	if a.Field == "ovlx" {
		_ = a.SetField("ovly")
	} else {
		_ = a.SetField("ovlx")
	}
}

// ----------------------------- Events / Input -----------------------------

func (a *App) HandleKeyEvent(s tcell.Screen, ev *tcell.EventKey) {
	// help popup swallows keys until closed
	if a.HelpVisible {
		if ev.Key() == tcell.KeyEsc || ev.Rune() == '?' {
			a.HelpVisible = false
		}
		return
	}

	switch ev.Key() {
	case tcell.KeyEsc:
		a.Message = ""
	case tcell.KeyCtrlC:
		a.Quit = true
	case tcell.KeyTab:
		a.toggleField()
	case tcell.KeyUp:
		if a.CurRow > 0 {
			a.CurRow--
		}
	case tcell.KeyDown:
		if a.CurRow < a.rows()-1 {
			a.CurRow++
		}
	case tcell.KeyLeft:
		if a.CurCol > 0 {
			a.CurCol--
		}
	case tcell.KeyRight:
		if a.CurCol < a.cols()-1 {
			a.CurCol++
		}
	case tcell.KeyPgUp:
		vr, _ := a.ComputeVisible(s)
		a.CurRow = maxInt(0, a.CurRow-vr)
	case tcell.KeyPgDn:
		vr, _ := a.ComputeVisible(s)
		a.CurRow = minInt(a.rows()-1, a.CurRow+vr)
	case tcell.KeyHome:
		a.CurRow, a.CurCol = 0, 0
	case tcell.KeyEnd:
		a.CurRow, a.CurCol = a.rows()-1, a.cols()-1
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			a.Quit = true
		case 'f':
			a.toggleField()
		case 'k':
			a.HandleKeyEvent(s, tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone))
		case 'j':
			a.HandleKeyEvent(s, tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone))
		case 'h':
			a.HandleKeyEvent(s, tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone))
		case 'l':
			a.HandleKeyEvent(s, tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone))
		case ':':
			command, ok := a.ReadCommand(s, ":", "")
			if ok {
				a.ExecuteCommand(command)
			}
		case '?':
			a.HelpVisible = true
		}
	}
}

// ----------------------------- Drawing -----------------------------

func (a *App) Draw(s tcell.Screen) {
	s.Clear()
	w, h := s.Size()

	// header: field name and color range
	hdrStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	title := fmt.Sprintf("%s  min=%s  max=%s  %dx%d", a.Field, formatValue(a.lo), formatValue(a.hi), a.cols(), a.rows())
	a.printTextFixedWidth(s, 0, 0, title, hdrStyle, w)

	y := a.HeaderLines
	for r := a.ViewRow; r < a.rows(); r++ {
		if y >= h-a.StatusLines {
			break
		}
		// y value in the gutter
		gutterStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)
		if r == a.CurRow {
			gutterStyle = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorYellow)
		}
		label := strconv.FormatFloat(a.Cell(r, 0).Y, 'g', 4, 64)
		a.printTextFixedWidth(s, 0, y, label, gutterStyle, a.LeftGutter-1)

		x := a.LeftGutter
		for c := a.ViewCol; c < a.cols(); c++ {
			if x+a.CellWidth > w {
				break
			}
			v := a.Value(r, c)
			ch, style := a.cellStyle(v)
			if r == a.CurRow && c == a.CurCol {
				ch = '◆'
				style = style.Foreground(tcell.ColorWhite).Bold(true)
			}
			for dx := 0; dx < a.CellWidth; dx++ {
				s.SetContent(x+dx, y, ch, nil, style)
			}
			x += a.CellWidth
		}
		y++
	}

	// Status area
	statusY := maxInt(0, h-a.StatusLines)
	statusStyle := tcell.StyleDefault.Background(tcell.ColorGray).Foreground(tcell.ColorWhite)
	a.printTextFixedWidth(s, 0, statusY, a.StatusText(), statusStyle, w)
	second := a.Message
	if second == "" {
		second = a.EquationText()
	}
	a.printTextFixedWidth(s, 0, statusY+1, second, statusStyle, w)

	if a.HelpVisible {
		help := "\n arrows / hjkl - move \n PgUp/PgDn/Home/End - jump \n Tab / f - toggle ovlx/ovly \n : - command, Tab completes, Up/Down recall \n :w file[.zst|.s2|.lz4] - export CSV \n :png file - export image \n :field ovlx|ovly \n :goto x y \n :q - quit \n "
		a.drawHelpPopup(s, help)
	}

	s.HideCursor()
	s.Show()
}

// StatusText describes the cell under the cursor.
func (a *App) StatusText() string {
	row := a.Cell(a.CurRow, a.CurCol)
	return fmt.Sprintf("x=%s y=%s  ovlx=%s ovly=%s  failed=%d/%d",
		formatValue(row.X), formatValue(row.Y),
		formatValue(row.OVLX), formatValue(row.OVLY),
		a.Result.Failed, a.Result.Len())
}

// EquationText lists the equations that fail under the cursor.
func (a *App) EquationText() string {
	if a.Program == nil {
		return ""
	}
	row := a.Cell(a.CurRow, a.CurCol)
	var failed []string
	for _, c := range a.Program.Contributions(row.X, row.Y) {
		if c.Err != nil {
			failed = append(failed, c.Label.String())
		}
	}
	if len(failed) == 0 {
		return fmt.Sprintf("%d equations ok", a.Program.Len())
	}
	return "skipped: " + strings.Join(failed, " ")
}

func (a *App) cellStyle(v float64) (rune, tcell.Style) {
	if math.IsNaN(v) {
		return '·', tcell.StyleDefault.Foreground(tcell.ColorRed)
	}
	return ' ', tcell.StyleDefault.Background(ColorFor(a.Field, v, a.lo, a.hi))
}

// ColorFor maps v onto the scale of field between lo and hi.
func ColorFor(field string, v, lo, hi float64) tcell.Color {
	if !isFinite(v) || !isFinite(lo) || !isFinite(hi) {
		return tcell.ColorDefault
	}
	if hi <= lo {
		hi = lo + 1
	}
	v = math.Max(lo, math.Min(hi, v))
	c := plot.ColormapFor(field)(v, lo, hi)
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// ----------------------------- Helpers -----------------------------

func (a *App) printTextFixedWidth(s tcell.Screen, x, y int, str string, style tcell.Style, width int) {
	runes := []rune(str)
	for i := 0; i < width; i++ {
		var ch rune = ' '
		if i < len(runes) {
			ch = runes[i]
		}
		if x+i >= 0 && y >= 0 {
			s.SetContent(x+i, y, ch, nil, style)
		}
	}
}

func (a *App) drawHelpPopup(s tcell.Screen, help string) {
	w, h := s.Size()
	if w < 10 || h < 5 {
		return
	}

	padding := 2
	maxPW := w - 6
	maxPH := h - 4

	innerW := minInt(maxPW-padding*2, 50)
	if innerW < 30 {
		innerW = maxInt(30, maxPW-padding*2)
	}
	innerW = minInt(innerW, maxPW-padding*2)

	lines := wrapText(help, innerW)
	if len(lines) > maxPH-padding*2 {
		lines = lines[:maxInt(0, maxPH-padding*2)]
	}
	innerH := maxInt(len(lines), 3)

	pw := innerW + padding*2
	ph := innerH + padding*2
	left := (w - pw) / 2
	top := (h - ph) / 2

	borderStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorDefault)
	bgStyle := tcell.StyleDefault.Background(tcell.ColorDefault).Foreground(tcell.ColorWhite)

	for yy := 0; yy < ph; yy++ {
		for xx := 0; xx < pw; xx++ {
			s.SetContent(left+xx, top+yy, ' ', nil, bgStyle)
		}
	}

	s.SetContent(left, top, '┌', nil, borderStyle)
	s.SetContent(left+pw-1, top, '┐', nil, borderStyle)
	s.SetContent(left, top+ph-1, '└', nil, borderStyle)
	s.SetContent(left+pw-1, top+ph-1, '┘', nil, borderStyle)
	for xx := 1; xx < pw-1; xx++ {
		s.SetContent(left+xx, top, '─', nil, borderStyle)
		s.SetContent(left+xx, top+ph-1, '─', nil, borderStyle)
	}
	for yy := 1; yy < ph-1; yy++ {
		s.SetContent(left, top+yy, '│', nil, borderStyle)
		s.SetContent(left+pw-1, top+yy, '│', nil, borderStyle)
	}

	vOffset := (ph - padding*2 - innerH) / 2
	for i, ln := range lines {
		a.printTextFixedWidth(s, left+padding, top+padding+vOffset+i, ln, bgStyle, innerW)
	}
}

func wrapText(s string, max int) []string {
	if max <= 2 {
		return []string{s}
	}

	var result []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			continue
		}

		cur := " "
		for _, w := range words {
			if runeLen(w) > max-1 {
				if runeLen(cur) > 1 {
					result = append(result, cur)
				}
				for _, c := range chunkString(w, max-1) {
					result = append(result, " "+c)
				}
				cur = " "
				continue
			}
			if runeLen(cur)+1+runeLen(w) <= max {
				if runeLen(cur) > 1 {
					cur += " " + w
				} else {
					cur += w
				}
			} else {
				result = append(result, cur)
				cur = " " + w
			}
		}
		if runeLen(cur) > 1 {
			result = append(result, cur)
		}
	}
	return result
}

func runeLen(s string) int {
	return len([]rune(s))
}

func chunkString(s string, size int) []string {
	r := []rune(s)
	var out []string
	for i := 0; i < len(r); i += size {
		out = append(out, string(r[i:minInt(i+size, len(r))]))
	}
	return out
}

// ----------------------------- Commands / Storage -----------------------------

// ExecuteCommand runs one ':' command. The outcome is left in Message.
func (a *App) ExecuteCommand(cmd string) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return
	}
	switch parts[0] {
	case "q", "quit":
		a.Quit = true
	case "w":
		filename := storage.DefaultResultName(a.cols(), a.rows(), a.Compression)
		if len(parts) >= 2 {
			filename = parts[1]
		}
		if err := storage.SaveResult(filename, a.Result); err != nil {
			a.Message = fmt.Sprintf("error saving %s: %v", filename, err)
			return
		}
		a.Message = "saved " + filename
	case "png":
		if len(parts) < 2 {
			a.Message = "usage: png file"
			return
		}
		if err := plot.Save(parts[1], a.Result, a.Field); err != nil {
			a.Message = fmt.Sprintf("error drawing %s: %v", parts[1], err)
			return
		}
		a.Message = "saved " + parts[1]
	case "field":
		if len(parts) < 2 {
			a.toggleField()
			return
		}
		if err := a.SetField(parts[1]); err != nil {
			a.Message = err.Error()
		}
	case "goto":
		if len(parts) < 3 {
			a.Message = "usage: goto x y"
			return
		}
		x, errX := strconv.ParseFloat(parts[1], 64)
		y, errY := strconv.ParseFloat(parts[2], 64)
		if errX != nil || errY != nil {
			a.Message = "goto: bad coordinates"
			return
		}
		a.MoveTo(x, y)
	default:
		a.Message = "unknown command: " + parts[0]
	}
}

// MoveTo puts the cursor on the cell nearest to (x, y).
func (a *App) MoveTo(x, y float64) {
	a.CurCol = nearest(a.Result.Domain.XCenters(), x)
	a.CurRow = a.rows() - 1 - nearest(a.Result.Domain.YCenters(), y)
}

func nearest(centers []float64, v float64) int {
	best := 0
	for i, c := range centers {
		if math.Abs(c-v) < math.Abs(centers[best]-v) {
			best = i
		}
	}
	return best
}

// ----------------------------- Viewport / Geometry -----------------------------

func (a *App) ComputeVisible(s tcell.Screen) (visibleRows, visibleCols int) {
	w, h := s.Size()
	visibleRows = maxInt(1, h-a.HeaderLines-a.StatusLines)
	visibleCols = maxInt(1, (w-a.LeftGutter)/maxInt(1, a.CellWidth))
	return visibleRows, visibleCols
}

func (a *App) EnsureCursorVisible(s tcell.Screen) {
	if s == nil {
		return
	}
	visibleRows, visibleCols := a.ComputeVisible(s)

	if a.CurCol < a.ViewCol {
		a.ViewCol = a.CurCol
	} else if a.CurCol >= a.ViewCol+visibleCols {
		a.ViewCol = a.CurCol - visibleCols + 1
	}
	if a.CurRow < a.ViewRow {
		a.ViewRow = a.CurRow
	} else if a.CurRow >= a.ViewRow+visibleRows {
		a.ViewRow = a.CurRow - visibleRows + 1
	}
	a.ViewCol = maxInt(0, a.ViewCol)
	a.ViewRow = maxInt(0, a.ViewRow)
}

// Run draws and handles events until the user quits.
func (a *App) Run(s tcell.Screen) {
	for !a.Quit {
		a.EnsureCursorVisible(s)
		a.Draw(s)
		switch ev := s.PollEvent().(type) {
		case *tcell.EventKey:
			a.HandleKeyEvent(s, ev)
		case *tcell.EventResize:
			s.Sync()
		case nil:
			return
		}
	}
}

// ----------------------------- Misc -----------------------------

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
