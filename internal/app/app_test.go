package app

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/require"

	"ovlmap/internal/calc"
	"ovlmap/internal/compress"
	"ovlmap/internal/grid"
	"ovlmap/internal/header"
	"ovlmap/internal/model"
	"ovlmap/internal/storage"
)

func newScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, s.Init())
	s.SetSize(80, 24)
	t.Cleanup(s.Fini)
	return s
}

func newApp(t *testing.T, n int) *App {
	t.Helper()
	p := calc.Compile(header.Parse(model.SampleTable()))
	res, err := grid.Sample(p, grid.Domain{XMin: 0, XMax: 1, YMin: 0, YMax: 1, NX: n, NY: n})
	require.NoError(t, err)
	a := NewApp(res)
	a.Program = p
	return a
}

func key(k tcell.Key) *tcell.EventKey { return tcell.NewEventKey(k, 0, tcell.ModNone) }

func runeKey(r rune) *tcell.EventKey { return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone) }

func screenLine(s tcell.SimulationScreen, y int) string {
	cells, w, _ := s.GetContents()
	var b strings.Builder
	for x := 0; x < w; x++ {
		if r := cells[y*w+x].Runes; len(r) > 0 {
			b.WriteRune(r[0])
		} else {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

func TestCellOrientation(t *testing.T) {
	a := newApp(t, 4)
	top := a.Cell(0, 0)
	bottom := a.Cell(3, 3)
	require.Greater(t, top.Y, bottom.Y)
	require.Less(t, top.X, bottom.X)
	require.Equal(t, a.Result.At(3, 0), top)
}

func TestCursorMovement(t *testing.T) {
	s := newScreen(t)
	a := newApp(t, 3)

	a.HandleKeyEvent(s, key(tcell.KeyUp))
	a.HandleKeyEvent(s, key(tcell.KeyLeft))
	require.Equal(t, 0, a.CurRow)
	require.Equal(t, 0, a.CurCol)

	for i := 0; i < 5; i++ {
		a.HandleKeyEvent(s, key(tcell.KeyDown))
		a.HandleKeyEvent(s, runeKey('l'))
	}
	require.Equal(t, 2, a.CurRow)
	require.Equal(t, 2, a.CurCol)

	a.HandleKeyEvent(s, key(tcell.KeyHome))
	require.Equal(t, [2]int{0, 0}, [2]int{a.CurRow, a.CurCol})
	a.HandleKeyEvent(s, key(tcell.KeyEnd))
	require.Equal(t, [2]int{2, 2}, [2]int{a.CurRow, a.CurCol})
}

func TestToggleField(t *testing.T) {
	s := newScreen(t)
	a := newApp(t, 3)
	require.Equal(t, "ovlx", a.Field)

	a.HandleKeyEvent(s, key(tcell.KeyTab))
	require.Equal(t, "ovly", a.Field)
	st := a.Result.Summary().OVLY
	require.Equal(t, st.Min, a.lo)
	require.Equal(t, st.Max, a.hi)

	a.HandleKeyEvent(s, runeKey('f'))
	require.Equal(t, "ovlx", a.Field)

	require.Error(t, a.SetField("x"))
	require.Equal(t, "ovlx", a.Field)
}

func TestHelpPopupSwallowsKeys(t *testing.T) {
	s := newScreen(t)
	a := newApp(t, 3)

	a.HandleKeyEvent(s, runeKey('?'))
	require.True(t, a.HelpVisible)
	a.HandleKeyEvent(s, runeKey('q'))
	require.False(t, a.Quit)
	a.Draw(s)
	a.HandleKeyEvent(s, key(tcell.KeyEsc))
	require.False(t, a.HelpVisible)

	a.HandleKeyEvent(s, runeKey('q'))
	require.True(t, a.Quit)
}

func TestDrawStatus(t *testing.T) {
	s := newScreen(t)
	a := newApp(t, 5)
	a.CurRow, a.CurCol = 4, 0

	a.Draw(s)
	require.True(t, strings.HasPrefix(screenLine(s, 0), "ovlx  min="))
	status := screenLine(s, 22)
	require.Contains(t, status, "x=0.1 y=0.1")
	require.Contains(t, status, "failed=0/25")
	require.Contains(t, screenLine(s, 23), "equations ok")

	cells, w, _ := s.GetContents()
	cur := cells[(a.HeaderLines+4)*w+a.LeftGutter]
	require.Equal(t, '◆', cur.Runes[0])
}

func TestDrawNaN(t *testing.T) {
	s := newScreen(t)
	res := newApp(t, 2).Result
	res.Rows[0].OVLX = math.NaN()
	a := NewApp(res)
	require.True(t, math.IsNaN(a.Value(1, 0)))

	a.Draw(s)
	// bottom-left cell holds row 0
	cells, w, _ := s.GetContents()
	c := cells[(a.HeaderLines+1)*w+a.LeftGutter]
	require.Equal(t, '·', c.Runes[0])
	require.Contains(t, screenLine(s, 22), "ovlx=")
}

func TestColorFor(t *testing.T) {
	require.Equal(t, tcell.ColorDefault, ColorFor("ovlx", math.NaN(), 0, 1))
	require.Equal(t, tcell.ColorDefault, ColorFor("ovlx", 0.5, math.NaN(), 1))
	require.Equal(t, tcell.ColorDefault, ColorFor("ovly", math.Inf(1), 0, 1))
	require.NotEqual(t, ColorFor("ovlx", 0, 0, 1), ColorFor("ovlx", 1, 0, 1))
	require.Equal(t, ColorFor("ovlx", -5, 0, 1), ColorFor("ovlx", 0, 0, 1))
	require.Equal(t, ColorFor("ovlx", 3, 3, 3), ColorFor("ovlx", 3, 3, 4))

	// ovly uses its own scale
	require.NotEqual(t, ColorFor("ovlx", 0, 0, 1), ColorFor("ovly", 0, 0, 1))
	require.Equal(t, tcell.NewRGBColor(13, 8, 135), ColorFor("ovly", 0, 0, 1))
}

func TestExecuteCommand(t *testing.T) {
	dir := t.TempDir()
	a := newApp(t, 4)

	out := filepath.Join(dir, "res.csv.zst")
	a.ExecuteCommand("w " + out)
	require.Equal(t, "saved "+out, a.Message)
	back, err := storage.LoadResult(out)
	require.NoError(t, err)
	require.Equal(t, a.Result.Len(), back.Len())

	img := filepath.Join(dir, "map.png")
	a.ExecuteCommand("png " + img)
	require.Equal(t, "saved "+img, a.Message)
	_, err = os.Stat(img)
	require.NoError(t, err)

	a.ExecuteCommand("png")
	require.Equal(t, "usage: png file", a.Message)

	t.Chdir(dir)
	a.Compression = compress.S2
	a.ExecuteCommand("w")
	name := storage.DefaultResultName(4, 4, compress.S2)
	require.Equal(t, "saved "+name, a.Message)
	back, err = storage.LoadResult(filepath.Join(dir, name))
	require.NoError(t, err)
	require.Equal(t, a.Result.Len(), back.Len())

	a.ExecuteCommand("field ovly")
	require.Equal(t, "ovly", a.Field)
	a.ExecuteCommand("field nope")
	require.Contains(t, a.Message, "unknown field")

	a.ExecuteCommand("goto 0.9 0.1")
	require.Equal(t, 3, a.CurCol)
	require.Equal(t, 3, a.CurRow)
	a.ExecuteCommand("goto a b")
	require.Equal(t, "goto: bad coordinates", a.Message)

	a.ExecuteCommand("frobnicate")
	require.Equal(t, "unknown command: frobnicate", a.Message)

	a.ExecuteCommand("   ")
	require.False(t, a.Quit)
	a.ExecuteCommand("q")
	require.True(t, a.Quit)
}

func TestEquationText(t *testing.T) {
	b := model.NewBuilder()
	l := model.Label{Family: model.FamilyX, Index: 1}
	require.NoError(t, b.Term(l, "1", "1"))
	b.Companion(l, model.VarY, "log(y)")
	m := b.Build()

	p := calc.Compile(m)
	res, err := grid.Sample(p, grid.Domain{XMin: 0, XMax: 1, YMin: -1, YMax: 1, NX: 1, NY: 2})
	require.NoError(t, err)

	a := NewApp(res)
	require.Equal(t, "", a.EquationText())

	a.Program = p
	a.CurRow = 1 // y = -0.5
	require.Equal(t, "skipped: X1", a.EquationText())
	a.CurRow = 0 // y = 0.5
	require.Equal(t, "1 equations ok", a.EquationText())
}

func TestReadCommand(t *testing.T) {
	s := newScreen(t)
	a := newApp(t, 3)

	s.InjectKey(tcell.KeyRune, 'w', tcell.ModNone)
	s.InjectKey(tcell.KeyRune, 'x', tcell.ModNone)
	s.InjectKey(tcell.KeyBackspace2, 0, tcell.ModNone)
	s.InjectKey(tcell.KeyEnter, 0, tcell.ModNone)
	got, ok := a.ReadCommand(s, ":", "")
	require.True(t, ok)
	require.Equal(t, "w", got)

	s.InjectKey(tcell.KeyRune, 'z', tcell.ModNone)
	s.InjectKey(tcell.KeyEsc, 0, tcell.ModNone)
	got, ok = a.ReadCommand(s, ":", "")
	require.False(t, ok)
	require.Equal(t, "", got)
	require.Equal(t, []string{"w"}, a.history)
}

func TestReadCommandCompletesAndRecalls(t *testing.T) {
	s := newScreen(t)
	a := newApp(t, 3)

	s.InjectKey(tcell.KeyRune, 'g', tcell.ModNone)
	s.InjectKey(tcell.KeyTab, 0, tcell.ModNone)
	s.InjectKey(tcell.KeyRune, '1', tcell.ModNone)
	s.InjectKey(tcell.KeyEnter, 0, tcell.ModNone)
	got, _ := a.ReadCommand(s, ":", "")
	require.Equal(t, "goto 1", got)

	s.InjectKey(tcell.KeyUp, 0, tcell.ModNone)
	s.InjectKey(tcell.KeyUp, 0, tcell.ModNone)
	s.InjectKey(tcell.KeyEnter, 0, tcell.ModNone)
	got, _ = a.ReadCommand(s, ":", "")
	require.Equal(t, "goto 1", got)

	s.InjectKey(tcell.KeyUp, 0, tcell.ModNone)
	s.InjectKey(tcell.KeyDown, 0, tcell.ModNone)
	s.InjectKey(tcell.KeyEnter, 0, tcell.ModNone)
	got, _ = a.ReadCommand(s, ":", "field")
	require.Equal(t, "", got)
}

func TestLineEditor(t *testing.T) {
	cases := []struct{ in, want string }{
		{"g", "goto "},
		{"fi", "field "},
		{"p", "png "},
		{"w", "w "},
		{"q", "q"},
		{"qu", "quit "},
		{"zz", "zz"},
		{"", ""},
	}
	for _, tc := range cases {
		e := newLineEditor(tc.in)
		e.complete()
		require.Equal(t, tc.want, e.String(), tc.in)
	}

	e := newLineEditor("gxyz")
	e.pos = 1
	e.complete()
	require.Equal(t, "gxyz", e.String())

	e = newLineEditor("ab")
	e.pos = 1
	e.insert('X')
	e.del()
	e.backspace()
	require.Equal(t, "a", e.String())
	require.Equal(t, 1, e.pos)

	require.True(t, newLineEditor("  go").verbOK())
	require.True(t, newLineEditor("").verbOK())
	require.False(t, newLineEditor("wq").verbOK())
}

func TestCommandLineHighlightsUnknownVerb(t *testing.T) {
	s := newScreen(t)
	a := newApp(t, 3)

	fg := func(x int) tcell.Color {
		cells, w, _ := s.GetContents()
		c, _, _ := cells[23*w+x].Style.Decompose()
		return c
	}

	a.drawCommandLine(s, ":", newLineEditor("zz 1"))
	s.Show()
	require.Equal(t, ":zz 1", strings.TrimRight(screenLine(s, 23), " "))
	require.Equal(t, tcell.ColorRed, fg(1))
	require.NotEqual(t, tcell.ColorRed, fg(4))

	a.drawCommandLine(s, ":", newLineEditor("go"))
	s.Show()
	require.NotEqual(t, tcell.ColorRed, fg(1))
}

func TestColonRunsCommand(t *testing.T) {
	s := newScreen(t)
	a := newApp(t, 3)

	s.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	s.InjectKey(tcell.KeyEnter, 0, tcell.ModNone)
	a.HandleKeyEvent(s, runeKey(':'))
	require.True(t, a.Quit)
}

func TestEnsureCursorVisible(t *testing.T) {
	s := newScreen(t)
	a := newApp(t, 60)

	a.CurRow, a.CurCol = 59, 59
	a.EnsureCursorVisible(s)
	rows, cols := a.ComputeVisible(s)
	require.Equal(t, 21, rows)
	require.Equal(t, 35, cols)
	require.Equal(t, 59-rows+1, a.ViewRow)
	require.Equal(t, 59-cols+1, a.ViewCol)

	a.CurRow, a.CurCol = 0, 0
	a.EnsureCursorVisible(s)
	require.Equal(t, 0, a.ViewRow)
	require.Equal(t, 0, a.ViewCol)
}

func TestWrapText(t *testing.T) {
	lines := wrapText("\n aa bb cc \n dddddddddd \n", 6)
	require.Equal(t, []string{" aa bb", " cc", " ddddd", " ddddd"}, lines)
}
