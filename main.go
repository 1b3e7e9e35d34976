package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"

	"ovlmap/internal/app"
	"ovlmap/internal/calc"
	"ovlmap/internal/compress"
	"ovlmap/internal/grid"
	"ovlmap/internal/header"
	"ovlmap/internal/model"
	"ovlmap/internal/plot"
	"ovlmap/internal/storage"

	"github.com/gdamore/tcell/v2"
)

const usage = `usage: ovlmap [flags]

Reads a coefficient table, samples OVLX and OVLY on a grid of cell centers
and writes x,y,ovlx,ovly as CSV.

One of -in or -sample is required.

  ovlmap -sample -n 50
  ovlmap -sample -table coeffs.csv
  ovlmap -in coeffs.xlsx -sheet Coefficients -out map.csv.zst -png map.png
  ovlmap -in coeffs.csv -validate
  cat coeffs.csv | ovlmap -in - -out - -q

flags:
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("ovlmap", flag.ContinueOnError)
	fs.SetOutput(stderr)

	in := fs.String("in", "", "coefficient table (.csv or .xlsx), - for stdin")
	sheet := fs.String("sheet", "", "worksheet of an .xlsx input, default first")
	sample := fs.Bool("sample", false, "use the built-in sample table")
	xmin := fs.Float64("xmin", 0, "lower x bound")
	xmax := fs.Float64("xmax", 1, "upper x bound")
	ymin := fs.Float64("ymin", 0, "lower y bound")
	ymax := fs.Float64("ymax", 1, "upper y bound")
	n := fs.Int("n", 50, "cells per axis")
	nx := fs.Int("nx", 0, "cells along x, overrides -n")
	ny := fs.Int("ny", 0, "cells along y, overrides -n")
	out := fs.String("out", "", "result file, - for stdout; .zst, .s2 or .lz4 compresses")
	compression := fs.String("compress", "none", "compression of the default result file: none, zstd, s2 or lz4")
	tableOut := fs.String("table", "", "write the coefficient table as CSV to this file (- for stdout) and exit")
	pngOut := fs.String("png", "", "write a PNG map of -field")
	field := fs.String("field", "ovlx", "field for -png and -view: ovlx or ovly")
	view := fs.Bool("view", false, "open the result in the terminal viewer")
	printModel := fs.Bool("model", false, "print the parsed equations as JSON and exit")
	validateOnly := fs.Bool("validate", false, "check the header row and exit")
	quiet := fs.Bool("q", false, "do not log progress")

	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return 2
	}
	if *in != "" && *sample {
		fmt.Fprintln(stderr, "cannot combine -in with -sample")
		return 2
	}
	if *field != "ovlx" && *field != "ovly" {
		fmt.Fprintf(stderr, "unknown field: %s\n", *field)
		return 2
	}
	ct, err := compress.ParseType(*compression)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	for _, c := range []struct {
		name string
		v    int
	}{{"-n", *n}, {"-nx", *nx}, {"-ny", *ny}} {
		if c.v < 0 {
			fmt.Fprintf(stderr, "%s must not be negative: %d\n", c.name, c.v)
			return 2
		}
	}
	if *in == "" && !*sample {
		fmt.Fprintln(stderr, "one of -in or -sample is required")
		fs.Usage()
		return 2
	}

	logger := log.New(stderr, "ovlmap: ", 0)

	table, err := loadTable(*in, *sheet, stdin, logger)
	if err != nil {
		logger.Printf("error loading table: %v", err)
		return 1
	}

	if *tableOut != "" {
		if err := writeTable(*tableOut, table, stdout); err != nil {
			logger.Printf("error writing table: %v", err)
			return 1
		}
		return 0
	}

	if *validateOnly {
		res := header.Check(table)
		enc := json.NewEncoder(stdout)
		if err := enc.Encode(res); err != nil {
			logger.Print(err)
			return 1
		}
		if !res.Valid {
			return 1
		}
		return 0
	}

	if err := header.Validate(table); err != nil {
		logger.Print(err)
		return 1
	}

	m := header.Parse(table)
	for _, col := range m.Skipped {
		logger.Printf("skipped column %q", col)
	}
	logger.Printf("parsed %d equations (fingerprint %016x)", m.Len(), m.Fingerprint())

	if *printModel {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(m); err != nil {
			logger.Print(err)
			return 1
		}
		return 0
	}

	p := calc.Compile(m)
	for _, l := range m.Labels() {
		if err := p.Err(l); err != nil {
			logger.Printf("equation %s disabled: %v", l, err)
		}
	}

	d := grid.Domain{XMin: *xmin, XMax: *xmax, YMin: *ymin, YMax: *ymax, NX: *n, NY: *n}
	if *nx > 0 {
		d.NX = *nx
	}
	if *ny > 0 {
		d.NY = *ny
	}

	var opts []grid.Option
	if !*quiet {
		opts = append(opts, grid.WithProgress(progressLogger(logger)))
	}
	res, err := grid.Sample(p, d, opts...)
	if err != nil {
		logger.Print(err)
		return 1
	}
	logSummary(logger, res)

	switch {
	case *out == "-":
		if err := storage.WriteResult(stdout, res); err != nil {
			logger.Print(err)
			return 1
		}
	default:
		filename := *out
		if filename == "" {
			filename = storage.DefaultResultName(d.NX, d.NY, ct)
		}
		if err := storage.SaveResult(filename, res); err != nil {
			logger.Printf("error saving result: %v", err)
			return 1
		}
		logger.Printf("wrote %d rows to %s", res.Len(), filename)
	}

	if *pngOut != "" {
		if err := plot.Save(*pngOut, res, *field); err != nil {
			logger.Printf("error drawing %s: %v", *pngOut, err)
			return 1
		}
		logger.Printf("wrote %s", *pngOut)
	}

	if *view {
		if err := viewResult(res, p, *field, ct); err != nil {
			logger.Print(err)
			return 1
		}
	}
	return 0
}

func loadTable(in, sheet string, stdin io.Reader, logger *log.Logger) (model.Table, error) {
	switch in {
	case "":
		logger.Print("using the built-in sample table")
		return model.SampleTable(), nil
	case "-":
		return storage.ReadTable(stdin, sheet)
	}
	return storage.LoadTable(in, sheet)
}

func writeTable(filename string, t model.Table, stdout io.Writer) error {
	if filename == "-" {
		return storage.WriteTable(stdout, t)
	}
	return storage.SaveTable(t, filename)
}

// progressLogger logs each whole 10% step once.
func progressLogger(logger *log.Logger) grid.ProgressFunc {
	last := -1
	return func(frac float64) error {
		step := int(math.Floor(frac * 10))
		if step > last {
			last = step
			logger.Printf("progress %3d%%", step*10)
		}
		return nil
	}
}

func logSummary(logger *log.Logger, res *grid.Result) {
	sum := res.Summary()
	for _, f := range []struct {
		name string
		st   grid.Stats
	}{{"ovlx", sum.OVLX}, {"ovly", sum.OVLY}} {
		logger.Printf("%s: min=%.6g max=%.6g mean=%.6g std=%.6g median=%.6g",
			f.name, f.st.Min, f.st.Max, f.st.Mean, f.st.Std, f.st.Median)
	}
	if res.Failed > 0 || res.EquationFailures > 0 {
		logger.Printf("%d of %d points failed, %d equation contributions skipped",
			res.Failed, res.Len(), res.EquationFailures)
	}
}

func viewResult(res *grid.Result, p *calc.Program, field string, ct compress.Type) error {
	s, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("cannot create screen: %w", err)
	}
	if err := s.Init(); err != nil {
		return fmt.Errorf("cannot init screen: %w", err)
	}
	defer s.Fini()

	a := app.NewApp(res)
	a.Program = p
	a.Compression = ct
	if err := a.SetField(field); err != nil {
		return err
	}
	s.Clear()
	a.Run(s)
	return nil
}
