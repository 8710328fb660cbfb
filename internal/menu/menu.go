// Package menu drives benchmark sessions: the interactive text menu and the
// non-interactive batch mode share the same execute path.
package menu

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"pathbench/internal/bench"
	"pathbench/internal/results"
	"pathbench/internal/scenario"
	"pathbench/pkg/apperror"
	"pathbench/pkg/logger"
)

const clearSequence = "\x1b[H\x1b[2J"

// Builder materialises scenarios.
type Builder interface {
	Build(ctx context.Context, s scenario.Scenario) (*scenario.Built, error)
}

// Runner benchmarks a materialised scenario.
type Runner interface {
	Run(ctx context.Context, in bench.Input) (*bench.Report, error)
}

// Options wires a Session. Store may be nil.
type Options struct {
	In          io.Reader
	Out         io.Writer
	Catalog     *scenario.Catalog
	Builder     Builder
	Runner      Runner
	Store       results.Store
	ClearScreen bool
}

// Session runs scenarios and prints their results.
type Session struct {
	in      *bufio.Reader
	out     io.Writer
	catalog *scenario.Catalog
	builder Builder
	runner  Runner
	store   results.Store
	clear   bool

	// Completed counts successful benchmarks in this session.
	Completed int
}

// New creates a session.
func New(opts Options) *Session {
	in := opts.In
	if in == nil {
		in = strings.NewReader("")
	}
	return &Session{
		in:      bufio.NewReader(in),
		out:     opts.Out,
		catalog: opts.Catalog,
		builder: opts.Builder,
		runner:  opts.Runner,
		store:   opts.Store,
		clear:   opts.ClearScreen,
	}
}

// Loop shows the menu until the user picks 0, input ends or ctx is done.
// A failing scenario is reported and the loop continues.
func (s *Session) Loop(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return apperror.FromContext(err)
		}

		s.clearScreen()
		s.printMenu()

		line, err := s.readLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(s.out)
				return nil
			}
			return apperror.Wrap(err, apperror.CodeInternal, "failed to read menu input")
		}

		choice := strings.TrimSpace(line)
		if choice == "0" {
			fmt.Fprintln(s.out, "Goodbye!")
			return nil
		}

		sc, err := s.catalog.Get(choice)
		if err != nil {
			fmt.Fprintln(s.out, "Invalid option!")
			continue
		}

		if _, err := s.Execute(ctx, sc); err != nil {
			if ctx.Err() != nil {
				return apperror.FromContext(ctx.Err())
			}
			fmt.Fprintf(s.out, "Error: %v\n", err)
		}

		fmt.Fprint(s.out, "\nPress Enter to continue...")
		if _, err := s.readLine(); err != nil && !errors.Is(err, io.EOF) {
			return apperror.Wrap(err, apperror.CodeInternal, "failed to read menu input")
		}
	}
}

// Execute builds sc, benchmarks it, prints every repetition and the summary,
// then saves the results when a store is configured.
func (s *Session) Execute(ctx context.Context, sc scenario.Scenario) (*bench.Report, error) {
	built, err := s.builder.Build(ctx, sc)
	if err != nil {
		return nil, err
	}
	if built.Skipped > 0 {
		fmt.Fprintf(s.out, "Skipped %d unusable input records\n", built.Skipped)
	}

	fmt.Fprintf(s.out, "Running shortest path on %s (n = %d, m = %d, source = %d)\n",
		sc.Name(), built.Graph.VertexCount(), built.Graph.EdgeCount(), built.Source)

	in := bench.InputFromBuilt(built)
	in.OnRepetition = func(rep int, d time.Duration) {
		fmt.Fprintf(s.out, "  Repetition %2d: %.6f s\n", rep, d.Seconds())
	}

	report, err := s.runner.Run(ctx, in)
	if err != nil {
		return nil, err
	}
	PrintSummary(s.out, report)
	s.Completed++

	if s.store != nil {
		if err := results.SaveReport(ctx, s.store, report); err != nil {
			return report, err
		}
	}
	return report, nil
}

// RunAll executes every catalog scenario in order. It stops once ctx is done
// and otherwise returns the errors of failed scenarios joined.
func (s *Session) RunAll(ctx context.Context) error {
	var errs []error
	for _, sc := range s.catalog.All() {
		if _, err := s.Execute(ctx, sc); err != nil {
			if ctx.Err() != nil {
				return apperror.FromContext(ctx.Err())
			}
			logger.Error("Scenario failed", "scenario", sc.Name(), "error", err)
			fmt.Fprintf(s.out, "Error: %v\n", err)
			errs = append(errs, err)
		}
		fmt.Fprintln(s.out)
	}
	return errors.Join(errs...)
}

// PrintSummary writes the statistics block of a report.
func PrintSummary(w io.Writer, r *bench.Report) {
	st := r.Stats
	fmt.Fprintf(w, "Mean time: %.6f s, Standard deviation: %.6f s\n", st.Mean, st.StdDev)
	fmt.Fprintf(w, "Max time: %.6f s, Min time: %.6f s, Total time: %.6f s\n", st.Max, st.Min, st.Total)
	fmt.Fprintf(w, "Reachable vertices: %d of %d\n", r.Reachable, r.Graph.VertexCount)
}

func (s *Session) printMenu() {
	fmt.Fprintln(s.out, "\nChoose a graph to run the shortest-path benchmark on:")
	fmt.Fprintln(s.out, "[0] Exit")
	for _, sc := range s.catalog.All() {
		fmt.Fprintf(s.out, "[%s] %s\n", sc.Key, sc.Label)
	}
	fmt.Fprint(s.out, "Choice: ")
}

func (s *Session) clearScreen() {
	if s.clear {
		fmt.Fprint(s.out, clearSequence)
	}
}

// readLine возвращает строку без перевода. Последняя строка без '\n' тоже читается.
func (s *Session) readLine() (string, error) {
	line, err := s.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return line, nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
