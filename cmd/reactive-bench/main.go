// Command reactive-bench measures engine dispatch latency under
// synthetic dependency graphs.
package main

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	apperrors "github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/pkg/observe"
	"github.com/vango-dev/reactive/pkg/reactive"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "reactive-bench",
		Short: "Benchmark harness for the reactive engine",
		Long: `reactive-bench builds synthetic dependency graphs and measures
how long the engine takes to propagate writes through them.

  • propagate — chains of derived runners, width x height
  • fanout    — one key observed by many plain runners
  • churn     — a runner that re-derives its dependencies every run`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		propagateCmd(),
		fanoutCmd(),
		churnCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		apperrors.PrintError(err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("reactive-bench %s (%s)\n", version, commit)
		},
	}
}

func propagateCmd() *cobra.Command {
	var (
		widths  []int
		heights []int
		iters   int
	)
	cmd := &cobra.Command{
		Use:   "propagate",
		Short: "Propagate a write through chains of derived runners",
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl := newResultTable("Propagate")
			for _, w := range widths {
				for _, h := range heights {
					calc := benchPropagate(w, h, iters)
					appendResult(tbl, fmt.Sprintf("propagate: %d * %d", w, h), calc)
				}
			}
			tbl.Render()
			printMemory()
			return nil
		},
	}
	cmd.Flags().IntSliceVar(&widths, "width", []int{1, 10, 100}, "number of parallel chains")
	cmd.Flags().IntSliceVar(&heights, "height", []int{1, 10, 100}, "length of each chain")
	cmd.Flags().IntVar(&iters, "iters", 100, "measured writes per configuration")
	return cmd
}

func fanoutCmd() *cobra.Command {
	var (
		sizes []int
		iters int
	)
	cmd := &cobra.Command{
		Use:   "fanout",
		Short: "Dispatch one write to many plain runners",
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl := newResultTable("Fan-out")
			for _, n := range sizes {
				calc := benchFanout(n, iters)
				appendResult(tbl, fmt.Sprintf("fanout: %d runners", n), calc)
			}
			tbl.Render()
			printMemory()
			return nil
		},
	}
	cmd.Flags().IntSliceVar(&sizes, "size", []int{10, 100, 1000, 10000}, "subscriber counts")
	cmd.Flags().IntVar(&iters, "iters", 100, "measured writes per configuration")
	return cmd
}

func churnCmd() *cobra.Command {
	var iters int
	cmd := &cobra.Command{
		Use:   "churn",
		Short: "Re-derive a runner's dependencies on every run",
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl := newResultTable("Dependency churn")
			calc := benchChurn(iters)
			appendResult(tbl, "churn: alternating branches", calc)
			tbl.Render()
			printMemory()
			return nil
		},
	}
	cmd.Flags().IntVar(&iters, "iters", 1000, "measured writes")
	return cmd
}

// benchPropagate builds w chains of h derived runners each, all rooted at
// one record field, and times writes to the root.
func benchPropagate(w, h, iters int) *tachymeter.Metrics {
	e := reactive.NewEngine()
	src := observe.NewRecord(observe.WithEngine(e))
	src.Set("value", 0)

	for i := 0; i < w; i++ {
		prev := src
		for j := 0; j < h; j++ {
			next := observe.NewRecord(observe.WithEngine(e))
			from, to := prev, next
			e.NewRunner(func() error {
				to.Set("value", asInt(from.Get("value"))+1)
				return nil
			}, reactive.Derived())
			prev = next
		}
		tail := prev
		e.NewRunner(func() error {
			tail.Get("value")
			return nil
		})
	}

	tach := tachymeter.New(&tachymeter.Config{Size: iters})
	for i := 0; i < iters; i++ {
		start := time.Now()
		src.Set("value", i+1)
		tach.AddTime(time.Since(start))
	}
	return tach.Calc()
}

// benchFanout subscribes n plain runners to one key and times writes.
func benchFanout(n, iters int) *tachymeter.Metrics {
	e := reactive.NewEngine()
	src := observe.NewRecord(observe.WithEngine(e))
	src.Set("value", 0)

	for i := 0; i < n; i++ {
		e.NewRunner(func() error {
			src.Get("value")
			return nil
		})
	}

	tach := tachymeter.New(&tachymeter.Config{Size: iters})
	for i := 0; i < iters; i++ {
		start := time.Now()
		src.Set("value", i+1)
		tach.AddTime(time.Since(start))
	}
	return tach.Calc()
}

// benchChurn flips a runner between two dependency branches and times the
// writes that force the switch.
func benchChurn(iters int) *tachymeter.Metrics {
	e := reactive.NewEngine()
	rec := observe.NewRecord(observe.WithEngine(e))
	rec.Set("switch", false)
	rec.Set("left", 0)
	rec.Set("right", 0)

	e.NewRunner(func() error {
		if rec.Get("switch") == true {
			rec.Get("left")
		} else {
			rec.Get("right")
		}
		return nil
	})

	tach := tachymeter.New(&tachymeter.Config{Size: iters})
	for i := 0; i < iters; i++ {
		start := time.Now()
		rec.Set("switch", i%2 == 0)
		tach.AddTime(time.Since(start))
	}
	return tach.Calc()
}

func newResultTable(title string) table.Writer {
	tbl := table.NewWriter()
	tbl.SetTitle(title)
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max"})
	return tbl
}

func appendResult(tbl table.Writer, name string, calc *tachymeter.Metrics) {
	tbl.AppendRows([]table.Row{
		{
			name,
			calc.Time.Avg,
			calc.Time.Min,
			calc.Time.P75,
			calc.Time.P99,
			calc.Time.Max,
		},
	})
}

func printMemory() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	fmt.Printf("heap in use: %s, total allocated: %s\n",
		humanize.Bytes(m.HeapInuse), humanize.Bytes(m.TotalAlloc))
}

func asInt(v any) int {
	if n, ok := v.(int); ok {
		return n
	}
	return 0
}
