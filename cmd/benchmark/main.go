package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"github.com/delaneyj/reactiveprops/reactive"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
)

func main() {
	flag.Parse()

	f, err := os.Create("default.pgo")
	if err != nil {
		log.Fatal(err)
	}
	pprof.StartCPUProfile(f)
	defer pprof.StopCPUProfile()

	log.Printf("warming up")
	benchmarkPropagate(false)
	benchmarkPropagate(true)
}

var (
	ww    = []int{1, 10, 100, 1_000}
	hh    = []int{1, 10, 100, 1_000}
	iters = 100
)

// benchmarkPropagate builds w independent chains of h Computed nodes each
// hanging off one shared source Var, then times how long a single source
// write takes to settle every leaf.
func benchmarkPropagate(shouldRender bool) {
	tbl := table.NewWriter()
	tbl.SetTitle("reactive propagate")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max"})

	for _, w := range ww {
		for _, h := range hh {
			tach := tachymeter.New(&tachymeter.Config{Size: iters})

			src := reactive.Var(1)
			leaves := make([]*reactive.State[int], 0, w)
			for i := 0; i < w; i++ {
				var last *reactive.State[int] = src.State
				for j := 0; j < h; j++ {
					prev := last
					last = reactive.Computed(func() int {
						return prev.Get() + 1
					})
				}
				leaves = append(leaves, last)
				last.Attach(func(int) {})
			}

			for i := 0; i < iters; i++ {
				start := time.Now()
				src.SetStatic(src.Get() + 1)
				for _, leaf := range leaves {
					leaf.Get()
				}
				tach.AddTime(time.Since(start))
			}

			calc := tach.Calc()
			tbl.AppendRows([]table.Row{
				{
					fmt.Sprintf("propagate: %d * %d", w, h),
					calc.Time.Avg,
					calc.Time.Min,
					calc.Time.P75,
					calc.Time.P99,
					calc.Time.Max,
				},
			})
		}
	}

	if shouldRender {
		tbl.Render()
	}
}
