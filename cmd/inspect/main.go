package main

import (
	"context"
	"log"
	"os"
	"strconv"

	"github.com/delaneyj/reactiveprops/reactive"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"
)

const (
	htmlOutKey = "html-out"
)

func main() {
	cmd := &cli.Command{
		Name:  "inspect",
		Usage: "Inspect a reactive dependency graph",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  htmlOutKey,
				Usage: "Path to write an HTML dependency report to, if set",
			},
		},
		Action: inspect,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func inspect(ctx context.Context, cmd *cli.Command) error {
	nodes := demoGraphNodes()

	tbl := tablewriter.NewWriter(os.Stdout)
	tbl.SetHeader([]string{"label", "node id", "dependencies"})
	for _, n := range nodes {
		tbl.Append([]string{n.Label, strconv.FormatUint(n.NodeID, 10), strconv.Itoa(n.Dependencies)})
	}
	tbl.Render()

	if out := cmd.String(htmlOutKey); out != "" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		writeGraphReport(f, "reactive dependency graph", nodes)
		log.Printf("wrote report to %s", out)
	}
	return nil
}

// demoGraphNodes builds a small labeled graph exercising State/StateChannel
// and gathers diagnostics from each node's Label/NodeID/Observing.
func demoGraphNodes() []nodeInfo {
	width := reactive.Var(800).Label("width")
	height := reactive.Var(600).Label("height")

	area := reactive.Computed(func() int {
		return width.Get() * height.Get()
	}).Label("area")

	aspectTimes100 := reactive.Computed(func() int {
		if height.Get() == 0 {
			return 0
		}
		return width.Get() * 100 / height.Get()
	}).Label("aspectTimes100")

	summary := reactive.Computed(func() int {
		return area.Get() + aspectTimes100.Get()
	}).Label("summary")

	states := []*reactive.State[int]{width, height, area, aspectTimes100, summary}
	nodes := make([]nodeInfo, 0, len(states))
	for _, s := range states {
		nodes = append(nodes, nodeInfo{
			Label:        s.Name(),
			NodeID:       s.NodeID(),
			Dependencies: len(s.Observing()),
		})
	}
	return nodes
}
