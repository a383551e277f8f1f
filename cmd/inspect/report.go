package main

import (
	"io"

	qt "github.com/valyala/quicktemplate"
)

// nodeInfo is a snapshot of one State's diagnostics, gathered by hand since
// Observing returns a heterogeneous, type-erased dependency set that can't be
// walked generically across differing value types.
type nodeInfo struct {
	Label        string
	NodeID       uint64
	Dependencies int
}

func streamGraphReport(w *qt.Writer, title string, nodes []nodeInfo) {
	w.N().S(`<!doctype html><html><head><meta charset="utf-8"><title>`)
	w.E().S(title)
	w.N().S(`</title></head><body><h1>`)
	w.E().S(title)
	w.N().S(`</h1><table border="1" cellpadding="4"><tr><th>label</th><th>node id</th><th>dependencies</th></tr>`)
	for _, n := range nodes {
		w.N().S(`<tr><td>`)
		w.E().S(n.Label)
		w.N().S(`</td><td>`)
		w.N().D(int(n.NodeID))
		w.N().S(`</td><td>`)
		w.N().D(n.Dependencies)
		w.N().S(`</td></tr>`)
	}
	w.N().S(`</table></body></html>`)
}

func writeGraphReport(out io.Writer, title string, nodes []nodeInfo) {
	w := qt.AcquireWriter(out)
	streamGraphReport(w, title, nodes)
	qt.ReleaseWriter(w)
}
