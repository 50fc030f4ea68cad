// Package viz draws the wiring of a bit permutation with graphviz.
package viz

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"bitfeistel/pkg/permutation"

	"github.com/goccy/go-graphviz"
)

const header = `digraph P {
    graph [fontname = "monospace" rankdir=LR splines=line nodesep=0.15];
    node [fontname = "courier new" shape=circle width=0.35 fixedsize=true];
    edge [arrowsize=0.5 color=grey40];
    bgcolor=transparent;
`

// DOT returns a graph with one input and one output column. Output bit i is
// wired from input bit Forward()[i].
func DOT(p *permutation.Permutation) string {
	var sb strings.Builder
	sb.WriteString(header)
	fmt.Fprintf(&sb, "    label=\"n=%d step=%d offset=%d\";\n", p.Size(), permutation.Step, permutation.Offset)

	sb.WriteString("    subgraph cluster_in { label=\"in\"; color=none;\n")
	for i := range p.Size() {
		fmt.Fprintf(&sb, "        \"i%d\" [label=\"%d\"];\n", i, i)
	}
	sb.WriteString("    }\n")
	sb.WriteString("    subgraph cluster_out { label=\"out\"; color=none;\n")
	for i := range p.Size() {
		fmt.Fprintf(&sb, "        \"o%d\" [label=\"%d\"];\n", i, i)
	}
	sb.WriteString("    }\n")

	for i, src := range p.Forward() {
		fmt.Fprintf(&sb, "    \"i%d\" -> \"o%d\";\n", src, i)
	}
	sb.WriteString("}\n")
	return sb.String()
}

// SVG renders DOT(p).
func SVG(ctx context.Context, p *permutation.Permutation) ([]byte, error) {
	graph, err := graphviz.ParseBytes([]byte(DOT(p)))
	if err != nil {
		return nil, fmt.Errorf("viz: failed to parse graph: %w", err)
	}
	defer graph.Close()

	g, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("viz: failed to start graphviz: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := g.Render(ctx, graph, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("viz: failed to render: %w", err)
	}
	return buf.Bytes(), nil
}
