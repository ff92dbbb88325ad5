// diagram.go renders a plan graph as ASCII layers.
package plan

import (
	"fmt"
	"strings"
)

// RenderDiagram creates an ASCII layout of the graph, one layer per
// dependency level. Connector annotations list each node's dependencies;
// a dependency whose node is unknown is simply omitted from the
// annotation rather than treated as an error.
func RenderDiagram(g Graph) (string, bool) {
	levels, degenerate := ComputeLevels(g.Nodes)

	var b strings.Builder
	b.WriteString("Task Plan\n")
	b.WriteString("=========\n\n")

	for depth, level := range levels {
		b.WriteString(fmt.Sprintf("Level %d:\n", depth))

		indent := strings.Repeat("  ", depth)
		for _, id := range level {
			node, ok := g.Lookup(id)
			if !ok {
				continue
			}
			line := fmt.Sprintf("%s├── %s", indent, id)
			if node.Title != "" {
				line += fmt.Sprintf(": %s", node.Title)
			}
			if deps := knownDeps(g, node); deps != "" {
				line += fmt.Sprintf(" [after %s]", deps)
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
	}

	if degenerate {
		b.WriteString("warning: cyclic or unresolved dependencies; last level is a best-effort flattening\n")
	}

	return b.String(), degenerate
}

// knownDeps joins the dependencies whose nodes are declared.
func knownDeps(g Graph, node Node) string {
	var deps []string
	for _, dep := range node.DependsOn {
		if _, ok := g.Lookup(dep); ok {
			deps = append(deps, dep)
		}
	}
	return strings.Join(deps, ", ")
}
