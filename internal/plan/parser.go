// parser.go parses the splitter's markdown output into a Graph.
package plan

import (
	"fmt"
	"strings"
)

// ParseGraph parses the splitter's structured markdown output. Each
// task is a "### sp-N: Title" heading followed by an optional
// "depends:" line listing comma-separated task IDs.
// Returns an error if no tasks are found.
func ParseGraph(output string) (Graph, error) {
	var graph Graph
	var current *Node

	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)

		if isTaskHeading(trimmed) {
			if current != nil {
				graph.Nodes = append(graph.Nodes, *current)
			}
			heading := strings.TrimSpace(strings.TrimPrefix(trimmed, "###"))
			id, title := parseTaskHeading(heading)
			current = &Node{ID: id, Title: title}
			continue
		}

		if current == nil {
			continue
		}

		if rest, ok := strings.CutPrefix(trimmed, "depends:"); ok {
			current.DependsOn = parseDependsList(rest)
		}
	}
	if current != nil {
		graph.Nodes = append(graph.Nodes, *current)
	}

	if len(graph.Nodes) == 0 {
		return Graph{}, fmt.Errorf("no tasks found in splitter output")
	}
	return graph, nil
}

// isTaskHeading returns true if the line matches the pattern "### sp-N: Title".
func isTaskHeading(line string) bool {
	return strings.HasPrefix(line, "### sp-") || strings.HasPrefix(line, "###sp-")
}

// parseTaskHeading splits "sp-1: Title" into its ID and title.
func parseTaskHeading(heading string) (id, title string) {
	id, title, found := strings.Cut(heading, ":")
	if !found {
		return strings.TrimSpace(heading), ""
	}
	return strings.TrimSpace(id), strings.TrimSpace(title)
}

// parseDependsList parses a comma-separated ID list, tolerating
// brackets and a literal "none".
func parseDependsList(value string) []string {
	value = strings.Trim(strings.TrimSpace(value), "[]")
	if value == "" || strings.EqualFold(value, "none") {
		return nil
	}
	var deps []string
	for _, field := range strings.Split(value, ",") {
		if dep := strings.TrimSpace(field); dep != "" {
			deps = append(deps, dep)
		}
	}
	return deps
}
