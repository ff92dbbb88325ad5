package plan

import (
	"reflect"
	"strings"
	"testing"
)

const sampleOutput = `# Split plan

Some preamble the model wrote.

### sp-1: Set up the project skeleton
depends: none

### sp-2: Implement the data model
depends: [sp-1]

### sp-3: Implement the API layer
depends: sp-1

### sp-4: Wire model and API together
depends: sp-2, sp-3
`

func TestParseGraph(t *testing.T) {
	graph, err := ParseGraph(sampleOutput)
	if err != nil {
		t.Fatalf("ParseGraph failed: %v", err)
	}
	if len(graph.Nodes) != 4 {
		t.Fatalf("nodes = %d, want 4", len(graph.Nodes))
	}

	first := graph.Nodes[0]
	if first.ID != "sp-1" || first.Title != "Set up the project skeleton" {
		t.Errorf("first node = %+v", first)
	}
	if first.DependsOn != nil {
		t.Errorf("sp-1 deps = %v, want none", first.DependsOn)
	}

	last := graph.Nodes[3]
	if !reflect.DeepEqual(last.DependsOn, []string{"sp-2", "sp-3"}) {
		t.Errorf("sp-4 deps = %v", last.DependsOn)
	}

	// Bracketed single dependency.
	if !reflect.DeepEqual(graph.Nodes[1].DependsOn, []string{"sp-1"}) {
		t.Errorf("sp-2 deps = %v", graph.Nodes[1].DependsOn)
	}
}

func TestParseGraphNoTasks(t *testing.T) {
	if _, err := ParseGraph("just prose, no headings"); err == nil {
		t.Error("expected an error for output with no tasks")
	}
}

func TestParseGraphLevelsEndToEnd(t *testing.T) {
	graph, err := ParseGraph(sampleOutput)
	if err != nil {
		t.Fatalf("ParseGraph failed: %v", err)
	}
	levels, degenerate := ComputeLevels(graph.Nodes)
	want := [][]string{{"sp-1"}, {"sp-2", "sp-3"}, {"sp-4"}}
	if !reflect.DeepEqual(levels, want) {
		t.Errorf("levels = %v, want %v", levels, want)
	}
	if degenerate {
		t.Error("well-formed plan reported as degenerate")
	}
}

func TestRenderDiagram(t *testing.T) {
	graph, err := ParseGraph(sampleOutput)
	if err != nil {
		t.Fatalf("ParseGraph failed: %v", err)
	}

	out, degenerate := RenderDiagram(graph)

	if degenerate {
		t.Error("diagram reported degenerate for a clean graph")
	}
	for _, want := range []string{"Level 0:", "Level 2:", "sp-4: Wire model and API together [after sp-2, sp-3]"} {
		if !strings.Contains(out, want) {
			t.Errorf("diagram missing %q:\n%s", want, out)
		}
	}
}

func TestRenderDiagramOmitsUnknownDependencies(t *testing.T) {
	g := Graph{Nodes: []Node{
		{ID: "a", Title: "A"},
		{ID: "b", Title: "B", DependsOn: []string{"a", "ghost"}},
	}}

	out, degenerate := RenderDiagram(g)

	if !degenerate {
		t.Error("missing reference should degrade the layout")
	}
	if strings.Contains(out, "ghost") {
		t.Errorf("unknown dependency should be omitted from connectors:\n%s", out)
	}
	if !strings.Contains(out, "[after a]") {
		t.Errorf("known dependency connector missing:\n%s", out)
	}
}
