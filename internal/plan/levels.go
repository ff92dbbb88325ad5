// levels.go assigns plan nodes to topological levels for layout.
package plan

// ComputeLevels partitions nodes into ordered levels such that every
// node's dependencies occupy strictly earlier levels. Each pass selects
// the not-yet-placed nodes whose dependencies are all placed; within a
// level, nodes keep their input order.
//
// Dependencies that name no declared node never become satisfiable. If
// a pass places nothing while nodes remain (a cycle or such a missing
// reference), all remaining nodes are dumped into one final level in
// input order and degenerate is true. The caller reports that as a
// diagnostic; layout always terminates and never fails.
func ComputeLevels(nodes []Node) (levels [][]string, degenerate bool) {
	if len(nodes) == 0 {
		return nil, false
	}

	declared := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		declared[n.ID] = true
	}

	placed := make(map[string]bool, len(nodes))
	remaining := len(nodes)

	for remaining > 0 {
		var level []string
		for _, n := range nodes {
			if placed[n.ID] {
				continue
			}
			ready := true
			for _, dep := range n.DependsOn {
				// A reference to an undeclared node can never be
				// satisfied; it holds the node back until the fallback.
				if !declared[dep] || !placed[dep] {
					ready = false
					break
				}
			}
			if ready {
				level = append(level, n.ID)
			}
		}

		if len(level) == 0 {
			// Cycle or missing reference: flatten the leftovers into
			// one terminal level instead of looping forever.
			for _, n := range nodes {
				if !placed[n.ID] {
					level = append(level, n.ID)
				}
			}
			levels = append(levels, level)
			return levels, true
		}

		for _, id := range level {
			placed[id] = true
		}
		remaining -= len(level)
		levels = append(levels, level)
	}

	return levels, false
}
