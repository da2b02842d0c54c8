// ABOUTME: Circular reasoning detection over "because"-linked statements
// ABOUTME: Builds a conclusion-to-premise graph and looks for a back edge with DFS
package core

import (
	"strings"

	"go.uber.org/zap"
)

const causalToken = "because"

// reasoningGraph maps each node to the nodes it depends on
type reasoningGraph struct {
	order []string
	edges map[string][]string
}

// buildReasoningGraph links each conclusion to its premise. A premise also
// links to every conclusion it names as subject, so the premise "b" reaches
// the conclusion "b is true".
func buildReasoningGraph(statements []string) *reasoningGraph {
	g := &reasoningGraph{edges: make(map[string][]string)}

	premises := make(map[string][]string)
	for _, stmt := range statements {
		lower := strings.ToLower(stmt)
		if !strings.Contains(lower, causalToken) {
			continue
		}
		parts := strings.SplitN(lower, causalToken, 2)
		conclusion := strings.TrimSpace(parts[0])
		premise := strings.TrimSpace(parts[1])

		if _, seen := premises[conclusion]; !seen {
			g.order = append(g.order, conclusion)
		}
		premises[conclusion] = append(premises[conclusion], premise)
	}

	for _, conclusion := range g.order {
		for _, premise := range premises[conclusion] {
			g.edges[conclusion] = append(g.edges[conclusion], premise)
			for _, other := range g.order {
				if other == premise {
					continue
				}
				if premise != "" && strings.HasPrefix(other, premise+" ") {
					g.edges[premise] = append(g.edges[premise], other)
				}
			}
		}
	}
	return g
}

func (g *reasoningGraph) hasCycle() bool {
	visited := make(map[string]bool)
	onStack := make(map[string]bool)

	var visit func(node string) bool
	visit = func(node string) bool {
		visited[node] = true
		onStack[node] = true
		for _, next := range g.edges[node] {
			if !visited[next] {
				if visit(next) {
					return true
				}
			} else if onStack[next] {
				return true
			}
		}
		onStack[node] = false
		return false
	}

	for _, node := range g.order {
		if !visited[node] && visit(node) {
			return true
		}
	}
	return false
}

// DetectCircularLogic reports whether the statements reason in a circle.
// Fewer than two statements never form a cycle.
func (c *LogicChecker) DetectCircularLogic(statements []string) bool {
	if len(statements) < 2 {
		return false
	}
	if buildReasoningGraph(statements).hasCycle() {
		c.logger.Warn("Circular logic detected in statements", zap.Int("statements", len(statements)))
		return true
	}
	return false
}
