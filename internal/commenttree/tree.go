// Package commenttree rebuilds the reply hierarchy of a post from its flat comment list.
package commenttree

import "github.com/anonto42/sparkmatch/backend/internal/models"

// Node is a comment together with its direct replies.
type Node struct {
	models.Comment
	Replies []*Node `json:"replies"`
}

// Build turns comments into an ordered forest of root nodes.
//
// Roots and every Replies list keep the order of the input; callers that want
// chronological output sort the input first. A reply whose parent is missing from the
// input, or that names itself as parent, is an orphan and is left out together with its
// own subtree. When an id repeats, the first comment with that id wins.
func Build(comments []models.Comment) []*Node {
	nodes := make(map[uint]*Node, len(comments))
	ordered := make([]*Node, 0, len(comments))
	for _, c := range comments {
		if _, dup := nodes[c.ID]; dup {
			continue
		}
		n := &Node{Comment: c, Replies: []*Node{}}
		nodes[c.ID] = n
		ordered = append(ordered, n)
	}

	roots := make([]*Node, 0)
	for _, n := range ordered {
		if n.ParentID == nil {
			roots = append(roots, n)
			continue
		}
		if *n.ParentID == n.ID {
			continue
		}
		if parent, ok := nodes[*n.ParentID]; ok {
			parent.Replies = append(parent.Replies, n)
		}
	}
	return roots
}

// Walk visits the forest depth-first in pre-order. Roots have depth 0.
// Nodes caught in a parent cycle are never attached to a root and are not visited.
func Walk(forest []*Node, fn func(n *Node, depth int)) {
	var visit func(nodes []*Node, depth int)
	visit = func(nodes []*Node, depth int) {
		for _, n := range nodes {
			fn(n, depth)
			visit(n.Replies, depth+1)
		}
	}
	visit(forest, 0)
}

// Count returns the number of nodes reachable from the forest.
func Count(forest []*Node) int {
	total := 0
	Walk(forest, func(*Node, int) { total++ })
	return total
}

// Orphans returns the ids in comments that Build leaves out of the forest: replies whose
// parent is missing or is themselves, plus everything hanging below them.
func Orphans(comments []models.Comment, forest []*Node) []uint {
	seen := make(map[uint]bool, len(comments))
	Walk(forest, func(n *Node, _ int) { seen[n.ID] = true })

	var out []uint
	reported := make(map[uint]bool)
	for _, c := range comments {
		if !seen[c.ID] && !reported[c.ID] {
			out = append(out, c.ID)
			reported[c.ID] = true
		}
	}
	return out
}
