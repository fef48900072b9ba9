package extensions

import (
	"fmt"

	"github.com/m1gwings/treedrawer/tree"

	fetcher "github.com/fetcher-fn/fetcher-go"
)

// DumpTree renders the dependency tree rooted at key as ASCII art,
// one branch per declared path. Keys already on the current branch are
// marked as cycles instead of expanded again.
func DumpTree(g *fetcher.Graph, key fetcher.Key) string {
	t := tree.NewTree(tree.NodeString(string(key)))
	expand(g, node{tree: t}, key, map[fetcher.Key]bool{key: true})
	return t.String()
}

// node pairs a tree with the count of children appended so far, which
// is how treedrawer addresses a fresh child after AddChild.
type node struct {
	tree     *tree.Tree
	children int
}

func (n *node) append(label string) *tree.Tree {
	n.tree.AddChild(tree.NodeString(label))
	child, err := n.tree.Child(n.children)
	n.children++
	if err != nil {
		return nil
	}
	return child
}

func expand(g *fetcher.Graph, n node, key fetcher.Key, seen map[fetcher.Key]bool) {
	paths := g.Dependencies(key)
	for i, deps := range paths {
		branch := &n
		if len(paths) > 1 {
			sub := n.append(fmt.Sprintf("path %d", i+1))
			if sub == nil {
				continue
			}
			branch = &node{tree: sub}
		}
		for _, dep := range deps {
			if seen[dep] {
				branch.append(string(dep) + " (cycle)")
				continue
			}
			child := branch.append(string(dep))
			if child == nil {
				continue
			}
			seen[dep] = true
			expand(g, node{tree: child}, dep, seen)
			delete(seen, dep)
		}
	}
}
