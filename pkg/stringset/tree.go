package stringset

import (
	"fmt"
	"io"

	"github.com/xlab/treeprint"
)

// Tree renders the index as a tree of clusters. Leaves list their keys when
// showKeys is set.
func (idx *Index) Tree(showKeys bool) treeprint.Tree {
	tree := treeprint.NewWithRoot(fmt.Sprintf("%s (%d entries)", idx, idx.entries))
	for _, l := range idx.lengths {
		idx.roots[l].addTo(tree.AddMetaBranch(fmt.Sprintf("len=%d", l), ""), showKeys)
	}
	return tree
}

func (c *Cluster) addTo(branch treeprint.Tree, showKeys bool) {
	branch.SetValue(fmt.Sprintf("%s n=%d w=%.2f", c, c.entries, c.Width()))
	if c.IsLeaf() {
		if showKeys {
			for _, e := range c.leaf {
				branch.AddNode(e.Key)
			}
		}
		return
	}
	for _, child := range c.children {
		child.addTo(branch.AddBranch(""), showKeys)
	}
}

// Dump writes the rendered tree to w.
func (idx *Index) Dump(w io.Writer, showKeys bool) error {
	_, err := io.WriteString(w, idx.Tree(showKeys).String())
	return err
}
