package stringset

import (
	"math"

	"github.com/charmbracelet/log"
)

// pending is an entry of a splitting leaf not yet assigned to a half, with
// its distance to the nearest member of each half.
type pending struct {
	idx  int
	dist [2]float64
}

// split turns a leaf into an internal cluster with two children.
//
// The two entries farthest apart seed the halves. The remaining entries are
// then assigned one at a time: the entry closest to either half joins it,
// preferring the smaller half on ties, and every other entry's distance to
// that half is lowered to its distance to the new member.
func (c *Cluster) split() {
	entries := c.leaf
	n := len(entries)

	d := make([][]float64, n)
	for i := range d {
		d[i] = make([]float64, n)
	}
	seeds := [2]int{0, 1}
	farthest := math.Inf(-1)
	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			dist := EditDistance(entries[i].norm, entries[j].norm)
			d[i][j], d[j][i] = dist, dist
			if dist > farthest {
				seeds = [2]int{i, j}
				farthest = dist
			}
		}
	}

	halves := [2]*Cluster{
		NewCluster(c.length, c.maxWidth),
		NewCluster(c.length, c.maxWidth),
	}
	for h, s := range seeds {
		halves[h].insert(entries[s])
	}

	unassigned := make([]pending, 0, n-2)
	for i := range entries {
		if i == seeds[0] || i == seeds[1] {
			continue
		}
		unassigned = append(unassigned, pending{
			idx:  i,
			dist: [2]float64{d[i][seeds[0]], d[i][seeds[1]]},
		})
	}

	for len(unassigned) > 0 {
		smallest := math.Inf(1)
		nearest, target := -1, -1
		for k, p := range unassigned {
			for h := range halves {
				if p.dist[h] < smallest ||
					(p.dist[h] == smallest && target >= 0 && halves[h].entries < halves[target].entries) {
					nearest, target, smallest = k, h, p.dist[h]
				}
			}
		}

		joined := unassigned[nearest].idx
		unassigned = append(unassigned[:nearest], unassigned[nearest+1:]...)
		halves[target].insert(entries[joined])
		for k := range unassigned {
			p := &unassigned[k]
			if dd := d[joined][p.idx]; dd < p.dist[target] {
				p.dist[target] = dd
			}
		}
	}

	c.leaf = nil
	c.children = halves[:]
	splitsTotal.Inc()
	log.Debug("split cluster", "length", c.length, "entries", n,
		"left", halves[0].entries, "right", halves[1].entries, "farthest", farthest)
}
