package main

import (
	"github.com/sanonone/sstree/pkg/core/point"
	"github.com/sanonone/sstree/pkg/core/record"
	"github.com/sanonone/sstree/pkg/core/sstree"
)

// Structural checks over the public node observation interface. Each mirrors
// one invariant the tree promises after a completed bulk load.

// allDataPresent reports whether the records reachable by DFS are exactly the
// inserted ones.
func allDataPresent(root *sstree.Node, records []*record.Record) bool {
	reachable := make(map[*record.Record]struct{})
	collectRecords(root, reachable)

	if len(reachable) != len(records) {
		return false
	}
	for _, rec := range records {
		if _, ok := reachable[rec]; !ok {
			return false
		}
	}
	return true
}

func collectRecords(n *sstree.Node, out map[*record.Record]struct{}) {
	if n == nil {
		return
	}
	if n.IsLeaf() {
		for _, r := range n.Records() {
			out[r] = struct{}{}
		}
		return
	}
	for _, c := range n.Children() {
		collectRecords(c, out)
	}
}

// leavesAtSameLevel reports whether every leaf sits at the same depth.
func leavesAtSameLevel(root *sstree.Node) bool {
	leafLevel := -1
	return leavesAtSameLevelDFS(root, 0, &leafLevel)
}

func leavesAtSameLevelDFS(n *sstree.Node, level int, leafLevel *int) bool {
	if n.IsLeaf() {
		if *leafLevel == -1 {
			*leafLevel = level
			return true
		}
		return *leafLevel == level
	}
	for _, c := range n.Children() {
		if !leavesAtSameLevelDFS(c, level+1, leafLevel) {
			return false
		}
	}
	return true
}

// noNodeExceedsMaxEntries reports whether every node holds at most max
// entries.
func noNodeExceedsMaxEntries(n *sstree.Node, max int) bool {
	if n.IsLeaf() {
		return len(n.Records()) <= max
	}
	if len(n.Children()) > max {
		return false
	}
	for _, c := range n.Children() {
		if !noNodeExceedsMaxEntries(c, max) {
			return false
		}
	}
	return true
}

// sphereCoversAllRecords reports whether every leaf's bounding sphere covers
// all of its records.
func sphereCoversAllRecords(n *sstree.Node) bool {
	if n.IsLeaf() {
		for _, r := range n.Records() {
			d, err := point.Distance(n.Centroid(), r.Embedding())
			if err != nil || d > n.Radius()+point.Epsilon {
				return false
			}
		}
		return true
	}
	for _, c := range n.Children() {
		if !sphereCoversAllRecords(c) {
			return false
		}
	}
	return true
}

// sphereCoversAllChildSpheres reports whether every internal node's sphere
// covers the whole sphere of each of its children.
func sphereCoversAllChildSpheres(n *sstree.Node) bool {
	if n.IsLeaf() {
		return true
	}
	for _, c := range n.Children() {
		d, err := point.Distance(n.Centroid(), c.Centroid())
		if err != nil || d+c.Radius() > n.Radius()+point.Epsilon {
			return false
		}
		if !sphereCoversAllChildSpheres(c) {
			return false
		}
	}
	return true
}
