package broadphase

import (
	log "github.com/sirupsen/logrus"
)

// Validate re-checks the structural invariants from the root: full binary
// shape, exact child-union boxes, consistent heights, and that every live
// handle sits in exactly one tree position. A violation is a bug in the tree
// and panics. Meant for debug builds and property tests, not production
// control flow.
func (t *Tree[V, T]) Validate() {
	if t.root == NilHandle {
		if n := t.arena.LiveCount(); n != 0 {
			log.Panicf("broadphase: empty tree with %d live handles", n)
		}
		return
	}
	if p := t.nodes[t.root].parent; p != NilHandle {
		log.Panicf("broadphase: root %d has parent %d", t.root, p)
	}

	seen := make(map[Handle]bool, t.arena.LiveCount())
	t.validateNode(t.root, seen)

	t.arena.Each(func(h Handle) {
		if !seen[h] {
			log.Panicf("broadphase: live handle %d unreachable from root", h)
		}
	})
}

func (t *Tree[V, T]) validateNode(h Handle, seen map[Handle]bool) {
	if !t.arena.Contains(h) {
		log.Panicf("broadphase: dead handle %d linked into tree", h)
	}
	if seen[h] {
		log.Panicf("broadphase: handle %d reachable twice", h)
	}
	seen[h] = true

	n := &t.nodes[h]
	c0, c1 := n.child[0], n.child[1]
	if c0 == NilHandle || c1 == NilHandle {
		if c0 != c1 {
			log.Panicf("broadphase: node %d has exactly one child", h)
		}
		if n.height != 0 {
			log.Panicf("broadphase: leaf %d has height %d", h, n.height)
		}
		return
	}

	if t.nodes[c0].parent != h || t.nodes[c1].parent != h {
		log.Panicf("broadphase: children of %d disagree about their parent", h)
	}
	if want := t.nodes[c0].box.Merge(t.nodes[c1].box); !n.box.Equal(want) {
		log.Panicf("broadphase: node %d box is not the tight union of its children", h)
	}
	if want := 1 + max32(t.nodes[c0].height, t.nodes[c1].height); n.height != want {
		log.Panicf("broadphase: node %d height %d, want %d", h, n.height, want)
	}

	t.validateNode(c0, seen)
	t.validateNode(c1, seen)
}
