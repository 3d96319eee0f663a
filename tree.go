package broadphase

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Params tunes the tree. The zero value is not usable; start from
// DefaultParams.
type Params struct {
	// Margin is static padding added to every stored box, so that small
	// motion stays inside the stored box and never touches the tree.
	Margin float64

	// ShrinkMargin is the extra slack a stored box is allowed to keep
	// before a shrinking object forces a reinsertion.
	ShrinkMargin float64

	// VelocityMarginFactor scales the caller's velocity hint into a
	// one-sided predictive expansion along the direction of motion.
	VelocityMarginFactor float64

	// BalanceThreshold is the height imbalance tolerated between siblings
	// before a rotation, at least 1. 1 keeps the tree strictly AVL-like; 2
	// trades a slightly taller tree for fewer rotations under oscillating
	// motion.
	BalanceThreshold int
}

// DefaultParams returns the tuning used by the demo and tests.
func DefaultParams() Params {
	return Params{
		Margin:               0.1,
		ShrinkMargin:         0.25,
		VelocityMarginFactor: 2.0,
		BalanceThreshold:     1,
	}
}

// node is the only persistent record. Leaves have both children NilHandle;
// that is the leaf test. Internal nodes reserve the payload slot too, a
// deliberate simplicity/memory trade-off over a side table.
type node[V Vector[V], T any] struct {
	box     AABB[V]
	parent  Handle
	child   [2]Handle
	height  int32
	payload T
}

func (n *node[V, T]) isLeaf() bool { return n.child[0] == NilHandle }

// Tree is a dynamic AABB tree for broad-phase queries over moving boxes. It
// stays balanced under continuous insert/remove/move traffic without full
// rebuilds: a perimeter cost heuristic picks insertion points, single-step
// rotations bound the height, and margin hysteresis keeps small motion from
// reshaping anything.
//
// The tree owns all node storage. Handles are weak references; growth of the
// backing storage relocates node records (invalidating pointers returned by
// GetPayload) but never invalidates handles. Not safe for concurrent use.
type Tree[V Vector[V], T any] struct {
	params  Params
	arena   Arena
	nodes   []node[V, T]
	root    Handle
	changes uint64
}

// NewTree returns an empty tree. A BalanceThreshold below 1 is raised to 1.
func NewTree[V Vector[V], T any](params Params) *Tree[V, T] {
	if params.BalanceThreshold < 1 {
		params.BalanceThreshold = 1
	}
	return &Tree[V, T]{params: params, root: NilHandle}
}

// Insert adds a leaf for box, expanded by the configured margin, and returns
// its handle. The handle stays valid until Remove.
func (t *Tree[V, T]) Insert(box AABB[V], payload T) Handle {
	h := t.allocNode()
	t.insertAt(h, box, payload)
	return h
}

// InsertWithHandle is Insert under a caller-chosen handle, used to keep a
// handle stable across an external remove/reinsert cycle. Inserting over a
// live handle is a programmer error and panics.
func (t *Tree[V, T]) InsertWithHandle(box AABB[V], payload T, h Handle) Handle {
	if h == NilHandle {
		return t.Insert(box, payload)
	}
	if !t.arena.AllocateSpecific(h) {
		log.Panicf("broadphase: insert over live handle %d", h)
	}
	t.syncNodes()
	t.insertAt(h, box, payload)
	return h
}

func (t *Tree[V, T]) insertAt(h Handle, box AABB[V], payload T) {
	n := &t.nodes[h]
	n.box = box.normalized().Expand(t.params.Margin)
	n.parent = NilHandle
	n.child[0] = NilHandle
	n.child[1] = NilHandle
	n.height = 0
	n.payload = payload
	t.insertLeaf(h)
}

// Remove destroys the leaf at h and the internal node that held it. It
// reports false when h is not a live leaf; removing speculatively is fine.
func (t *Tree[V, T]) Remove(h Handle) bool {
	if !t.arena.Contains(h) || !t.nodes[h].isLeaf() {
		return false
	}
	t.removeLeaf(h)
	t.freeNode(h)
	return true
}

// Modify moves the leaf at h to newBox. The velocity hint expands the stored
// box one-sidedly along the direction of motion, so that the next few steps
// of travel are prepaid. When the new box still fits the stored one within
// Margin+ShrinkMargin slack, the tree is left untouched; otherwise the leaf
// is reinserted under the same handle. Calling Modify on a dead or internal
// handle is a programmer error and panics.
func (t *Tree[V, T]) Modify(h Handle, newBox AABB[V], velocity V) {
	if !t.arena.Contains(h) || !t.nodes[h].isLeaf() {
		log.Panicf("broadphase: modify of dead or internal handle %d", h)
	}
	newBox = newBox.normalized()
	predicted := newBox.ExpandDirected(velocity.Scale(t.params.VelocityMarginFactor))

	stored := t.nodes[h].box
	if stored.Contains(newBox) {
		loose := predicted.Expand(t.params.Margin + t.params.ShrinkMargin)
		if loose.Contains(stored) {
			return
		}
	}

	t.removeLeaf(h)
	t.nodes[h].box = predicted.Expand(t.params.Margin)
	t.insertLeaf(h)
}

// GetBox returns the stored (margin-expanded) box of a live handle.
func (t *Tree[V, T]) GetBox(h Handle) AABB[V] {
	if !t.arena.Contains(h) {
		log.Panicf("broadphase: box of dead handle %d", h)
	}
	return t.nodes[h].box
}

// GetPayload returns a pointer to the payload of a live handle. The pointer
// is invalidated by the next growth of the tree; the handle is not.
func (t *Tree[V, T]) GetPayload(h Handle) *T {
	if !t.arena.Contains(h) {
		log.Panicf("broadphase: payload of dead handle %d", h)
	}
	return &t.nodes[h].payload
}

// SetPayload replaces the payload of a live handle.
func (t *Tree[V, T]) SetPayload(h Handle, payload T) {
	if !t.arena.Contains(h) {
		log.Panicf("broadphase: payload of dead handle %d", h)
	}
	t.nodes[h].payload = payload
}

// Reserve grows the backing storage so that at least n nodes fit without
// reallocation. Node counts are roughly twice the leaf count.
func (t *Tree[V, T]) Reserve(n int) {
	t.arena.Reserve(n)
	t.syncNodes()
}

// Count is the number of leaves.
func (t *Tree[V, T]) Count() int {
	if t.root == NilHandle {
		return 0
	}
	// A full binary tree with k internal nodes has k+1 leaves.
	return (t.arena.LiveCount() + 1) / 2
}

// Height is the root height, or -1 for an empty tree.
func (t *Tree[V, T]) Height() int {
	if t.root == NilHandle {
		return -1
	}
	return int(t.nodes[t.root].height)
}

// StructuralChanges counts splices, collapses, and rotations since the tree
// was created. Repeated Modify calls with sub-margin motion do not move it.
func (t *Tree[V, T]) StructuralChanges() uint64 { return t.changes }

// Each calls fn for every live leaf handle, in unspecified order. fn must
// not mutate the tree.
func (t *Tree[V, T]) Each(fn func(Handle)) {
	t.arena.Each(func(h Handle) {
		if t.nodes[h].isLeaf() {
			fn(h)
		}
	})
}

// insertLeaf splices an already-initialized leaf into the structure.
func (t *Tree[V, T]) insertLeaf(leaf Handle) {
	t.changes++
	if t.root == NilHandle {
		t.root = leaf
		t.nodes[leaf].parent = NilHandle
		return
	}

	box := t.nodes[leaf].box

	// Descend from the root, at each internal node weighing the cost of
	// stopping here as a sibling against the cost of pushing further down.
	sibling := t.root
	for !t.nodes[sibling].isLeaf() {
		n := &t.nodes[sibling]

		merged := n.box.Merge(box).Perimeter()
		siblingCost := 2 * merged
		// Descending enlarges this node no matter which child we pick.
		inheritedCost := 2 * (merged - n.box.Perimeter())

		var childCost [2]float64
		for i, c := range n.child {
			cn := &t.nodes[c]
			cost := inheritedCost + cn.box.Merge(box).Perimeter()
			if !cn.isLeaf() {
				// The child keeps existing; only its enlargement counts.
				cost -= cn.box.Perimeter()
			}
			childCost[i] = cost
		}

		if siblingCost < childCost[0] && siblingCost < childCost[1] {
			break
		}
		if childCost[1] < childCost[0] {
			sibling = n.child[1]
		} else {
			sibling = n.child[0]
		}
	}

	// Splice a fresh internal node between the sibling and its old parent.
	oldParent := t.nodes[sibling].parent
	parent := t.allocNode()
	p := &t.nodes[parent]
	p.parent = oldParent
	p.box = box.Merge(t.nodes[sibling].box)
	p.height = t.nodes[sibling].height + 1
	p.child[0] = sibling
	p.child[1] = leaf
	var zero T
	p.payload = zero
	t.nodes[sibling].parent = parent
	t.nodes[leaf].parent = parent

	if oldParent == NilHandle {
		t.root = parent
	} else {
		op := &t.nodes[oldParent]
		if op.child[0] == sibling {
			op.child[0] = parent
		} else {
			op.child[1] = parent
		}
	}

	t.fixPath(parent)
}

// removeLeaf detaches a leaf, collapses its now-redundant parent, and
// reconnects the sibling where the parent was. The leaf's own handle is left
// live so Modify can reuse it.
func (t *Tree[V, T]) removeLeaf(leaf Handle) {
	t.changes++
	if leaf == t.root {
		t.root = NilHandle
		return
	}

	parent := t.nodes[leaf].parent
	grand := t.nodes[parent].parent
	sibling := t.nodes[parent].child[0]
	if sibling == leaf {
		sibling = t.nodes[parent].child[1]
	}

	if grand == NilHandle {
		t.root = sibling
		t.nodes[sibling].parent = NilHandle
	} else {
		g := &t.nodes[grand]
		if g.child[0] == parent {
			g.child[0] = sibling
		} else {
			g.child[1] = sibling
		}
		t.nodes[sibling].parent = grand
		t.fixPath(grand)
	}

	t.freeNode(parent)
}

// fixPath walks from h to the root, rebalancing each node and recomputing
// its box and height from its children. Called after every structural
// change.
func (t *Tree[V, T]) fixPath(h Handle) {
	for h != NilHandle {
		h = t.rebalance(h)

		n := &t.nodes[h]
		c0, c1 := &t.nodes[n.child[0]], &t.nodes[n.child[1]]
		n.box = c0.box.Merge(c1.box)
		n.height = 1 + max32(c0.height, c1.height)

		h = n.parent
	}
}

// rebalance applies at most one rotation at h and returns the handle now
// occupying h's old position in the tree.
func (t *Tree[V, T]) rebalance(h Handle) Handle {
	n := &t.nodes[h]
	if n.isLeaf() || n.height < 2 {
		return h
	}

	balance := int(t.nodes[n.child[1]].height - t.nodes[n.child[0]].height)
	if balance > t.params.BalanceThreshold {
		return t.rotateUp(h, n.child[1])
	}
	if -balance > t.params.BalanceThreshold {
		return t.rotateUp(h, n.child[0])
	}
	return h
}

// rotateUp promotes child c into a's position. The taller of c's children
// stays under c; the shorter one pairs with a's other child under a, which
// minimizes the resulting height.
func (t *Tree[V, T]) rotateUp(ia, ic Handle) Handle {
	t.changes++
	a := &t.nodes[ia]
	c := &t.nodes[ic]

	ci := 0
	if a.child[1] == ic {
		ci = 1
	}
	ib := a.child[1-ci]

	tall, short := c.child[0], c.child[1]
	if t.nodes[short].height > t.nodes[tall].height {
		tall, short = short, tall
	}

	// c takes a's place, parent link included.
	c.parent = a.parent
	a.parent = ic
	c.child[0] = ia
	c.child[1] = tall
	t.nodes[tall].parent = ic
	a.child[ci] = short
	t.nodes[short].parent = ia

	if c.parent == NilHandle {
		t.root = ic
	} else {
		p := &t.nodes[c.parent]
		if p.child[0] == ia {
			p.child[0] = ic
		} else {
			p.child[1] = ic
		}
	}

	// Repair the two touched nodes bottom-up.
	a.box = t.nodes[ib].box.Merge(t.nodes[short].box)
	a.height = 1 + max32(t.nodes[ib].height, t.nodes[short].height)
	c.box = a.box.Merge(t.nodes[tall].box)
	c.height = 1 + max32(a.height, t.nodes[tall].height)

	return ic
}

func (t *Tree[V, T]) allocNode() Handle {
	h := t.arena.Allocate()
	t.syncNodes()
	return h
}

// syncNodes grows the node table in lockstep with the arena. Growth copies
// the backing array, so pointers into it do not survive; handles do.
func (t *Tree[V, T]) syncNodes() {
	if c := t.arena.Capacity(); c > len(t.nodes) {
		t.nodes = append(t.nodes, make([]node[V, T], c-len(t.nodes))...)
	}
}

func (t *Tree[V, T]) freeNode(h Handle) {
	n := &t.nodes[h]
	n.parent = NilHandle
	n.child[0] = NilHandle
	n.child[1] = NilHandle
	n.height = 0
	var zero T
	n.payload = zero
	t.arena.Free(h)
}

// String renders the structure for diagnostics, one node per line, children
// indented under their parent.
func (t *Tree[V, T]) String() string {
	if t.root == NilHandle {
		return "(empty)\n"
	}
	var sb strings.Builder
	t.dump(&sb, t.root, 0)
	return sb.String()
}

func (t *Tree[V, T]) dump(sb *strings.Builder, h Handle, depth int) {
	n := &t.nodes[h]
	sb.WriteString(strings.Repeat("  ", depth))
	if n.isLeaf() {
		fmt.Fprintf(sb, "leaf %d box=%v..%v payload=%v\n", h, n.box.Min, n.box.Max, n.payload)
		return
	}
	fmt.Fprintf(sb, "node %d h=%d box=%v..%v\n", h, n.height, n.box.Min, n.box.Max)
	t.dump(sb, n.child[0], depth+1)
	t.dump(sb, n.child[1], depth+1)
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
