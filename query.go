package broadphase

// CollideCustom walks the tree depth-first, descending only into subtrees
// whose stored box satisfies pred, and calls visit once per matching leaf.
// visit returning true stops the traversal immediately; CollideCustom
// reports whether that happened.
//
// Stored boxes are margin-expanded, so a visited leaf is a candidate only:
// false positives are expected and the caller resolves them, false negatives
// against the tight original box never occur.
func (t *Tree[V, T]) CollideCustom(pred func(AABB[V]) bool, visit func(Handle) bool) bool {
	return t.collide(t.root, pred, visit)
}

func (t *Tree[V, T]) collide(h Handle, pred func(AABB[V]) bool, visit func(Handle) bool) bool {
	if h == NilHandle {
		return false
	}
	n := &t.nodes[h]
	if !pred(n.box) {
		return false
	}
	if n.isLeaf() {
		return visit(h)
	}
	if t.collide(n.child[0], pred, visit) {
		return true
	}
	return t.collide(n.child[1], pred, visit)
}

// CollidePoint visits every leaf whose stored box contains p.
func (t *Tree[V, T]) CollidePoint(p V, visit func(Handle) bool) bool {
	return t.CollideCustom(func(box AABB[V]) bool {
		return box.ContainsPoint(p)
	}, visit)
}

// CollideAabb visits every leaf whose stored box intersects box.
func (t *Tree[V, T]) CollideAabb(box AABB[V], visit func(Handle) bool) bool {
	box = box.normalized()
	return t.CollideCustom(func(b AABB[V]) bool {
		return b.Intersects(box)
	}, visit)
}
