package broadphase

// AABB is an axis-aligned box: Min is inclusive, Max is exclusive.
type AABB[V Vector[V]] struct {
	Min, Max V
}

// NewAABB builds a box from two arbitrary corners, normalizing so that
// Min <= Max on every axis.
func NewAABB[V Vector[V]](a, b V) AABB[V] {
	return AABB[V]{Min: a.Min(b), Max: a.Max(b)}
}

func (a AABB[V]) normalized() AABB[V] {
	return NewAABB(a.Min, a.Max)
}

// Merge returns the tight union of the two boxes.
func (a AABB[V]) Merge(b AABB[V]) AABB[V] {
	return AABB[V]{Min: a.Min.Min(b.Min), Max: a.Max.Max(b.Max)}
}

// Contains reports whether b lies entirely inside a.
func (a AABB[V]) Contains(b AABB[V]) bool {
	return a.Min.LessEq(b.Min) && b.Max.LessEq(a.Max)
}

// ContainsPoint reports whether p lies inside the box. The lower bound is
// inclusive, the upper bound exclusive.
func (a AABB[V]) ContainsPoint(p V) bool {
	return a.Min.LessEq(p) && p.Less(a.Max)
}

// Intersects reports whether the two boxes overlap. Boxes that merely share
// an upper-exclusive face do not intersect.
func (a AABB[V]) Intersects(b AABB[V]) bool {
	return a.Min.Less(b.Max) && b.Min.Less(a.Max)
}

// Equal reports exact equality of both corners.
func (a AABB[V]) Equal(b AABB[V]) bool {
	return a.Min.LessEq(b.Min) && b.Min.LessEq(a.Min) &&
		a.Max.LessEq(b.Max) && b.Max.LessEq(a.Max)
}

// Perimeter is the cost measure used to rank insertion points: twice the sum
// of the per-axis extents. Cheaper than surface area and it generalizes over
// dimensionality.
func (a AABB[V]) Perimeter() float64 {
	return a.Max.Sub(a.Min).Sum() * 2
}

// Expand grows the box by m on every side. Negative m shrinks it.
func (a AABB[V]) Expand(m float64) AABB[V] {
	return AABB[V]{Min: a.Min.Offset(-m), Max: a.Max.Offset(m)}
}

// ExpandDirected grows the box by d along the sign of each component of d
// only. A box swept by a displacement covers exactly this region.
func (a AABB[V]) ExpandDirected(d V) AABB[V] {
	return AABB[V]{
		Min: a.Min.Add(d).Min(a.Min),
		Max: a.Max.Add(d).Max(a.Max),
	}
}

// Center is the midpoint of the box.
func (a AABB[V]) Center() V {
	return a.Min.Add(a.Max).Scale(0.5)
}
