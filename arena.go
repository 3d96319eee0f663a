package broadphase

// Handle is a stable identifier for a tree node. A handle stays valid from
// the moment it is allocated until it is freed, across any growth of the
// backing storage. NilHandle is never a valid node.
type Handle int32

// NilHandle marks "no node": an empty tree's root, a root's parent, a leaf's
// children.
const NilHandle Handle = -1

// Arena hands out small reusable integer handles. Internally it keeps a
// permutation of all handles in dense order with the live ones packed at the
// front, plus the inverse permutation, so every operation is O(1):
//
//	dense:  [live handles...][free handles...]
//	sparse: handle -> position in dense
//
// Freeing swaps a handle out of the live prefix, which reorders Each
// enumeration; order is not part of the API.
type Arena struct {
	dense  []Handle
	sparse []int32
	live   int
}

// Allocate returns a free handle, growing capacity by at least 1.5x when the
// pool is exhausted.
func (a *Arena) Allocate() Handle {
	if a.live == len(a.dense) {
		a.grow(len(a.dense) + 1)
	}
	h := a.dense[a.live]
	a.live++
	return h
}

// AllocateSpecific reserves a caller-chosen handle. It reports false when the
// handle is negative or already live.
func (a *Arena) AllocateSpecific(h Handle) bool {
	if h < 0 {
		return false
	}
	if int(h) >= len(a.dense) {
		a.grow(int(h) + 1)
	}
	if a.Contains(h) {
		return false
	}
	a.swap(int(a.sparse[h]), a.live)
	a.live++
	return true
}

// Free returns a live handle to the pool. Freeing a dead handle is a no-op.
func (a *Arena) Free(h Handle) {
	if !a.Contains(h) {
		return
	}
	a.live--
	a.swap(int(a.sparse[h]), a.live)
}

// Contains reports whether h is currently live.
func (a *Arena) Contains(h Handle) bool {
	return h >= 0 && int(h) < len(a.dense) && int(a.sparse[h]) < a.live
}

// Reserve grows capacity so that at least n handles can be live without
// further allocation.
func (a *Arena) Reserve(n int) {
	if n > len(a.dense) {
		a.grow(n)
	}
}

// LiveCount is the number of currently live handles.
func (a *Arena) LiveCount() int { return a.live }

// Capacity is the total number of handle slots, live and free.
func (a *Arena) Capacity() int { return len(a.dense) }

// Each calls fn for every live handle, in unspecified order. fn must not
// allocate or free handles.
func (a *Arena) Each(fn func(Handle)) {
	for i := 0; i < a.live; i++ {
		fn(a.dense[i])
	}
}

func (a *Arena) swap(i, j int) {
	hi, hj := a.dense[i], a.dense[j]
	a.dense[i], a.dense[j] = hj, hi
	a.sparse[hi], a.sparse[hj] = int32(j), int32(i)
}

func (a *Arena) grow(min int) {
	newCap := len(a.dense) * 3 / 2
	if newCap < min {
		newCap = min
	}
	if newCap < 8 {
		newCap = 8
	}
	for h := len(a.dense); h < newCap; h++ {
		a.dense = append(a.dense, Handle(h))
		a.sparse = append(a.sparse, int32(h))
	}
}
