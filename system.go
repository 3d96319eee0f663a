package broadphase

import (
	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"
)

// BroadphaseEntity is an ECS entity tracked by the BroadphaseSystem.
type BroadphaseEntity struct {
	*ecs.BasicEntity
	*common.SpaceComponent
}

// CollisionCandidateMessage is dispatched once per candidate pair per
// update. Pairs come from margin-expanded boxes, so they may be false
// positives; receivers run their own exact test.
type CollisionCandidateMessage struct {
	A *BroadphaseEntity
	B *BroadphaseEntity
}

// Type implements engo.Message.
func (CollisionCandidateMessage) Type() string {
	return "CollisionCandidateMessage"
}

type broadphaseEntry struct {
	BroadphaseEntity
	handle  Handle
	lastMin Vec2
}

// BroadphaseSystem maintains a dynamic AABB tree over the space components
// of its entities and dispatches candidate overlap pairs each update. It
// replaces an all-pairs scan with two tree walks per entity, so it stays
// usable with thousands of movers.
type BroadphaseSystem struct {
	// Params tunes the underlying tree; zero value means DefaultParams.
	Params Params

	// Dispatch receives candidate pair messages. Nil means engo.Mailbox.
	Dispatch func(engo.Message)

	tree     *Tree[Vec2, uint64]
	entities map[uint64]*broadphaseEntry
}

func (bs *BroadphaseSystem) init() {
	if bs.tree != nil {
		return
	}
	p := bs.Params
	if p == (Params{}) {
		p = DefaultParams()
	}
	bs.tree = NewTree[Vec2, uint64](p)
	bs.entities = map[uint64]*broadphaseEntry{}
}

// Add starts tracking an entity's space component.
func (bs *BroadphaseSystem) Add(ent *ecs.BasicEntity, sc *common.SpaceComponent) {
	bs.init()
	box := spaceAABB(sc)
	h := bs.tree.Insert(box, ent.ID())
	bs.entities[ent.ID()] = &broadphaseEntry{
		BroadphaseEntity: BroadphaseEntity{ent, sc},
		handle:           h,
		lastMin:          box.Min,
	}
}

// Remove stops tracking an entity. Unknown entities are ignored.
func (bs *BroadphaseSystem) Remove(ent ecs.BasicEntity) {
	e, ok := bs.entities[ent.ID()]
	if !ok {
		return
	}
	bs.tree.Remove(e.handle)
	delete(bs.entities, ent.ID())
}

// Update moves every tracked box in the tree, using the per-tick
// displacement as the velocity hint, then dispatches one message per
// candidate pair.
func (bs *BroadphaseSystem) Update(dt float32) {
	bs.init()

	for _, e := range bs.entities {
		box := spaceAABB(e.SpaceComponent)
		vel := box.Min.Sub(e.lastMin)
		bs.tree.Modify(e.handle, box, vel)
		e.lastMin = box.Min
	}

	dispatch := bs.Dispatch
	if dispatch == nil {
		dispatch = engo.Mailbox.Dispatch
	}

	for _, e := range bs.entities {
		box := spaceAABB(e.SpaceComponent)
		bs.tree.CollideAabb(box, func(h Handle) bool {
			otherID := *bs.tree.GetPayload(h)
			// Visit each unordered pair once.
			if otherID <= e.ID() {
				return false
			}
			other := bs.entities[otherID]
			dispatch(CollisionCandidateMessage{
				A: &e.BroadphaseEntity,
				B: &other.BroadphaseEntity,
			})
			return false
		})
	}
}

// Tree exposes the underlying structure for queries and diagnostics.
func (bs *BroadphaseSystem) Tree() *Tree[Vec2, uint64] {
	bs.init()
	return bs.tree
}

func spaceAABB(sc *common.SpaceComponent) AABB[Vec2] {
	min := Vec2{float64(sc.Position.X), float64(sc.Position.Y)}
	return AABB[Vec2]{
		Min: min,
		Max: min.Add(Vec2{float64(sc.Width), float64(sc.Height)}),
	}
}
