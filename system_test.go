package broadphase

import (
	"testing"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"
)

type testBody struct {
	ecs.BasicEntity
	common.SpaceComponent
}

func newTestBody(x, y, w, h float32) *testBody {
	return &testBody{
		BasicEntity: ecs.NewBasic(),
		SpaceComponent: common.SpaceComponent{
			Position: engo.Point{X: x, Y: y},
			Width:    w,
			Height:   h,
		},
	}
}

func TestBroadphaseSystem(t *testing.T) {
	var msgs []CollisionCandidateMessage
	bs := BroadphaseSystem{
		Dispatch: func(m engo.Message) {
			msgs = append(msgs, m.(CollisionCandidateMessage))
		},
	}

	a := newTestBody(0, 0, 10, 10)
	b := newTestBody(5, 5, 10, 10)
	c := newTestBody(500, 500, 10, 10)
	for _, e := range []*testBody{a, b, c} {
		bs.Add(&e.BasicEntity, &e.SpaceComponent)
	}
	if got := bs.Tree().Count(); got != 3 {
		t.Fatalf("tree leaves = %d, want 3", got)
	}

	bs.Update(1.0 / 30)
	bs.Tree().Validate()
	if len(msgs) != 1 {
		t.Fatalf("candidate pairs = %d, want 1 (a/b overlap)", len(msgs))
	}
	pair := map[uint64]bool{msgs[0].A.ID(): true, msgs[0].B.ID(): true}
	if !pair[a.ID()] || !pair[b.ID()] {
		t.Errorf("pair = %+v, want a/b", pair)
	}

	// Drive c onto the overlapping pair and update again.
	msgs = nil
	c.Position = engo.Point{X: 2, Y: 2}
	bs.Update(1.0 / 30)
	bs.Tree().Validate()
	if len(msgs) != 3 {
		t.Fatalf("candidate pairs = %d, want 3 after moving c", len(msgs))
	}

	// Removed entities stop producing candidates.
	msgs = nil
	bs.Remove(c.BasicEntity)
	if got := bs.Tree().Count(); got != 2 {
		t.Fatalf("tree leaves = %d after Remove, want 2", got)
	}
	bs.Update(1.0 / 30)
	bs.Tree().Validate()
	if len(msgs) != 1 {
		t.Fatalf("candidate pairs = %d after Remove, want 1", len(msgs))
	}

	// Removing an unknown entity is a no-op.
	bs.Remove(c.BasicEntity)
	if got := bs.Tree().Count(); got != 2 {
		t.Fatalf("tree leaves = %d, want 2", got)
	}
}

func TestBroadphaseSystemSmallMotionIsFree(t *testing.T) {
	bs := BroadphaseSystem{
		Params:   Params{Margin: 1, ShrinkMargin: 1, VelocityMarginFactor: 2, BalanceThreshold: 1},
		Dispatch: func(engo.Message) {},
	}

	var bodies []*testBody
	for i := 0; i < 16; i++ {
		e := newTestBody(float32(i%4)*50, float32(i/4)*50, 8, 8)
		bodies = append(bodies, e)
		bs.Add(&e.BasicEntity, &e.SpaceComponent)
	}
	bs.Update(1.0 / 30)
	changes := bs.Tree().StructuralChanges()

	for step := 0; step < 30; step++ {
		d := float32(0.1)
		if step%2 == 1 {
			d = -0.1
		}
		for _, e := range bodies {
			e.Position.X += d
			e.Position.Y += d
		}
		bs.Update(1.0 / 30)
	}
	bs.Tree().Validate()

	if got := bs.Tree().StructuralChanges(); got != changes {
		t.Errorf("StructuralChanges moved %d -> %d during sub-margin motion", changes, got)
	}
}
