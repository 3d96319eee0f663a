package broadphase

import (
	"testing"
)

func expectPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s did not panic", name)
		}
	}()
	fn()
}

func TestValidatePassesAfterOps(t *testing.T) {
	tr := NewTree[Vec2, int](DefaultParams())
	tr.Validate()

	var hs []Handle
	for i := 0; i < 20; i++ {
		hs = append(hs, tr.Insert(box2(float64(i), float64(i), float64(i)+1, float64(i)+1), i))
		tr.Validate()
	}
	for _, h := range hs[:10] {
		tr.Remove(h)
		tr.Validate()
	}
}

func TestValidateDetectsCorruption(t *testing.T) {
	build := func() *Tree[Vec2, int] {
		tr := NewTree[Vec2, int](DefaultParams())
		for i := 0; i < 8; i++ {
			tr.Insert(box2(float64(i)*5, 0, float64(i)*5+2, 2), i)
		}
		return tr
	}

	t.Run("bad height", func(t *testing.T) {
		tr := build()
		tr.nodes[tr.root].height += 3
		expectPanic(t, "Validate", tr.Validate)
	})

	t.Run("loose box", func(t *testing.T) {
		tr := build()
		tr.nodes[tr.root].box = tr.nodes[tr.root].box.Expand(5)
		expectPanic(t, "Validate", tr.Validate)
	})

	t.Run("unreachable handle", func(t *testing.T) {
		tr := build()
		tr.arena.Allocate()
		expectPanic(t, "Validate", tr.Validate)
	})
}

func TestPreconditionPanics(t *testing.T) {
	tr := NewTree[Vec2, int](DefaultParams())
	h := tr.Insert(box2(0, 0, 1, 1), 0)

	expectPanic(t, "InsertWithHandle over live handle", func() {
		tr.InsertWithHandle(box2(2, 2, 3, 3), 1, h)
	})
	expectPanic(t, "Modify of dead handle", func() {
		tr.Modify(Handle(999), box2(0, 0, 1, 1), Vec2{})
	})
	expectPanic(t, "GetPayload of dead handle", func() {
		tr.GetPayload(Handle(999))
	})
	expectPanic(t, "GetBox of dead handle", func() {
		tr.GetBox(Handle(999))
	})
}
