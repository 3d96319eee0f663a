package broadphase

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestStressRandomOps drives the tree through a long random mix of inserts,
// removals, and moves, re-validating every invariant after every single
// operation and reconciling the live handle set against a mirror.
func TestStressRandomOps(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	tr := NewTree[Vec2, int](DefaultParams())

	type entry struct {
		box     AABB[Vec2]
		payload int
	}
	mirror := map[Handle]entry{}
	keys := func() []Handle {
		out := make([]Handle, 0, len(mirror))
		for h := range mirror {
			out = append(out, h)
		}
		return out
	}
	randomBox := func() AABB[Vec2] {
		min := Vec2{rng.Float64() * 1000, rng.Float64() * 1000}
		return AABB[Vec2]{Min: min, Max: min.Add(Vec2{1 + rng.Float64()*40, 1 + rng.Float64()*40})}
	}

	const ops = 1500
	for i := 0; i < ops; i++ {
		switch r := rng.Float64(); {
		case r < 0.5 || len(mirror) == 0:
			box := randomBox()
			h := tr.Insert(box, i)
			_, dup := mirror[h]
			require.False(t, dup, "op %d: Insert returned live handle %d", i, h)
			mirror[h] = entry{box, i}

		case r < 0.75:
			hs := keys()
			h := hs[rng.Intn(len(hs))]
			require.True(t, tr.Remove(h), "op %d: Remove(%d)", i, h)
			delete(mirror, h)

		default:
			hs := keys()
			h := hs[rng.Intn(len(hs))]
			box := randomBox()
			vel := Vec2{rng.Float64()*20 - 10, rng.Float64()*20 - 10}
			tr.Modify(h, box, vel)
			mirror[h] = entry{box, mirror[h].payload}
		}

		tr.Validate()
		checkBalanced(t, tr)

		require.Equal(t, len(mirror), tr.Count(), "op %d: leaf count", i)
		seen := map[Handle]bool{}
		tr.Each(func(h Handle) { seen[h] = true })
		require.Equal(t, len(mirror), len(seen), "op %d: enumeration size", i)
		for h := range mirror {
			require.True(t, seen[h], "op %d: handle %d missing from enumeration", i, h)
		}
	}

	// Handles stayed stable across all the churn and growth.
	for h, e := range mirror {
		require.Equal(t, e.payload, *tr.GetPayload(h), "payload of %d", h)
		require.True(t, tr.GetBox(h).Contains(e.box), "stored box of %d contains its tight box", h)
	}

	// And queries still see exactly what the mirror says, margins aside.
	for h, e := range mirror {
		found := false
		tr.CollidePoint(e.box.Center(), func(got Handle) bool {
			if got == h {
				found = true
				return true
			}
			return false
		})
		require.True(t, found, "center of %d not reported", h)
	}
}

// TestStressAlternatingModify exercises the hysteresis boundary: motion just
// under the slack must be free, motion past it must relocate the leaf and
// keep every invariant intact.
func TestStressAlternatingModify(t *testing.T) {
	params := Params{Margin: 1, ShrinkMargin: 1, VelocityMarginFactor: 0, BalanceThreshold: 2}
	tr := NewTree[Vec2, int](params)
	rng := rand.New(rand.NewSource(99))

	var handles []Handle
	for i := 0; i < 200; i++ {
		min := Vec2{rng.Float64() * 400, rng.Float64() * 400}
		handles = append(handles, tr.Insert(AABB[Vec2]{Min: min, Max: min.Add(Vec2{4, 4})}, i))
	}
	tr.Validate()

	for step := 0; step < 50; step++ {
		for j, h := range handles {
			if step%10 == 9 && j%4 == 0 {
				// Teleport far enough that a relocation is all but certain.
				min := Vec2{rng.Float64() * 400, rng.Float64() * 400}
				tr.Modify(h, AABB[Vec2]{Min: min, Max: min.Add(Vec2{4, 4})}, Vec2{})
				continue
			}
			stored := tr.GetBox(h)
			// Walk the tight box around inside its stored slack.
			jitter := Vec2{rng.Float64()*0.8 - 0.4, rng.Float64()*0.8 - 0.4}
			tight := AABB[Vec2]{
				Min: stored.Min.Offset(params.Margin).Add(jitter),
				Max: stored.Max.Offset(-params.Margin).Add(jitter),
			}
			tr.Modify(h, tight, Vec2{})
		}
		tr.Validate()
		checkBalanced(t, tr)
	}

	require.Equal(t, 200, tr.Count())
}
