package main

import (
	"flag"
	"math/rand"
	"time"

	"github.com/ScottBrooks/broadphase"
	"github.com/mattn/go-colorable"
	log "github.com/sirupsen/logrus"
)

type body struct {
	handle broadphase.Handle
	pos    broadphase.Vec2
	vel    broadphase.Vec2
	size   broadphase.Vec2
}

func (b *body) box() broadphase.AABB[broadphase.Vec2] {
	return broadphase.AABB[broadphase.Vec2]{Min: b.pos, Max: b.pos.Add(b.size)}
}

func main() {
	count := flag.Int("n", 256, "number of boxes")
	ticks := flag.Int("ticks", 600, "simulation ticks")
	churn := flag.Int("churn", 8, "bodies removed and respawned per tick")
	seed := flag.Int64("seed", time.Now().Unix(), "rng seed")
	snapshot := flag.String("snapshot", "", "write a BMP of the final tree to this path")
	flag.Parse()

	log.SetOutput(colorable.NewColorableStdout())
	log.SetFormatter(&log.TextFormatter{ForceColors: true})
	log.SetLevel(log.DebugLevel)

	rng := rand.New(rand.NewSource(*seed))
	world := broadphase.V2(1024, 768)

	tree := broadphase.NewTree[broadphase.Vec2, int](broadphase.DefaultParams())
	tree.Reserve(*count * 2)

	spawn := func(i int) *body {
		b := &body{
			pos:  broadphase.V2(rng.Float64()*world.X(), rng.Float64()*world.Y()),
			vel:  broadphase.V2(rng.Float64()*120-60, rng.Float64()*120-60),
			size: broadphase.V2(4+rng.Float64()*28, 4+rng.Float64()*28),
		}
		b.handle = tree.Insert(b.box(), i)
		return b
	}

	bodies := make([]*body, *count)
	for i := range bodies {
		bodies[i] = spawn(i)
	}
	log.Infof("inserted %d bodies, tree height %d", tree.Count(), tree.Height())

	const dt = 1.0 / 30
	var candidates, moved int
	for tick := 0; tick < *ticks; tick++ {
		for _, b := range bodies {
			step := b.vel.Scale(dt)
			b.pos = b.pos.Add(step)
			// Bounce off the world edges.
			if b.pos.X() < 0 || b.pos.X()+b.size.X() > world.X() {
				b.vel = broadphase.V2(-b.vel.X(), b.vel.Y())
			}
			if b.pos.Y() < 0 || b.pos.Y()+b.size.Y() > world.Y() {
				b.vel = broadphase.V2(b.vel.X(), -b.vel.Y())
			}
			tree.Modify(b.handle, b.box(), step)
			moved++
		}

		for i := 0; i < *churn && len(bodies) > 0; i++ {
			j := rng.Intn(len(bodies))
			tree.Remove(bodies[j].handle)
			bodies[j] = spawn(j)
		}

		for _, b := range bodies {
			tree.CollideAabb(b.box(), func(h broadphase.Handle) bool {
				if h != b.handle {
					candidates++
				}
				return false
			})
		}

		if tick%60 == 0 {
			tree.Validate()
			log.Debugf("tick %d: height=%d leaves=%d structural=%d candidates=%d",
				tick, tree.Height(), tree.Count(), tree.StructuralChanges(), candidates)
		}
	}

	tree.Validate()
	log.Infof("done: %d moves, %d structural changes, %d candidate pairs",
		moved, tree.StructuralChanges(), candidates)

	if *snapshot != "" {
		if err := broadphase.DrawTree(tree, *snapshot); err != nil {
			log.Fatalf("writing snapshot: %v", err)
		}
		log.Infof("wrote %s", *snapshot)
	}
}
