package broadphase

import (
	"image"
	"image/color"
	"image/draw"
	"os"

	"golang.org/x/image/bmp"
)

// DrawTree renders a 2D tree to a BMP file: internal node boxes in red,
// leaf boxes in green, on a black background. Coordinates are truncated to
// pixels, so it is only useful for trees living in roughly pixel-scale
// space. Diagnostic tool.
func DrawTree[T any](t *Tree[Vec2, T], path string) error {
	world := AABB[Vec2]{Max: Vec2{1, 1}}
	if t.root != NilHandle {
		world = t.nodes[t.root].box
	}
	frame := image.NewRGBA(image.Rect(
		int(world.Min[0]), int(world.Min[1]),
		int(world.Max[0])+1, int(world.Max[1])+1,
	))
	draw.Draw(frame, frame.Bounds(), &image.Uniform{color.Black}, image.Point{}, draw.Src)

	internal := color.RGBA{255, 0, 0, 255}
	leaf := color.RGBA{0, 255, 0, 255}

	rect := func(b AABB[Vec2], col color.RGBA) {
		x1, y1 := int(b.Min[0]), int(b.Min[1])
		x2, y2 := int(b.Max[0]), int(b.Max[1])
		for x := x1; x <= x2; x++ {
			frame.Set(x, y1, col)
			frame.Set(x, y2, col)
		}
		for y := y1; y <= y2; y++ {
			frame.Set(x1, y, col)
			frame.Set(x2, y, col)
		}
	}

	if t.root != NilHandle {
		t.drawNode(t.root, func(b AABB[Vec2], isLeaf bool) {
			if isLeaf {
				rect(b, leaf)
			} else {
				rect(b, internal)
			}
		})
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return bmp.Encode(f, frame)
}

func (t *Tree[V, T]) drawNode(h Handle, emit func(AABB[V], bool)) {
	n := &t.nodes[h]
	emit(n.box, n.isLeaf())
	if !n.isLeaf() {
		t.drawNode(n.child[0], emit)
		t.drawNode(n.child[1], emit)
	}
}
