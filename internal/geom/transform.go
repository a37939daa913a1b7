package geom

import "math"

// SelectionHandle names a grip on the selection box.
type SelectionHandle string

const (
	EdgeTop    SelectionHandle = "top_edge"
	EdgeRight  SelectionHandle = "right_edge"
	EdgeBottom SelectionHandle = "bottom_edge"
	EdgeLeft   SelectionHandle = "left_edge"

	CornerTopLeft     SelectionHandle = "top_left_corner"
	CornerTopRight    SelectionHandle = "top_right_corner"
	CornerBottomRight SelectionHandle = "bottom_right_corner"
	CornerBottomLeft  SelectionHandle = "bottom_left_corner"

	RotateTopLeft     SelectionHandle = "top_left_resize_corner"
	RotateTopRight    SelectionHandle = "top_right_resize_corner"
	RotateBottomRight SelectionHandle = "bottom_right_resize_corner"
	RotateBottomLeft  SelectionHandle = "bottom_left_resize_corner"

	HandleRotate     SelectionHandle = "rotate"
	HandleCenter     SelectionHandle = "center"
	HandleBackground SelectionHandle = "background"
)

// IsRotateCorner reports whether h is one of the four rotate corners.
func (h SelectionHandle) IsRotateCorner() bool {
	switch h {
	case RotateTopLeft, RotateTopRight, RotateBottomRight, RotateBottomLeft:
		return true
	}
	return false
}

// IsEdge reports whether h is one of the four resize edges.
func (h SelectionHandle) IsEdge() bool {
	switch h {
	case EdgeTop, EdgeRight, EdgeBottom, EdgeLeft:
		return true
	}
	return false
}

// TransformedBounds is the result of dragging a resize handle. Scale is
// signed; a negative component means that axis flipped.
type TransformedBounds struct {
	Bounds
	Scale Vec
}

// TransformedBoundingBox moves the given handle of bounds by delta. Delta
// is in page space and is counter-rotated by rotation before use. When
// lockAspect is set the result keeps the original width/height ratio. For
// rotated boxes the corner opposite the handle stays put in page space.
func TransformedBoundingBox(b Bounds, handle SelectionHandle, delta Vec, rotation float64, lockAspect bool) TransformedBounds {
	ax0, ay0 := b.MinX, b.MinY
	ax1, ay1 := b.MaxX, b.MaxY
	bx0, by0 := b.MinX, b.MinY
	bx1, by1 := b.MaxX, b.MaxY

	if handle == HandleCenter {
		return TransformedBounds{
			Bounds: Bounds{
				MinX:   bx0 + delta.X,
				MinY:   by0 + delta.Y,
				MaxX:   bx1 + delta.X,
				MaxY:   by1 + delta.Y,
				Width:  bx1 - bx0,
				Height: by1 - by0,
			},
			Scale: Vec{X: 1, Y: 1},
		}
	}

	d := delta.Rot(-rotation)

	switch handle {
	case EdgeTop, CornerTopLeft, CornerTopRight:
		by0 += d.Y
	case EdgeBottom, CornerBottomLeft, CornerBottomRight:
		by1 += d.Y
	}
	switch handle {
	case EdgeLeft, CornerTopLeft, CornerBottomLeft:
		bx0 += d.X
	case EdgeRight, CornerTopRight, CornerBottomRight:
		bx1 += d.X
	}

	aw := ax1 - ax0
	ah := ay1 - ay0
	scaleX := (bx1 - bx0) / aw
	scaleY := (by1 - by0) / ah
	flipX := scaleX < 0
	flipY := scaleY < 0
	bw := math.Abs(bx1 - bx0)
	bh := math.Abs(by1 - by0)

	if lockAspect {
		ar := aw / ah
		isTall := ar < bw/bh
		tw := bw * signNeg(scaleY) * (1 / ar)
		th := bh * signNeg(scaleX) * ar

		switch handle {
		case CornerTopLeft:
			if isTall {
				by0 = by1 + tw
			} else {
				bx0 = bx1 + th
			}
		case CornerTopRight:
			if isTall {
				by0 = by1 + tw
			} else {
				bx1 = bx0 - th
			}
		case CornerBottomRight:
			if isTall {
				by1 = by0 - tw
			} else {
				bx1 = bx0 - th
			}
		case CornerBottomLeft:
			if isTall {
				by1 = by0 - tw
			} else {
				bx0 = bx1 + th
			}
		case EdgeBottom, EdgeTop:
			m := (bx0 + bx1) / 2
			w := bh * ar
			bx0 = m - w/2
			bx1 = m + w/2
		case EdgeLeft, EdgeRight:
			m := (by0 + by1) / 2
			h := bw / ar
			by0 = m - h/2
			by1 = m + h/2
		}
	}

	if math.Mod(rotation, math.Pi*2) != 0 {
		c0 := V(ax0, ay0).Med(V(ax1, ay1))
		c1 := V(bx0, by0).Med(V(bx1, by1))
		anchor := func(bp, ap Vec) Vec {
			return bp.RotWith(c1, rotation).Sub(ap.RotWith(c0, rotation))
		}
		var cv Vec
		switch handle {
		case CornerTopLeft:
			cv = anchor(V(bx1, by1), V(ax1, ay1))
		case CornerTopRight:
			cv = anchor(V(bx0, by1), V(ax0, ay1))
		case CornerBottomRight:
			cv = anchor(V(bx0, by0), V(ax0, ay0))
		case CornerBottomLeft:
			cv = anchor(V(bx1, by0), V(ax1, ay0))
		case EdgeTop:
			cv = anchor(V(bx0, by1).Med(V(bx1, by1)), V(ax0, ay1).Med(V(ax1, ay1)))
		case EdgeLeft:
			cv = anchor(V(bx1, by0).Med(V(bx1, by1)), V(ax1, ay0).Med(V(ax1, ay1)))
		case EdgeBottom:
			cv = anchor(V(bx0, by0).Med(V(bx1, by0)), V(ax0, ay0).Med(V(ax1, ay0)))
		case EdgeRight:
			cv = anchor(V(bx0, by0).Med(V(bx0, by1)), V(ax0, ay0).Med(V(ax0, ay1)))
		}
		bx0, by0 = bx0-cv.X, by0-cv.Y
		bx1, by1 = bx1-cv.X, by1-cv.Y
	}

	if bx1 < bx0 {
		bx0, bx1 = bx1, bx0
	}
	if by1 < by0 {
		by0, by1 = by1, by0
	}

	sx := (bx1 - bx0) / nonZero(ax1-ax0)
	sy := (by1 - by0) / nonZero(ay1-ay0)
	if flipX {
		sx = -sx
	}
	if flipY {
		sy = -sy
	}
	return TransformedBounds{
		Bounds: Bounds{
			MinX:   bx0,
			MinY:   by0,
			MaxX:   bx1,
			MaxY:   by1,
			Width:  bx1 - bx0,
			Height: by1 - by0,
		},
		Scale: Vec{X: sx, Y: sy},
	}
}

// RelativeTransformedBoundingBox places a child box inside a transformed
// parent box, keeping its relative position and size. initial is the parent
// before the transform and child the child's initial bounds.
func RelativeTransformedBoundingBox(b, initial, child Bounds, flipX, flipY bool) Bounds {
	var nx, ny float64
	if flipX {
		nx = (initial.MaxX - child.MaxX) / initial.Width
	} else {
		nx = (child.MinX - initial.MinX) / initial.Width
	}
	if flipY {
		ny = (initial.MaxY - child.MaxY) / initial.Height
	} else {
		ny = (child.MinY - initial.MinY) / initial.Height
	}
	nw := child.Width / initial.Width
	nh := child.Height / initial.Height
	minX := b.MinX + b.Width*nx
	minY := b.MinY + b.Height*ny
	width := b.Width * nw
	height := b.Height * nh
	return Bounds{
		MinX:   minX,
		MinY:   minY,
		MaxX:   minX + width,
		MaxY:   minY + height,
		Width:  width,
		Height: height,
	}
}

func signNeg(v float64) float64 {
	if v < 0 {
		return 1
	}
	return -1
}

func nonZero(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}
