package coords

// Scale of normalized units across half the door in the 3D scene.
const (
	SceneScaleX = 200.0
	SceneScaleY = 300.0
)

// SceneSurface is the 3D kitchen view. Positions are world units on the
// door plane, with y = 0 at the door's vertical center.
type SceneSurface struct {
	FridgeWidth  float64
	FridgeHeight float64
	DoorMargin   float64 // door is this much smaller than the fridge body
	CenterX      float64 // world x of the door center
	DragInset    float64 // magnets stay this far inside the door edge
}

// DefaultScene matches the kitchen scene geometry.
func DefaultScene() SceneSurface {
	return SceneSurface{
		FridgeWidth:  3,
		FridgeHeight: 4.5,
		DoorMargin:   0.4,
		CenterX:      1.5,
		DragInset:    0.3,
	}
}

func (s SceneSurface) DoorWidth() float64  { return s.FridgeWidth - s.DoorMargin }
func (s SceneSurface) DoorHeight() float64 { return s.FridgeHeight - s.DoorMargin }

func (s SceneSurface) Normalize(p Point) Point {
	return Point{
		X: (p.X - s.CenterX) / (s.DoorWidth() / 2) * SceneScaleX,
		Y: p.Y / (s.DoorHeight() / 2) * SceneScaleY,
	}
}

func (s SceneSurface) Denormalize(n Point) Point {
	return Point{
		X: s.CenterX + n.X/SceneScaleX*(s.DoorWidth()/2),
		Y: n.Y / SceneScaleY * (s.DoorHeight() / 2),
	}
}

func (s SceneSurface) Bounds() Bounds {
	halfW, halfH := s.DoorWidth()/2, s.DoorHeight()/2
	return Bounds{
		Min: Point{X: s.CenterX - halfW + s.DragInset, Y: -halfH + s.DragInset},
		Max: Point{X: s.CenterX + halfW - s.DragInset, Y: halfH - s.DragInset},
	}
}

func (s SceneSurface) Clamp(p Point) Point {
	return s.Bounds().Clamp(p)
}
