package coords

// DefaultMagnetSize is the rendered edge length of a magnet in pixels.
const DefaultMagnetSize = 80.0

// DOMSurface is the 2D door. Positions are the pixel left/top of a magnet
// inside a Width x Height container; screen y grows downward, so Y flips.
type DOMSurface struct {
	Width      float64
	Height     float64
	MagnetSize float64
}

// NewDOMSurface returns a surface with the default magnet size.
func NewDOMSurface(width, height float64) DOMSurface {
	return DOMSurface{Width: width, Height: height, MagnetSize: DefaultMagnetSize}
}

func (d DOMSurface) Normalize(p Point) Point {
	return Point{
		X: p.X - d.Width/2,
		Y: d.Height/2 - p.Y,
	}
}

func (d DOMSurface) Denormalize(n Point) Point {
	return Point{
		X: d.Width/2 + n.X,
		Y: d.Height/2 - n.Y,
	}
}

func (d DOMSurface) Bounds() Bounds {
	return Bounds{
		Min: Point{X: 0, Y: 0},
		Max: Point{X: d.Width - d.MagnetSize, Y: d.Height - d.MagnetSize},
	}
}

func (d DOMSurface) Clamp(p Point) Point {
	return d.Bounds().Clamp(p)
}
