package renderer

// Vertex is a colored line vertex.
type Vertex struct {
	X, Y, Z float32 // Position
	R, G, B float32 // Color
}

var (
	gridColor  = [3]float32{0.35, 0.35, 0.4}
	axisColorX = [3]float32{0.9, 0.2, 0.2}
	axisColorY = [3]float32{0.2, 0.9, 0.2}
	axisColorZ = [3]float32{0.2, 0.4, 0.9}
)

// GridLines generates a square grid on the XZ plane centered on the origin,
// with lines every spacing units out to halfCells cells in each direction.
// Returns two vertices per line.
func GridLines(halfCells int, spacing float32) []Vertex {
	if halfCells <= 0 || spacing <= 0 {
		return nil
	}

	extent := float32(halfCells) * spacing
	vertices := make([]Vertex, 0, (2*halfCells+1)*4)

	for i := -halfCells; i <= halfCells; i++ {
		p := float32(i) * spacing
		c := gridColor

		// Lines along Z
		vertices = append(vertices,
			Vertex{p, 0, -extent, c[0], c[1], c[2]},
			Vertex{p, 0, extent, c[0], c[1], c[2]},
		)
		// Lines along X
		vertices = append(vertices,
			Vertex{-extent, 0, p, c[0], c[1], c[2]},
			Vertex{extent, 0, p, c[0], c[1], c[2]},
		)
	}

	return vertices
}

// AxisLines generates the three world axes from the origin, each length long.
func AxisLines(length float32) []Vertex {
	// Lift slightly above the grid to avoid z-fighting
	const lift = 0.01
	x, y, z := axisColorX, axisColorY, axisColorZ
	return []Vertex{
		{0, lift, 0, x[0], x[1], x[2]}, {length, lift, 0, x[0], x[1], x[2]},
		{0, lift, 0, y[0], y[1], y[2]}, {0, length, 0, y[0], y[1], y[2]},
		{0, lift, 0, z[0], z[1], z[2]}, {0, lift, length, z[0], z[1], z[2]},
	}
}
