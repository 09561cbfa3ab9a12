package viz

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

// Braille cells hold 2x4 dots:
// 1 4
// 2 5
// 3 6
// 7 8
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Dots returns the canvas size in sub-pixels.
func (c *Canvas) Dots() (int, int) { return c.Width * 2, c.Height * 4 }

// Set lights the dot at sub-pixel (x, y). Out of range dots are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) isSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawCircle outlines a circle. dotted keeps one arc step in three.
func (c *Canvas) DrawCircle(cx, cy, r int, dotted bool) {
	if r <= 0 {
		c.Set(cx, cy)
		return
	}
	steps := int(2 * math.Pi * float64(r))
	if steps < 8 {
		steps = 8
	}
	for i := 0; i < steps; i++ {
		if dotted && i%3 != 0 {
			continue
		}
		a := 2 * math.Pi * float64(i) / float64(steps)
		c.Set(cx+int(math.Round(float64(r)*math.Cos(a))), cy+int(math.Round(float64(r)*math.Sin(a))))
	}
}

// FillCircle lights every dot within r of (cx, cy).
func (c *Canvas) FillCircle(cx, cy, r int) {
	for y := -r; y <= r; y++ {
		for x := -r; x <= r; x++ {
			if x*x+y*y <= r*r {
				c.Set(cx+x, cy+y)
			}
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Viewport maps world coordinates onto canvas dots. Scale is world units
// per dot; y grows upwards in the world and downwards on screen.
type Viewport struct {
	Center r2.Vec
	Scale  float64
}

// Fit returns a viewport centred on the origin that shows extent in every
// direction on a w x h dot canvas.
func Fit(extent float64, w, h int) Viewport {
	half := math.Min(float64(w), float64(h)) / 2
	if extent <= 0 || half <= 0 {
		return Viewport{Scale: 1}
	}
	return Viewport{Scale: extent * 1.1 / half}
}

func (v Viewport) Project(p r2.Vec, w, h int) (int, int) {
	d := r2.Scale(1/v.Scale, r2.Sub(p, v.Center))
	return w/2 + int(math.Round(d.X)), h/2 - int(math.Round(d.Y))
}

// Dots converts a world length to dots.
func (v Viewport) Dots(length float64) int {
	return int(math.Round(length / v.Scale))
}

func (v Viewport) Zoom(factor float64) Viewport {
	v.Scale *= factor
	return v
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
