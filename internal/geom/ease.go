package geom

// CubeInOut eases t in [0, 1] with a cubic curve, slow at both ends.
func CubeInOut(t float64) float64 {
	if t <= 0.5 {
		t *= 2
		return t * t * t / 2
	}
	t = 1 - (t*2 - 1)
	return (1-t*t*t)/2 + 0.5
}

// Lerp interpolates from a to b by t.
func Lerp(a, b Vec, t float64) Vec {
	return Vec{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}

// Round returns the nearest whole-pixel point, halves away from zero.
func (v Vec) Round() Point {
	return Point{X: round(v.X), Y: round(v.Y)}
}

func round(f float64) int {
	if f < 0 {
		return -int(-f + 0.5)
	}
	return int(f + 0.5)
}
