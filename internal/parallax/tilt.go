package parallax

import "fmt"

// MaxTilt is the card hover tilt limit in degrees.
const MaxTilt = 8.0

// Tilt maps a pointer position inside a card (0..1 on each axis) to the
// card's rotation in degrees about X and Y.
func Tilt(px, py, maxDeg float64) (rx, ry float64) {
	px, py = clamp01(px), clamp01(py)
	ry = (px - 0.5) * maxDeg * 2
	rx = -(py - 0.5) * maxDeg * 2
	return rx, ry
}

// Glow formats the eased cursor as CSS percentages for the radial glow.
func Glow(cursor Vec2) (mx, my string) {
	return fmt.Sprintf("%.2f%%", cursor.X*100), fmt.Sprintf("%.2f%%", cursor.Y*100)
}

// Transform formats a layer offset as a CSS translate3d.
func Transform(offset Vec2) string {
	return fmt.Sprintf("translate3d(%.2fpx, %.2fpx, 0)", offset.X, offset.Y)
}
