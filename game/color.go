package game

import "fmt"

// Color is an RGBA word: RGB in the low 24 bits, alpha in the high byte.
// The zero value is fully transparent black.
type Color uint32

const (
	Transparent Color = 0
	White       Color = 0xffffffff
	Black       Color = 0xff000000
)

// RGB builds a fully opaque color.
func RGB(rgb uint32) Color {
	return Color(0xff000000 | rgb&0xffffff)
}

// RGBA builds a color with opacity in the high byte; opacity 0 is fully
// transparent and 0xff fully opaque.
func RGBA(rgb uint32, opacity uint8) Color {
	return Color(uint32(opacity)<<24 | rgb&0xffffff)
}

func (c Color) RGB() uint32 {
	return uint32(c) & 0xffffff
}

func (c Color) Alpha() uint8 {
	return uint8(uint32(c) >> 24)
}

func (c Color) IsTransparent() bool {
	return c.Alpha() == 0
}

// CSS renders the color the way the room visual layer expects it.
func (c Color) CSS() string {
	switch a := c.Alpha(); {
	case c == Transparent:
		return "transparent"
	case a == 0xff:
		return fmt.Sprintf("#%06x", c.RGB())
	default:
		rgb := c.RGB()
		return fmt.Sprintf("rgba(%d, %d, %d, %.3g)", rgb>>16, rgb>>8&0xff, rgb&0xff, float64(a)/255)
	}
}

func (c Color) String() string {
	return c.CSS()
}
