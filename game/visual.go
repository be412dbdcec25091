package game

// LineStyle selects how lines and outlines are stroked.
type LineStyle int32

const (
	LineSolid LineStyle = iota
	LineDashed
	LineDotted
)

func (s LineStyle) String() string {
	switch s {
	case LineDashed:
		return "dashed"
	case LineDotted:
		return "dotted"
	default:
		return "solid"
	}
}

// Align is the horizontal alignment of text.
type Align int32

const (
	AlignCenter Align = iota
	AlignLeft
	AlignRight
)

func (a Align) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignRight:
		return "right"
	default:
		return "center"
	}
}

// Point is a position in room coordinates; fractional values are allowed.
type Point struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

type CircleStyle struct {
	Radius      float32
	Fill        Color
	Opacity     float32
	Stroke      Color
	StrokeWidth float32
}

func DefaultCircle() CircleStyle {
	return CircleStyle{
		Radius:      0.15,
		Fill:        White,
		Opacity:     0.5,
		Stroke:      Transparent,
		StrokeWidth: 0.1,
	}
}

type LineStyleOptions struct {
	Width     float32
	Color     Color
	Opacity   float32
	LineStyle LineStyle
}

func DefaultLine() LineStyleOptions {
	return LineStyleOptions{
		Width:     0.1,
		Color:     White,
		Opacity:   0.5,
		LineStyle: LineSolid,
	}
}

type PolyStyle struct {
	Fill        Color
	Opacity     float32
	Stroke      Color
	StrokeWidth float32
	LineStyle   LineStyle
}

func DefaultPoly() PolyStyle {
	return PolyStyle{
		Fill:        Transparent,
		Opacity:     0.5,
		Stroke:      White,
		StrokeWidth: 0.1,
		LineStyle:   LineSolid,
	}
}

type TextStyle struct {
	Color             Color
	Font              string
	Stroke            Color
	StrokeWidth       float32
	Background        Color
	BackgroundPadding float32
	Align             Align
	Opacity           float32
}

func DefaultText() TextStyle {
	return TextStyle{
		Color:             White,
		Font:              "",
		Stroke:            Transparent,
		StrokeWidth:       0.15,
		Background:        Transparent,
		BackgroundPadding: 0.3,
		Align:             AlignCenter,
		Opacity:           1,
	}
}
