package screeps

import "github.com/wippyai/screeps-wasm/game"

// Draw calls are fire and forget: the host records them for the room and
// returns nothing. Nil options use the game defaults.

func DrawCircle(room string, at game.Point, opts *game.CircleStyle) {
	st := game.DefaultCircle()
	if opts != nil {
		st = *opts
	}
	if r, ok := latin1(room); ok {
		drawCircle(r, at, st)
	}
}

func DrawLine(room string, from, to game.Point, opts *game.LineStyleOptions) {
	st := game.DefaultLine()
	if opts != nil {
		st = *opts
	}
	if r, ok := latin1(room); ok {
		drawLine(r, from, to, st)
	}
}

func DrawPoly(room string, points []game.Point, opts *game.PolyStyle) {
	st := game.DefaultPoly()
	if opts != nil {
		st = *opts
	}
	if r, ok := latin1(room); ok {
		drawPoly(r, points, st)
	}
}

// DrawText draws text centred on (x, y).
func DrawText(room, text string, x, y float32, opts *game.TextStyle) {
	DrawTextAt(room, text, game.Point{X: x, Y: y}, opts)
}

func DrawTextAt(room, text string, at game.Point, opts *game.TextStyle) {
	st := game.DefaultText()
	if opts != nil {
		st = *opts
	}
	r, ok := latin1(room)
	if !ok {
		return
	}
	t, ok := latin1(text)
	if !ok {
		return
	}
	font, _ := latin1(st.Font)
	drawText(r, at, t, font, st)
}
