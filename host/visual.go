package host

import (
	"sort"

	"github.com/wippyai/screeps-wasm/game"
)

// Shape names a visual primitive.
type Shape string

const (
	ShapeCircle Shape = "circle"
	ShapeLine   Shape = "line"
	ShapePoly   Shape = "poly"
	ShapeText   Shape = "text"
)

// Visual is one recorded draw call. Exactly one style pointer is set,
// matching Shape.
type Visual struct {
	Circle *game.CircleStyle      `json:"circle,omitempty"`
	Line   *game.LineStyleOptions `json:"line,omitempty"`
	Poly   *game.PolyStyle        `json:"poly,omitempty"`
	Text   *game.TextStyle        `json:"text_style,omitempty"`
	Shape  Shape                  `json:"shape"`
	Label  string                 `json:"label,omitempty"`
	Points []game.Point           `json:"points"`
}

// Visuals collects draw calls of one tick keyed by room.
type Visuals struct {
	rooms map[string][]Visual
}

func NewVisuals() *Visuals {
	return &Visuals{rooms: make(map[string][]Visual)}
}

func (v *Visuals) Add(room string, vis Visual) {
	v.rooms[room] = append(v.rooms[room], vis)
}

// Room returns the visuals drawn in room, in call order.
func (v *Visuals) Room(room string) []Visual {
	return v.rooms[room]
}

// Rooms returns the rooms with at least one visual, sorted.
func (v *Visuals) Rooms() []string {
	out := make([]string, 0, len(v.rooms))
	for r := range v.rooms {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

func (v *Visuals) Len() int {
	n := 0
	for _, vs := range v.rooms {
		n += len(vs)
	}
	return n
}

// Snapshot copies the current visuals out.
func (v *Visuals) Snapshot() map[string][]Visual {
	out := make(map[string][]Visual, len(v.rooms))
	for r, vs := range v.rooms {
		out[r] = append([]Visual(nil), vs...)
	}
	return out
}

func (v *Visuals) Reset() {
	v.rooms = make(map[string][]Visual)
}
