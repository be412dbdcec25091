package game

import (
	"fmt"
	"strconv"
)

// Direction is one of the eight neighbour directions, 1 (top) clockwise to
// 8 (top-left).
type Direction uint8

const (
	Top Direction = iota + 1
	TopRight
	Right
	BottomRight
	Bottom
	BottomLeft
	Left
	TopLeft
)

// MaxDirections is how many 4-bit codes fit in a Directions word.
const MaxDirections = 8

func (d Direction) Valid() bool {
	return d >= Top && d <= TopLeft
}

// MarshalJSON writes the numeric code, so a []Direction encodes as a JSON
// array of numbers instead of base64.
func (d Direction) MarshalJSON() ([]byte, error) {
	return strconv.AppendUint(nil, uint64(d), 10), nil
}

var directionNames = [...]string{"", "top", "top-right", "right", "bottom-right", "bottom", "bottom-left", "left", "top-left"}

func (d Direction) String() string {
	if d.Valid() {
		return directionNames[d]
	}
	return fmt.Sprintf("direction(%d)", uint8(d))
}

// Directions is a packed direction list: each 4-bit group, lowest first, is
// one Direction. The zero value is the empty list, meaning "not specified".
type Directions uint32

// PackDirections encodes dirs, first element in the low nibble.
func PackDirections(dirs ...Direction) (Directions, error) {
	if len(dirs) > MaxDirections {
		return 0, fmt.Errorf("too many directions: %d (max %d)", len(dirs), MaxDirections)
	}
	var packed uint32
	for i := len(dirs) - 1; i >= 0; i-- {
		if !dirs[i].Valid() {
			return 0, fmt.Errorf("invalid direction %d at %d", dirs[i], i)
		}
		packed = packed<<4 | uint32(dirs[i])
	}
	return Directions(packed), nil
}

// MustPackDirections is PackDirections for literal lists.
func MustPackDirections(dirs ...Direction) Directions {
	d, err := PackDirections(dirs...)
	if err != nil {
		panic(err)
	}
	return d
}

// Unpack decodes the list by masking the low nibble and shifting until the
// word is zero. An embedded zero nibble is returned as-is; Validate rejects it.
func (d Directions) Unpack() []Direction {
	if d == 0 {
		return nil
	}
	out := make([]Direction, 0, MaxDirections)
	for w := uint32(d); w != 0; w >>= 4 {
		out = append(out, Direction(w&0x0f))
	}
	return out
}

// Len returns the number of encoded directions.
func (d Directions) Len() int {
	n := 0
	for w := uint32(d); w != 0; w >>= 4 {
		n++
	}
	return n
}

// Validate reports whether every decoded nibble is a valid direction.
func (d Directions) Validate() error {
	for i, dir := range d.Unpack() {
		if !dir.Valid() {
			return fmt.Errorf("invalid direction %d at %d", dir, i)
		}
	}
	return nil
}
