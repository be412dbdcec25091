package game

import "fmt"

// BodyPart is the wire code of a creep body part.
type BodyPart int32

const (
	Move BodyPart = iota + 1
	Work
	Carry
	Attack
	RangedAttack
	Heal
	Claim
	Tough
)

// MaxBodyParts is the largest body a spawn accepts.
const MaxBodyParts = 50

// SpawnTimePerPart is how many ticks each body part adds to spawning.
const SpawnTimePerPart = 3

var bodyPartNames = [...]string{"", "move", "work", "carry", "attack", "ranged_attack", "heal", "claim", "tough"}

var bodyPartCosts = [...]int32{0, 50, 100, 50, 80, 150, 250, 600, 10}

func (p BodyPart) Valid() bool {
	return p >= Move && p <= Tough
}

func (p BodyPart) String() string {
	if p.Valid() {
		return bodyPartNames[p]
	}
	return fmt.Sprintf("bodypart(%d)", int32(p))
}

// Cost is the energy needed to spawn one part of this type.
func (p BodyPart) Cost() int32 {
	if !p.Valid() {
		return 0
	}
	return bodyPartCosts[p]
}

// ParseBodyPart maps a part name back to its code.
func ParseBodyPart(name string) (BodyPart, error) {
	for i := Move; i <= Tough; i++ {
		if bodyPartNames[i] == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown body part %q", name)
}

// BodyCost sums the energy cost of parts.
func BodyCost(parts []BodyPart) int32 {
	var total int32
	for _, p := range parts {
		total += p.Cost()
	}
	return total
}
