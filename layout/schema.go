package layout

import "fmt"

// Kind identifies a record layout. KindStructure is the generic game object
// whose header every other kind reuses.
type Kind int32

const (
	KindStructure Kind = iota + 1
	KindContainer
	KindController
	KindExtension
	KindRoad
	KindSpawn
)

var kindNames = map[Kind]string{
	KindStructure:  "structure",
	KindContainer:  "container",
	KindController: "controller",
	KindExtension:  "extension",
	KindRoad:       "road",
	KindSpawn:      "spawn",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int32(k))
}

func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// IsBase reports whether k is the generic kind.
func (k Kind) IsBase() bool {
	return k == KindStructure
}

// ParseKind maps a kind name back to its value.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown kind %q", name)
}

// Kinds returns every known kind, base first.
func Kinds() []Kind {
	return []Kind{KindStructure, KindContainer, KindController, KindExtension, KindRoad, KindSpawn}
}

// Field names one record field.
type Field uint32

const (
	FieldID Field = iota + 1
	FieldKindTag
	FieldHits
	FieldHitsMax
	FieldOwner
	FieldMy
	FieldStore
	FieldTicksToDecay
	FieldLevel
	FieldProgress
	FieldProgressTotal
	FieldTicksToDowngrade
	FieldUpgradeBlocked
	FieldEnergy
	FieldEnergyCapacity
	FieldIsSpawning
	FieldSpawningDirections
	FieldSpawningNeedTime
	FieldSpawningRemainingTime
	FieldSpawningID
)

// Type is the wire type of a field.
type Type uint8

const (
	TypeBool Type = iota + 1
	TypeI32
	TypeU32
	TypeID
	TypeName
	TypeStore
)

// Size is the number of bytes a field of this type occupies.
func (t Type) Size() uint32 {
	switch t {
	case TypeBool:
		return 1
	case TypeI32, TypeU32:
		return 4
	case TypeID:
		return 24
	case TypeName:
		return 32
	case TypeStore:
		return 8
	}
	return 0
}

type fieldInfo struct {
	name string
	typ  Type
}

var fields = map[Field]fieldInfo{
	FieldID:                    {"id", TypeID},
	FieldKindTag:               {"kind-tag", TypeI32},
	FieldHits:                  {"hits", TypeI32},
	FieldHitsMax:               {"hits-max", TypeI32},
	FieldOwner:                 {"owner", TypeName},
	FieldMy:                    {"is-mine", TypeBool},
	FieldStore:                 {"store", TypeStore},
	FieldTicksToDecay:          {"ticks-to-decay", TypeI32},
	FieldLevel:                 {"level", TypeI32},
	FieldProgress:              {"progress", TypeI32},
	FieldProgressTotal:         {"progress-total", TypeI32},
	FieldTicksToDowngrade:      {"ticks-to-downgrade", TypeI32},
	FieldUpgradeBlocked:        {"upgrade-blocked", TypeI32},
	FieldEnergy:                {"energy", TypeI32},
	FieldEnergyCapacity:        {"energy-capacity", TypeI32},
	FieldIsSpawning:            {"is-spawning", TypeBool},
	FieldSpawningDirections:    {"spawning.directions", TypeU32},
	FieldSpawningNeedTime:      {"spawning.need-time", TypeI32},
	FieldSpawningRemainingTime: {"spawning.remaining-time", TypeI32},
	FieldSpawningID:            {"spawning.id", TypeID},
}

func (f Field) String() string {
	if info, ok := fields[f]; ok {
		return info.name
	}
	return fmt.Sprintf("field(%d)", uint32(f))
}

// Type returns the wire type, or 0 for unknown fields.
func (f Field) Type() Type {
	return fields[f].typ
}

// Size returns the field width in bytes, or 0 for unknown fields.
func (f Field) Size() uint32 {
	return f.Type().Size()
}

// schema is the closed field set of each kind. Every listed field is required.
var schema = map[Kind][]Field{
	KindStructure:  {FieldID, FieldKindTag, FieldHits, FieldHitsMax, FieldOwner, FieldMy},
	KindContainer:  {FieldStore, FieldTicksToDecay},
	KindController: {FieldLevel, FieldProgress, FieldProgressTotal, FieldTicksToDowngrade, FieldUpgradeBlocked},
	KindExtension:  {FieldEnergy, FieldEnergyCapacity},
	KindRoad:       {FieldTicksToDecay},
	KindSpawn: {
		FieldEnergy, FieldEnergyCapacity, FieldIsSpawning,
		FieldSpawningDirections, FieldSpawningNeedTime, FieldSpawningRemainingTime, FieldSpawningID,
	},
}

// Schema returns the required fields of kind, in declaration order.
func Schema(kind Kind) []Field {
	out := make([]Field, len(schema[kind]))
	copy(out, schema[kind])
	return out
}

func allowed(kind Kind, f Field) bool {
	for _, sf := range schema[kind] {
		if sf == f {
			return true
		}
	}
	return false
}
