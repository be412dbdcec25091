package host

import (
	"encoding/binary"

	screepswasm "github.com/wippyai/screeps-wasm"
	"github.com/wippyai/screeps-wasm/errors"
	"github.com/wippyai/screeps-wasm/layout"
)

// ArenaHeaderSize is the size of the {tick u32, count u32} header that
// precedes the record array.
const ArenaHeaderSize = 8

// Arena is the guest-owned region the host writes tick records into.
type Arena struct {
	Ptr uint32 `json:"ptr"`
	Cap uint32 `json:"cap"`
}

func (a Arena) Set() bool {
	return a.Cap > 0
}

// Slots returns how many records of stride bytes fit after the header.
func (a Arena) Slots(stride uint32) uint32 {
	if stride == 0 || a.Cap < ArenaHeaderSize {
		return 0
	}
	return (a.Cap - ArenaHeaderSize) / stride
}

// ArenaStats describes one serialization pass.
type ArenaStats struct {
	Written    int `json:"written"`
	Skipped    int `json:"skipped"`
	Truncated  int `json:"truncated"`
	BytesTotal int `json:"bytes"`
}

// WriteArena serializes objs into the arena using the registered layouts.
// Objects whose kind the guest never registered are skipped; objects that
// do not fit are truncated from the end.
func WriteArena(mem screepswasm.Memory, reg *layout.Registry, arena Arena, tick uint32, objs []*Object) (ArenaStats, error) {
	var stats ArenaStats
	if !arena.Set() {
		return stats, errors.NotInitialized(errors.PhaseTick, "arena")
	}
	stride := reg.Stride()
	if stride == 0 {
		return stats, errors.NotInitialized(errors.PhaseTick, "generic layout")
	}

	slots := arena.Slots(stride)
	buf := make([]byte, ArenaHeaderSize, ArenaHeaderSize+int(stride)*min(len(objs), int(slots)))
	for _, o := range objs {
		if _, ok := reg.Layout(o.Kind); !ok {
			stats.Skipped++
			continue
		}
		if uint32(stats.Written) == slots {
			stats.Truncated++
			continue
		}
		rec := make([]byte, stride)
		fillRecord(reg.Record(rec, o.Kind), o)
		buf = append(buf, rec...)
		stats.Written++
	}

	binary.LittleEndian.PutUint32(buf[0:], tick)
	binary.LittleEndian.PutUint32(buf[4:], uint32(stats.Written))
	if err := mem.Write(arena.Ptr, buf); err != nil {
		return stats, errors.New(errors.PhaseTick, errors.KindOutOfBounds).
			Object("arena").
			Detail("arena %#x+%d outside guest memory", arena.Ptr, len(buf)).
			Cause(err).
			Build()
	}
	stats.BytesTotal = len(buf)
	return stats, nil
}

// fillRecord writes the generic header and then the kind fields, so kind
// fields win where a guest layout overlaps the two.
func fillRecord(rec layout.Record, o *Object) {
	rec.PutBytes(layout.FieldID, o.ID[:])
	rec.PutI32(layout.FieldKindTag, int32(o.Kind))
	rec.PutI32(layout.FieldHits, o.Hits)
	rec.PutI32(layout.FieldHitsMax, o.HitsMax)
	rec.PutBytes(layout.FieldOwner, o.Owner[:])
	rec.PutBool(layout.FieldMy, o.My)

	switch o.Kind {
	case layout.KindContainer:
		rec.PutStore(layout.FieldStore, o.Store.Energy, o.Store.Capacity)
		rec.PutI32(layout.FieldTicksToDecay, o.TicksToDecay)
	case layout.KindController:
		rec.PutI32(layout.FieldLevel, o.Level)
		rec.PutI32(layout.FieldProgress, o.Progress)
		rec.PutI32(layout.FieldProgressTotal, o.ProgressTotal)
		rec.PutI32(layout.FieldTicksToDowngrade, o.TicksToDowngrade)
		rec.PutI32(layout.FieldUpgradeBlocked, o.UpgradeBlocked)
	case layout.KindExtension:
		rec.PutI32(layout.FieldEnergy, o.Energy)
		rec.PutI32(layout.FieldEnergyCapacity, o.EnergyCapacity)
	case layout.KindRoad:
		rec.PutI32(layout.FieldTicksToDecay, o.TicksToDecay)
	case layout.KindSpawn:
		rec.PutI32(layout.FieldEnergy, o.Energy)
		rec.PutI32(layout.FieldEnergyCapacity, o.EnergyCapacity)
		sp := o.Spawning
		rec.PutBool(layout.FieldIsSpawning, sp != nil)
		if sp != nil {
			rec.PutU32(layout.FieldSpawningDirections, uint32(packDirections(sp.Directions)))
			rec.PutI32(layout.FieldSpawningNeedTime, sp.NeedTime)
			rec.PutI32(layout.FieldSpawningRemainingTime, sp.RemainingTime)
			rec.PutBytes(layout.FieldSpawningID, sp.ID[:])
		}
	}
}
