package screeps

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"github.com/wippyai/screeps-wasm/game"
)

// ArenaSize is the byte size of the arena handed to the host.
const ArenaSize = 256 << 10

const arenaHeaderSize = 8

var (
	arena       []byte
	initialized bool
)

// Init registers every record layout and the arena. The screeps_init
// export calls it; native tests call it after SetHost. It runs once.
func Init() error {
	if initialized {
		return nil
	}
	for _, r := range layouts() {
		if st := registerLayout(r.kind, uint32(r.size), r.entries); st != game.OK {
			return fmt.Errorf("register %s layout: %w", r.kind, st.Err())
		}
	}
	buf := make([]byte, ArenaSize)
	if st := setArena(buf); st != game.OK {
		return fmt.Errorf("set arena: %w", st.Err())
	}
	arena = buf
	initialized = true
	return nil
}

// Tick returns the game tick of the current arena.
func Tick() uint32 {
	if len(arena) < arenaHeaderSize {
		return 0
	}
	return binary.LittleEndian.Uint32(arena[0:])
}

// Count returns the number of records in the current arena.
func Count() int {
	if len(arena) < arenaHeaderSize {
		return 0
	}
	n := int(binary.LittleEndian.Uint32(arena[4:]))
	return min(n, (len(arena)-arenaHeaderSize)/int(RecordSize))
}

// At returns record i of the current arena. The pointer is valid until the
// tick ends.
func At(i int) *Object {
	if i < 0 || i >= Count() {
		return nil
	}
	return (*Object)(unsafe.Pointer(&arena[arenaHeaderSize+i*int(RecordSize)]))
}

// Objects returns every record of the current tick.
func Objects() []*Object {
	n := Count()
	out := make([]*Object, n)
	for i := range out {
		out[i] = At(i)
	}
	return out
}

// Find returns the object with the given id, or nil.
func Find(id string) *Object {
	want, err := game.ParseID(id)
	if err != nil {
		return nil
	}
	for i := range Count() {
		if o := At(i); o.ID == want {
			return o
		}
	}
	return nil
}

// Spawns returns the spawns of the current tick.
func Spawns() []*Spawn {
	var out []*Spawn
	for i := range Count() {
		if s, ok := At(i).AsSpawn(); ok {
			out = append(out, s)
		}
	}
	return out
}
