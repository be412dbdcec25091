package layout

import (
	"encoding/binary"
	"sort"
	"sync"

	"github.com/wippyai/screeps-wasm/errors"
)

// Entry is one (field, offset) pair of a registration. On the wire it is two
// little-endian uint32 values.
type Entry struct {
	Field  Field
	Offset uint32
}

// EntrySize is the wire size of an Entry.
const EntrySize = 8

// DecodeEntries parses packed wire entries.
func DecodeEntries(b []byte) ([]Entry, error) {
	if len(b)%EntrySize != 0 {
		return nil, errors.InvalidData(errors.PhaseRegister, "", "entry buffer is not a multiple of 8 bytes")
	}
	out := make([]Entry, len(b)/EntrySize)
	for i := range out {
		out[i].Field = Field(binary.LittleEndian.Uint32(b[i*EntrySize:]))
		out[i].Offset = binary.LittleEndian.Uint32(b[i*EntrySize+4:])
	}
	return out, nil
}

// EncodeEntries packs entries into their wire form.
func EncodeEntries(entries []Entry) []byte {
	b := make([]byte, len(entries)*EntrySize)
	for i, e := range entries {
		binary.LittleEndian.PutUint32(b[i*EntrySize:], uint32(e.Field))
		binary.LittleEndian.PutUint32(b[i*EntrySize+4:], e.Offset)
	}
	return b
}

// Layout is the immutable descriptor of one kind.
type Layout struct {
	offsets map[Field]uint32
	kind    Kind
	size    uint32
}

func (l *Layout) Kind() Kind {
	return l.kind
}

// Size is the record size declared at registration.
func (l *Layout) Size() uint32 {
	return l.size
}

// Offset returns the byte offset of f within the record.
func (l *Layout) Offset(f Field) (uint32, bool) {
	off, ok := l.offsets[f]
	return off, ok
}

// Fields returns the registered fields ordered by offset.
func (l *Layout) Fields() []Field {
	out := make([]Field, 0, len(l.offsets))
	for f := range l.offsets {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return l.offsets[out[i]] < l.offsets[out[j]] })
	return out
}

// Registry holds the layout of every kind the guest announced.
// It is write-once: after Freeze, and after any failed registration, it
// accepts nothing further.
type Registry struct {
	layouts map[Kind]*Layout
	err     error
	mu      sync.RWMutex
	frozen  bool
}

func NewRegistry() *Registry {
	return &Registry{
		layouts: make(map[Kind]*Layout),
	}
}

// Register validates and stores the layout of kind.
func (r *Registry) Register(kind Kind, size uint32, entries []Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return r.fail(errors.New(errors.PhaseRegister, errors.KindFrozen).
			Object(kind.String()).
			Detail("registration after the first tick").
			Build())
	}
	if r.err != nil {
		return r.err
	}

	l, err := r.validate(kind, size, entries)
	if err != nil {
		return r.fail(err)
	}
	r.layouts[kind] = l
	return nil
}

func (r *Registry) validate(kind Kind, size uint32, entries []Entry) (*Layout, error) {
	name := kind.String()
	if !kind.Valid() {
		return nil, errors.New(errors.PhaseRegister, errors.KindInvalidData).
			Value(int32(kind)).
			Detail("unknown kind %d", int32(kind)).
			Build()
	}
	if _, dup := r.layouts[kind]; dup {
		return nil, errors.New(errors.PhaseRegister, errors.KindDuplicate).
			Object(name).
			Detail("kind registered twice").
			Build()
	}
	if size == 0 {
		return nil, errors.InvalidData(errors.PhaseRegister, name, "record size is zero")
	}

	base := r.layouts[KindStructure]
	if !kind.IsBase() {
		if base == nil {
			return nil, errors.New(errors.PhaseRegister, errors.KindOrder).
				Object(name).
				Detail("registered before the generic layout").
				Build()
		}
		if size > base.size {
			return nil, errors.New(errors.PhaseRegister, errors.KindOutOfBounds).
				Object(name).
				Value(size).
				Detail("record size %d exceeds generic record size %d", size, base.size).
				Build()
		}
	}

	l := &Layout{
		kind:    kind,
		size:    size,
		offsets: make(map[Field]uint32, len(entries)),
	}
	for _, e := range entries {
		if !allowed(kind, e.Field) {
			return nil, errors.FieldUnknown(errors.PhaseRegister, name, e.Field)
		}
		if _, dup := l.offsets[e.Field]; dup {
			return nil, errors.New(errors.PhaseRegister, errors.KindDuplicate).
				Object(name).
				Path(e.Field.String()).
				Detail("field registered twice").
				Build()
		}
		if uint64(e.Offset)+uint64(e.Field.Size()) > uint64(size) {
			return nil, errors.OutOfBounds(errors.PhaseRegister, name, []string{e.Field.String()}, e.Offset, size)
		}
		l.offsets[e.Field] = e.Offset
	}
	for _, f := range schema[kind] {
		if _, ok := l.offsets[f]; !ok {
			return nil, errors.FieldMissing(errors.PhaseRegister, name, f.String())
		}
	}

	if err := checkOverlap(name, fieldSpans(l)); err != nil {
		return nil, err
	}
	return l, nil
}

type span struct {
	field      Field
	start, end uint32
}

func fieldSpans(l *Layout) []span {
	out := make([]span, 0, len(l.offsets))
	for f, off := range l.offsets {
		out = append(out, span{field: f, start: off, end: off + f.Size()})
	}
	return out
}

func checkOverlap(object string, spans []span) error {
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	for i := 1; i < len(spans); i++ {
		if spans[i].start < spans[i-1].end {
			return errors.New(errors.PhaseRegister, errors.KindInvalidData).
				Object(object).
				Path(spans[i].field.String()).
				Detail("overlaps %s", spans[i-1].field).
				Build()
		}
	}
	return nil
}

// fail records the first error; later calls keep reporting it.
// Must be called with r.mu held.
func (r *Registry) fail(err error) error {
	if r.err == nil {
		r.err = err
	}
	return err
}

// Freeze ends the registration phase. It fails if the generic layout was
// never registered or a previous registration failed.
func (r *Registry) Freeze() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return r.err
	}
	if r.frozen {
		return nil
	}
	if r.layouts[KindStructure] == nil {
		return r.fail(errors.FieldMissing(errors.PhaseRegister, KindStructure.String(), "generic layout"))
	}
	r.frozen = true
	return nil
}

// Err returns the first registration error, if any.
func (r *Registry) Err() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.err
}

func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// Layout returns the descriptor of kind.
func (r *Registry) Layout(kind Kind) (*Layout, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.layouts[kind]
	return l, ok
}

// Stride is the generic record size: the distance between consecutive
// records in an array. Zero until the generic layout is registered.
func (r *Registry) Stride() uint32 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if base := r.layouts[KindStructure]; base != nil {
		return base.size
	}
	return 0
}

// Kinds returns the registered kinds, base first.
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Kind
	for _, k := range Kinds() {
		if _, ok := r.layouts[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

// Fail marks the registry as failed with err unless it already failed.
// It is used for registration problems found before Register is reached,
// such as an unreadable entry buffer.
func (r *Registry) Fail(err error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fail(err)
}
