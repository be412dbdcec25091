package layout

import (
	"encoding/binary"
)

// Record reads and writes the fields of one record image. Each field is
// looked up in the kind layout first and then in the generic layout, so a
// derived record carries the generic header at the generic offsets.
type Record struct {
	Buf     []byte
	layouts []*Layout
}

// NewRecord binds buf to the given layouts, most specific first. Nil layouts
// are skipped.
func NewRecord(buf []byte, layouts ...*Layout) Record {
	rec := Record{Buf: buf}
	for _, l := range layouts {
		if l != nil {
			rec.layouts = append(rec.layouts, l)
		}
	}
	return rec
}

// Record returns a Record over buf for kind, falling back to the generic
// layout for header fields.
func (r *Registry) Record(buf []byte, kind Kind) Record {
	kl, _ := r.Layout(kind)
	if kind.IsBase() {
		return NewRecord(buf, kl)
	}
	base, _ := r.Layout(KindStructure)
	return NewRecord(buf, kl, base)
}

// Has reports whether f is registered in any bound layout.
func (rec Record) Has(f Field) bool {
	_, ok := rec.slot(f, f.Type())
	return ok
}

func (rec Record) slot(f Field, want Type) ([]byte, bool) {
	if f.Type() != want {
		return nil, false
	}
	for _, l := range rec.layouts {
		off, ok := l.Offset(f)
		if !ok {
			continue
		}
		end := uint64(off) + uint64(want.Size())
		if end > uint64(len(rec.Buf)) {
			return nil, false
		}
		return rec.Buf[off:end], true
	}
	return nil, false
}

// PutI32 writes an i32 field. It returns false if f is not registered or
// has another type.
func (rec Record) PutI32(f Field, v int32) bool {
	b, ok := rec.slot(f, TypeI32)
	if ok {
		binary.LittleEndian.PutUint32(b, uint32(v))
	}
	return ok
}

func (rec Record) PutU32(f Field, v uint32) bool {
	b, ok := rec.slot(f, TypeU32)
	if ok {
		binary.LittleEndian.PutUint32(b, v)
	}
	return ok
}

func (rec Record) PutBool(f Field, v bool) bool {
	b, ok := rec.slot(f, TypeBool)
	if ok {
		b[0] = 0
		if v {
			b[0] = 1
		}
	}
	return ok
}

// PutBytes writes an id or name field, zero padding the remainder.
func (rec Record) PutBytes(f Field, v []byte) bool {
	b, ok := rec.slot(f, f.Type())
	if !ok || (f.Type() != TypeID && f.Type() != TypeName) {
		return false
	}
	n := copy(b, v)
	clear(b[n:])
	return true
}

func (rec Record) PutStore(f Field, energy, capacity int32) bool {
	b, ok := rec.slot(f, TypeStore)
	if ok {
		binary.LittleEndian.PutUint32(b, uint32(energy))
		binary.LittleEndian.PutUint32(b[4:], uint32(capacity))
	}
	return ok
}

func (rec Record) I32(f Field) (int32, bool) {
	b, ok := rec.slot(f, TypeI32)
	if !ok {
		return 0, false
	}
	return int32(binary.LittleEndian.Uint32(b)), true
}

func (rec Record) U32(f Field) (uint32, bool) {
	b, ok := rec.slot(f, TypeU32)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint32(b), true
}

func (rec Record) Bool(f Field) (bool, bool) {
	b, ok := rec.slot(f, TypeBool)
	if !ok {
		return false, false
	}
	return b[0] != 0, true
}

// Bytes returns the raw bytes of an id or name field.
func (rec Record) Bytes(f Field) ([]byte, bool) {
	if f.Type() != TypeID && f.Type() != TypeName {
		return nil, false
	}
	return rec.slot(f, f.Type())
}

func (rec Record) Store(f Field) (energy, capacity int32, ok bool) {
	b, ok := rec.slot(f, TypeStore)
	if !ok {
		return 0, 0, false
	}
	return int32(binary.LittleEndian.Uint32(b)), int32(binary.LittleEndian.Uint32(b[4:])), true
}
