package layout

import "testing"

func TestRecord_Extension(t *testing.T) {
	r := newBaseRegistry(t)
	if err := r.Register(KindExtension, 8, []Entry{{FieldEnergy, 0}, {FieldEnergyCapacity, 4}}); err != nil {
		t.Fatalf("register: %v", err)
	}
	l, _ := r.Layout(KindExtension)

	buf := make([]byte, l.Size())
	rec := NewRecord(buf, l)
	if !rec.PutI32(FieldEnergy, 50) || !rec.PutI32(FieldEnergyCapacity, 200) {
		t.Fatal("expected writes to succeed")
	}

	energy, _ := rec.I32(FieldEnergy)
	capacity, _ := rec.I32(FieldEnergyCapacity)
	if energy != 50 || capacity != 200 {
		t.Fatalf("expected (50, 200), got (%d, %d)", energy, capacity)
	}
	if buf[0] != 50 || buf[4] != 200 {
		t.Fatalf("unexpected bytes %v", buf)
	}
}

func TestRecord_HeaderFallback(t *testing.T) {
	r := newBaseRegistry(t)
	if err := r.Register(KindRoad, 76, []Entry{{FieldTicksToDecay, 72}}); err != nil {
		t.Fatalf("register: %v", err)
	}

	buf := make([]byte, r.Stride())
	rec := r.Record(buf, KindRoad)
	if !rec.PutBytes(FieldID, []byte("road1")) {
		t.Fatal("expected id write through the generic layout")
	}
	if !rec.PutI32(FieldKindTag, int32(KindRoad)) || !rec.PutI32(FieldTicksToDecay, 999) {
		t.Fatal("expected i32 writes")
	}
	if !rec.PutBool(FieldMy, true) {
		t.Fatal("expected bool write")
	}

	id, _ := rec.Bytes(FieldID)
	if string(id[:5]) != "road1" || id[5] != 0 {
		t.Errorf("unexpected id bytes %q", id)
	}
	if v, _ := rec.I32(FieldTicksToDecay); v != 999 {
		t.Errorf("expected 999, got %d", v)
	}
	if my, _ := rec.Bool(FieldMy); !my {
		t.Error("expected is-mine")
	}
	if buf[68] != 1 {
		t.Errorf("expected is-mine byte at 68, got %v", buf[68])
	}
}

func TestRecord_TypeMismatch(t *testing.T) {
	r := newBaseRegistry(t)
	rec := r.Record(make([]byte, testStride), KindStructure)

	if rec.PutU32(FieldHits, 1) {
		t.Error("hits is i32, PutU32 must refuse")
	}
	if rec.PutI32(FieldEnergy, 1) {
		t.Error("energy is not registered on the generic layout")
	}
	if rec.Has(FieldStore) {
		t.Error("store is not registered")
	}
	if !rec.Has(FieldOwner) {
		t.Error("owner is registered")
	}
	if rec.PutBytes(FieldHits, []byte{1}) {
		t.Error("PutBytes must refuse non-byte fields")
	}
}

func TestRecord_Store(t *testing.T) {
	r := newBaseRegistry(t)
	if err := r.Register(KindContainer, 72, []Entry{{FieldStore, 40}, {FieldTicksToDecay, 48}}); err != nil {
		t.Fatalf("register: %v", err)
	}
	l, _ := r.Layout(KindContainer)
	rec := NewRecord(make([]byte, l.Size()), l)
	rec.PutStore(FieldStore, 1200, 2000)
	e, c, ok := rec.Store(FieldStore)
	if !ok || e != 1200 || c != 2000 {
		t.Fatalf("expected (1200, 2000), got (%d, %d, %v)", e, c, ok)
	}
}
