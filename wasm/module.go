package wasm

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// FuncType is a function signature.
type FuncType struct {
	Params  []ValType
	Results []ValType
}

func (ft FuncType) equal(o FuncType) bool {
	if len(ft.Params) != len(o.Params) || len(ft.Results) != len(o.Results) {
		return false
	}
	for i := range ft.Params {
		if ft.Params[i] != o.Params[i] {
			return false
		}
	}
	for i := range ft.Results {
		if ft.Results[i] != o.Results[i] {
			return false
		}
	}
	return true
}

type importFunc struct {
	module, name string
	typeIdx      uint32
}

type function struct {
	locals  []ValType
	body    []byte
	typeIdx uint32
}

type export struct {
	name  string
	kind  byte
	index uint32
}

type segment struct {
	data   []byte
	offset uint32
}

type memory struct {
	min, max uint32
	hasMax   bool
}

// Module accumulates the sections of a core module.
type Module struct {
	err     error
	memory  *memory
	types   []FuncType
	imports []importFunc
	funcs   []function
	exports []export
	data    []segment
}

func NewModule() *Module {
	return &Module{}
}

func (m *Module) typeIndex(ft FuncType) uint32 {
	for i, t := range m.types {
		if t.equal(ft) {
			return uint32(i)
		}
	}
	m.types = append(m.types, ft)
	return uint32(len(m.types) - 1)
}

// ImportFunc declares a function import and returns its function index.
func (m *Module) ImportFunc(module, name string, params, results []ValType) uint32 {
	if len(m.funcs) > 0 && m.err == nil {
		m.err = fmt.Errorf("import %s.%s declared after local functions", module, name)
	}
	m.imports = append(m.imports, importFunc{
		module:  module,
		name:    name,
		typeIdx: m.typeIndex(FuncType{Params: params, Results: results}),
	})
	return uint32(len(m.imports) - 1)
}

// Func adds a local function and returns its function index. Parameters
// are locals 0..len(params)-1; extra locals follow them.
func (m *Module) Func(params, results, locals []ValType, body *Code) uint32 {
	var code []byte
	if body != nil {
		code = body.Bytes()
	}
	m.funcs = append(m.funcs, function{
		typeIdx: m.typeIndex(FuncType{Params: params, Results: results}),
		locals:  locals,
		body:    code,
	})
	return uint32(len(m.imports) + len(m.funcs) - 1)
}

// ExportFunc exports the function at idx under name.
func (m *Module) ExportFunc(name string, idx uint32) {
	m.exports = append(m.exports, export{name: name, kind: KindFunc, index: idx})
}

// Memory declares memory 0 with min pages. max 0 leaves it unbounded.
func (m *Module) Memory(min, max uint32) {
	m.memory = &memory{min: min, max: max, hasMax: max > 0}
}

// ExportMemory exports memory 0 under name.
func (m *Module) ExportMemory(name string) {
	m.exports = append(m.exports, export{name: name, kind: KindMemory})
}

// Data adds an active segment written at offset when the module starts.
func (m *Module) Data(offset uint32, b []byte) {
	m.data = append(m.data, segment{offset: offset, data: append([]byte(nil), b...)})
}

// Encode produces the binary module.
func (m *Module) Encode() ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	if len(m.data) > 0 && m.memory == nil {
		return nil, fmt.Errorf("data segments need a memory")
	}

	var out bytes.Buffer
	var hdr [8]byte
	binary.LittleEndian.PutUint32(hdr[:4], Magic)
	binary.LittleEndian.PutUint32(hdr[4:], Version)
	out.Write(hdr[:])

	if len(m.types) > 0 {
		var sec bytes.Buffer
		uleb(&sec, uint32(len(m.types)))
		for _, ft := range m.types {
			sec.WriteByte(funcTypeByte)
			writeValTypes(&sec, ft.Params)
			writeValTypes(&sec, ft.Results)
		}
		writeSection(&out, SectionType, sec.Bytes())
	}

	if len(m.imports) > 0 {
		var sec bytes.Buffer
		uleb(&sec, uint32(len(m.imports)))
		for _, imp := range m.imports {
			writeName(&sec, imp.module)
			writeName(&sec, imp.name)
			sec.WriteByte(KindFunc)
			uleb(&sec, imp.typeIdx)
		}
		writeSection(&out, SectionImport, sec.Bytes())
	}

	if len(m.funcs) > 0 {
		var sec bytes.Buffer
		uleb(&sec, uint32(len(m.funcs)))
		for _, fn := range m.funcs {
			uleb(&sec, fn.typeIdx)
		}
		writeSection(&out, SectionFunction, sec.Bytes())
	}

	if m.memory != nil {
		var sec bytes.Buffer
		uleb(&sec, 1)
		if m.memory.hasMax {
			sec.WriteByte(0x01)
			uleb(&sec, m.memory.min)
			uleb(&sec, m.memory.max)
		} else {
			sec.WriteByte(0x00)
			uleb(&sec, m.memory.min)
		}
		writeSection(&out, SectionMemory, sec.Bytes())
	}

	if len(m.exports) > 0 {
		var sec bytes.Buffer
		uleb(&sec, uint32(len(m.exports)))
		for _, e := range m.exports {
			writeName(&sec, e.name)
			sec.WriteByte(e.kind)
			uleb(&sec, e.index)
		}
		writeSection(&out, SectionExport, sec.Bytes())
	}

	if len(m.funcs) > 0 {
		var sec bytes.Buffer
		uleb(&sec, uint32(len(m.funcs)))
		for _, fn := range m.funcs {
			body := encodeBody(fn)
			uleb(&sec, uint32(len(body)))
			sec.Write(body)
		}
		writeSection(&out, SectionCode, sec.Bytes())
	}

	if len(m.data) > 0 {
		var sec bytes.Buffer
		uleb(&sec, uint32(len(m.data)))
		for _, seg := range m.data {
			sec.WriteByte(0x00) // active, memory 0
			sec.WriteByte(OpI32Const)
			sleb(&sec, int32(seg.offset))
			sec.WriteByte(OpEnd)
			uleb(&sec, uint32(len(seg.data)))
			sec.Write(seg.data)
		}
		writeSection(&out, SectionData, sec.Bytes())
	}

	return out.Bytes(), nil
}

// MustEncode is Encode for fixtures known to be well formed.
func (m *Module) MustEncode() []byte {
	b, err := m.Encode()
	if err != nil {
		panic(err)
	}
	return b
}

// encodeBody groups consecutive locals of the same type and terminates the
// expression.
func encodeBody(fn function) []byte {
	var b bytes.Buffer

	type group struct {
		typ   ValType
		count uint32
	}
	var groups []group
	for _, l := range fn.locals {
		if n := len(groups); n > 0 && groups[n-1].typ == l {
			groups[n-1].count++
			continue
		}
		groups = append(groups, group{typ: l, count: 1})
	}
	uleb(&b, uint32(len(groups)))
	for _, g := range groups {
		uleb(&b, g.count)
		b.WriteByte(byte(g.typ))
	}

	b.Write(fn.body)
	b.WriteByte(OpEnd)
	return b.Bytes()
}

func writeSection(w *bytes.Buffer, id byte, content []byte) {
	w.WriteByte(id)
	uleb(w, uint32(len(content)))
	w.Write(content)
}

func writeValTypes(w *bytes.Buffer, types []ValType) {
	uleb(w, uint32(len(types)))
	for _, t := range types {
		w.WriteByte(byte(t))
	}
}

func writeName(w *bytes.Buffer, s string) {
	uleb(w, uint32(len(s)))
	w.WriteString(s)
}
