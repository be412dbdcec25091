package engine

import (
	"fmt"

	"github.com/tetratelabs/wazero/api"

	screepswasm "github.com/wippyai/screeps-wasm"
)

// Memory wraps wazero memory to implement screepswasm.Memory.
type Memory struct {
	mem api.Memory
}

// NewMemory adapts mem. A nil mem yields a Memory where every access fails.
func NewMemory(mem api.Memory) *Memory {
	return &Memory{mem: mem}
}

// MemoryOf returns the memory of the calling module, as seen from inside a
// host function.
func MemoryOf(mod api.Module) *Memory {
	if mod == nil {
		return &Memory{}
	}
	return &Memory{mem: mod.Memory()}
}

func (m *Memory) Read(offset uint32, length uint32) ([]byte, error) {
	if m.mem == nil {
		return nil, fmt.Errorf("module has no memory")
	}
	data, ok := m.mem.Read(offset, length)
	if !ok {
		return nil, fmt.Errorf("read out of bounds: offset=%d, length=%d", offset, length)
	}
	return data, nil
}

func (m *Memory) Write(offset uint32, data []byte) error {
	if m.mem == nil {
		return fmt.Errorf("module has no memory")
	}
	if !m.mem.Write(offset, data) {
		return fmt.Errorf("write out of bounds: offset=%d, length=%d", offset, len(data))
	}
	return nil
}

func (m *Memory) ReadU32(offset uint32) (uint32, error) {
	if m.mem == nil {
		return 0, fmt.Errorf("module has no memory")
	}
	val, ok := m.mem.ReadUint32Le(offset)
	if !ok {
		return 0, fmt.Errorf("read out of bounds: offset=%d", offset)
	}
	return val, nil
}

func (m *Memory) WriteU32(offset uint32, value uint32) error {
	if m.mem == nil {
		return fmt.Errorf("module has no memory")
	}
	if !m.mem.WriteUint32Le(offset, value) {
		return fmt.Errorf("write out of bounds: offset=%d", offset)
	}
	return nil
}

func (m *Memory) ReadF32(offset uint32) (float32, error) {
	if m.mem == nil {
		return 0, fmt.Errorf("module has no memory")
	}
	val, ok := m.mem.ReadFloat32Le(offset)
	if !ok {
		return 0, fmt.Errorf("read out of bounds: offset=%d", offset)
	}
	return val, nil
}

func (m *Memory) Size() uint32 {
	if m.mem == nil {
		return 0
	}
	return m.mem.Size()
}

var _ screepswasm.Memory = (*Memory)(nil)
var _ screepswasm.MemorySizer = (*Memory)(nil)
