package screepswasm

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Bytes is a Memory backed by a plain byte slice. It stands in for guest
// linear memory when no wasm instance is involved.
type Bytes []byte

// NewBytes allocates a zeroed memory of size bytes.
func NewBytes(size uint32) Bytes {
	return make(Bytes, size)
}

func (b Bytes) Read(offset uint32, length uint32) ([]byte, error) {
	end := uint64(offset) + uint64(length)
	if end > uint64(len(b)) {
		return nil, fmt.Errorf("read out of bounds: offset=%d, length=%d", offset, length)
	}
	return b[offset:end], nil
}

func (b Bytes) Write(offset uint32, data []byte) error {
	end := uint64(offset) + uint64(len(data))
	if end > uint64(len(b)) {
		return fmt.Errorf("write out of bounds: offset=%d, length=%d", offset, len(data))
	}
	copy(b[offset:end], data)
	return nil
}

func (b Bytes) ReadU32(offset uint32) (uint32, error) {
	data, err := b.Read(offset, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(data), nil
}

func (b Bytes) WriteU32(offset uint32, value uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], value)
	return b.Write(offset, buf[:])
}

func (b Bytes) ReadF32(offset uint32) (float32, error) {
	v, err := b.ReadU32(offset)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// WriteF32 stores a little-endian float32.
func (b Bytes) WriteF32(offset uint32, value float32) error {
	return b.WriteU32(offset, math.Float32bits(value))
}

func (b Bytes) Size() uint32 {
	return uint32(len(b))
}

var _ Memory = Bytes(nil)
var _ MemorySizer = Bytes(nil)
