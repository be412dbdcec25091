package wasm

import (
	"bytes"
	"encoding/binary"
)

// uleb writes v as unsigned LEB128, which is the same encoding as a Go
// uvarint.
func uleb(w *bytes.Buffer, v uint32) {
	var tmp [binary.MaxVarintLen32]byte
	w.Write(binary.AppendUvarint(tmp[:0], uint64(v)))
}

// sleb writes v as signed LEB128. Go varints zigzag encode, so this one is
// done by hand.
func sleb(w *bytes.Buffer, v int32) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		done := (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0)
		if !done {
			b |= 0x80
		}
		w.WriteByte(b)
		if done {
			return
		}
	}
}
