package wasm

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Code is an instruction sequence. Methods append one instruction and
// return the receiver so bodies read top to bottom.
type Code struct {
	buf bytes.Buffer
}

func NewCode() *Code {
	return &Code{}
}

// Bytes returns the encoded instructions without the final end.
func (c *Code) Bytes() []byte {
	return c.buf.Bytes()
}

func (c *Code) op(b byte) *Code {
	c.buf.WriteByte(b)
	return c
}

func (c *Code) I32Const(v int32) *Code {
	c.buf.WriteByte(OpI32Const)
	sleb(&c.buf, v)
	return c
}

// U32Const pushes v reinterpreted as i32.
func (c *Code) U32Const(v uint32) *Code {
	return c.I32Const(int32(v))
}

func (c *Code) F32Const(v float32) *Code {
	c.buf.WriteByte(OpF32Const)
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
	c.buf.Write(b[:])
	return c
}

func (c *Code) Call(fn uint32) *Code {
	c.buf.WriteByte(OpCall)
	uleb(&c.buf, fn)
	return c
}

func (c *Code) Drop() *Code {
	return c.op(OpDrop)
}

func (c *Code) Return() *Code {
	return c.op(OpReturn)
}

func (c *Code) Unreachable() *Code {
	return c.op(OpUnreachable)
}

func (c *Code) LocalGet(i uint32) *Code {
	c.buf.WriteByte(OpLocalGet)
	uleb(&c.buf, i)
	return c
}

func (c *Code) LocalSet(i uint32) *Code {
	c.buf.WriteByte(OpLocalSet)
	uleb(&c.buf, i)
	return c
}

func (c *Code) LocalTee(i uint32) *Code {
	c.buf.WriteByte(OpLocalTee)
	uleb(&c.buf, i)
	return c
}

func (c *Code) memop(op byte, align, offset uint32) *Code {
	c.buf.WriteByte(op)
	uleb(&c.buf, align)
	uleb(&c.buf, offset)
	return c
}

// I32Load pops an address and pushes the i32 at address+offset.
func (c *Code) I32Load(offset uint32) *Code {
	return c.memop(OpI32Load, 2, offset)
}

func (c *Code) I32Load8U(offset uint32) *Code {
	return c.memop(OpI32Load8U, 0, offset)
}

// I32Store pops a value and an address and stores at address+offset.
func (c *Code) I32Store(offset uint32) *Code {
	return c.memop(OpI32Store, 2, offset)
}

func (c *Code) I32Store8(offset uint32) *Code {
	return c.memop(OpI32Store8, 0, offset)
}

func (c *Code) I32Add() *Code {
	return c.op(OpI32Add)
}

func (c *Code) I32Sub() *Code {
	return c.op(OpI32Sub)
}

func (c *Code) I32Eqz() *Code {
	return c.op(OpI32Eqz)
}

// Block opens a void block; Br to it jumps past its End.
func (c *Code) Block() *Code {
	c.buf.WriteByte(OpBlock)
	c.buf.WriteByte(blockVoid)
	return c
}

// Loop opens a void loop; Br to it jumps back to its start.
func (c *Code) Loop() *Code {
	c.buf.WriteByte(OpLoop)
	c.buf.WriteByte(blockVoid)
	return c
}

func (c *Code) End() *Code {
	return c.op(OpEnd)
}

func (c *Code) Br(depth uint32) *Code {
	c.buf.WriteByte(OpBr)
	uleb(&c.buf, depth)
	return c
}

func (c *Code) BrIf(depth uint32) *Code {
	c.buf.WriteByte(OpBrIf)
	uleb(&c.buf, depth)
	return c
}
