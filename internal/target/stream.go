package target

import (
	"encoding/binary"

	"github.com/wnxd/crashdbg/encoding"
	"github.com/wnxd/crashdbg/target"
)

type pointerStream struct {
	ptr   target.Pointer
	size  int
	order binary.ByteOrder
}

func newPointerStream(ptr target.Pointer, size int, order binary.ByteOrder) encoding.Stream {
	return &pointerStream{ptr, size, order}
}

func (ps *pointerStream) BlockSize() int {
	return ps.size
}

func (ps *pointerStream) ByteOrder() binary.ByteOrder {
	return ps.order
}

func (ps *pointerStream) Offset() uint64 {
	return ps.ptr.Address()
}

func (ps *pointerStream) Skip(n int) error {
	ps.ptr = ps.ptr.Add(uint64(n))
	return nil
}

func (ps *pointerStream) Read(b []byte) (int, error) {
	n, err := ps.ptr.ReadAt(b, 0)
	if err == nil {
		ps.Skip(n)
	}
	return n, err
}

func (ps *pointerStream) ReadString() (string, error) {
	str, err := ps.ptr.MemReadString()
	if err == nil {
		ps.Skip(len(str) + 1)
	}
	return str, err
}

func (ps *pointerStream) ReadStream() (encoding.Stream, error) {
	ptr, err := ps.ptr.MemReadPointer()
	if err != nil {
		return nil, err
	}
	ps.Skip(ps.size)
	return newPointerStream(ptr, ps.size, ps.order), nil
}
