package encoding

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errOutOfRange = errors.New("out of range")

// memStream reads a flat memory image starting at address 0. A nil order
// means little-endian.
type memStream struct {
	mem   []byte
	off   uint64
	bs    int
	order binary.ByteOrder
}

func (ms *memStream) BlockSize() int { return ms.bs }

func (ms *memStream) ByteOrder() binary.ByteOrder {
	if ms.order == nil {
		return binary.LittleEndian
	}
	return ms.order
}
func (ms *memStream) Offset() uint64 { return ms.off }

func (ms *memStream) Skip(n int) error {
	ms.off += uint64(n)
	return nil
}

func (ms *memStream) Read(b []byte) (int, error) {
	if ms.off+uint64(len(b)) > uint64(len(ms.mem)) {
		return 0, errOutOfRange
	}
	n := copy(b, ms.mem[ms.off:])
	ms.off += uint64(n)
	return n, nil
}

func (ms *memStream) ReadString() (string, error) {
	for i := ms.off; i < uint64(len(ms.mem)); i++ {
		if ms.mem[i] == 0 {
			s := string(ms.mem[ms.off:i])
			ms.off = i + 1
			return s, nil
		}
	}
	return "", errOutOfRange
}

func (ms *memStream) ReadStream() (Stream, error) {
	var raw [8]byte
	if _, err := ms.Read(raw[:ms.bs]); err != nil {
		return nil, err
	}
	addr := readUint(ms.ByteOrder(), raw[:ms.bs])
	return &memStream{ms.mem, addr, ms.bs, ms.order}, nil
}

type node32 struct {
	Flag  uint8
	Value uint
	Next  *node32
	Label string
}

func TestDecodeSize(t *testing.T) {
	size, err := DecodeSize(4, new(node32))
	require.NoError(t, err)
	assert.Equal(t, 16, size)

	size, err = DecodeSize(8, new(node32))
	require.NoError(t, err)
	assert.Equal(t, 32, size)

	size, err = DecodeSize(8, new([3]uint16))
	require.NoError(t, err)
	assert.Equal(t, 6, size)

	type padded struct {
		A uint64
		B uint8
	}
	size, err = DecodeSize(8, new(padded))
	require.NoError(t, err)
	assert.Equal(t, 16, size)
}

func TestDecode32(t *testing.T) {
	mem := make([]byte, 0x40)
	le := binary.LittleEndian
	// node at 0x00 -> node at 0x10
	mem[0x00] = 1
	le.PutUint32(mem[0x04:], 0xdeadbeef)
	le.PutUint32(mem[0x08:], 0x10)
	le.PutUint32(mem[0x0c:], 0x30)
	mem[0x10] = 2
	le.PutUint32(mem[0x14:], 7)
	copy(mem[0x30:], "head\x00")

	var n node32
	require.NoError(t, Decode(&memStream{mem: mem, bs: 4}, &n))
	assert.Equal(t, uint8(1), n.Flag)
	assert.Equal(t, uint(0xdeadbeef), n.Value)
	assert.Equal(t, "head", n.Label)
	require.NotNil(t, n.Next)
	assert.Equal(t, uint8(2), n.Next.Flag)
	assert.Equal(t, uint(7), n.Next.Value)
	assert.Nil(t, n.Next.Next)
	assert.Empty(t, n.Next.Label)
}

func TestDecodeWordClearsUpperBytes(t *testing.T) {
	mem := []byte{0x78, 0x56, 0x34, 0x12}
	v := ^uint(0)
	require.NoError(t, Decode(&memStream{mem: mem, bs: 4}, &v))
	assert.Equal(t, uint(0x12345678), v)
}

func TestDecodeArrayOfWords(t *testing.T) {
	mem := []byte{1, 0, 0, 0, 2, 0, 0, 0, 3, 0, 0, 0}
	var arr [3]uintptr
	require.NoError(t, Decode(&memStream{mem: mem, bs: 4}, &arr))
	assert.Equal(t, [3]uintptr{1, 2, 3}, arr)
}

func TestDecodeInvalid(t *testing.T) {
	stream := &memStream{mem: make([]byte, 8), bs: 8}
	var v uint32
	assert.ErrorIs(t, Decode(stream, v), ErrValueInvalid)
	assert.ErrorIs(t, Decode(stream, nil), ErrValueInvalid)
	var p *uint32
	assert.ErrorIs(t, Decode(stream, p), ErrValueInvalid)
	var s []byte
	assert.ErrorIs(t, Decode(stream, &s), ErrTypeUnsupported)
	var c chan int
	assert.ErrorIs(t, Decode(stream, &c), ErrTypeUnsupported)
}

func TestDecodeShortRead(t *testing.T) {
	var v uint64
	assert.ErrorIs(t, Decode(&memStream{mem: make([]byte, 4), bs: 8}, &v), errOutOfRange)
}

type bigRecord struct {
	Magic uint32
	Kind  int16
	Count uint
	Name  string
}

func TestDecodeBigEndian(t *testing.T) {
	be := binary.BigEndian
	mem := make([]byte, 0x20)
	be.PutUint32(mem[0x00:], 0xcafebabe)
	be.PutUint16(mem[0x04:], 0xfffe)
	be.PutUint32(mem[0x08:], 0x01020304)
	be.PutUint32(mem[0x0c:], 0x18)
	copy(mem[0x18:], "eth0\x00")

	var r bigRecord
	require.NoError(t, Decode(&memStream{mem: mem, bs: 4, order: be}, &r))
	assert.Equal(t, uint32(0xcafebabe), r.Magic)
	assert.Equal(t, int16(-2), r.Kind)
	assert.Equal(t, uint(0x01020304), r.Count)
	assert.Equal(t, "eth0", r.Name)
}
