package encoding

import "encoding/binary"

// Stream is a forward-only reader over target memory. BlockSize is the
// pointer width of the target and ByteOrder the order its scalars are
// stored in.
type Stream interface {
	BlockSize() int
	ByteOrder() binary.ByteOrder
	Offset() uint64
	Skip(int) error
	Read([]byte) (int, error)
	ReadString() (string, error)
	ReadStream() (Stream, error)
}
