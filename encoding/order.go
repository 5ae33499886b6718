package encoding

import (
	"encoding/binary"
	"slices"
)

var hostBigEndian = binary.NativeEndian.Uint16([]byte{0, 1}) == 1

func isBigEndian(order binary.ByteOrder) bool {
	if order == nil {
		return hostBigEndian
	}
	return order.Uint16([]byte{0, 1}) == 1
}

// toHost rewrites the scalar in b from order into host byte order.
func toHost(order binary.ByteOrder, b []byte) {
	if len(b) > 1 && isBigEndian(order) != hostBigEndian {
		slices.Reverse(b)
	}
}

// readUint zero-extends the unsigned integer stored in b.
func readUint(order binary.ByteOrder, b []byte) uint64 {
	var v uint64
	if isBigEndian(order) {
		for _, c := range b {
			v = v<<8 | uint64(c)
		}
	} else {
		for i := len(b) - 1; i >= 0; i-- {
			v = v<<8 | uint64(b[i])
		}
	}
	return v
}
