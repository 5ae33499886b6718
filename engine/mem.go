package engine

import "encoding/binary"

type ByteOrder int

const (
	BO_LITTLE_ENDIAN ByteOrder = iota
	BO_BIG_ENDIAN
)

func (bo ByteOrder) Order() binary.ByteOrder {
	if bo == BO_BIG_ENDIAN {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func (bo ByteOrder) String() string {
	if bo == BO_BIG_ENDIAN {
		return "big"
	}
	return "little"
}
