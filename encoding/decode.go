package encoding

import (
	"encoding/binary"
	"fmt"
	"reflect"
	"sync"
	"unsafe"

	"github.com/modern-go/reflect2"
)

type handler = func(Stream, unsafe.Pointer) error

type handlerData struct {
	handler handler
	layout  layout
}

var decodeProcess sync.Map

// DecodeSize returns how many bytes of target memory Decode consumes for the
// value val points to.
func DecodeSize(blockSize int, val any) (int, error) {
	typ, _, err := elemOf(val)
	if err != nil {
		return 0, err
	}
	data, err := getUnmarshalData(typ, blockSize)
	if err != nil {
		return 0, err
	}
	return data.layout.size, nil
}

// Decode fills the value val points to from stream, laying fields out the way
// a C compiler for the target would.
func Decode(stream Stream, val any) error {
	typ, ptr, err := elemOf(val)
	if err != nil {
		return err
	}
	data, err := getUnmarshalData(typ, stream.BlockSize())
	if err != nil {
		return err
	}
	return data.handler(stream, ptr)
}

func elemOf(val any) (reflect2.Type, unsafe.Pointer, error) {
	if val == nil || reflect2.IsNil(val) {
		return nil, nil, ErrValueInvalid
	}
	typ := reflect2.TypeOf(val)
	if typ.Kind() != reflect.Pointer {
		return nil, nil, ErrValueInvalid
	}
	return typ.(reflect2.PtrType).Elem(), reflect2.PtrOf(val), nil
}

func getUnmarshalData(typ reflect2.Type, bs int) (*handlerData, error) {
	key := [2]uintptr{uintptr(bs), typ.RType()}
	if v, ok := decodeProcess.Load(key); ok {
		return v.(*handlerData), nil
	}
	unmarshal, l, err := decode(typ, bs)
	if err != nil {
		return nil, err
	}
	data := &handlerData{unmarshal, l}
	decodeProcess.Store(key, data)
	return data, nil
}

func decode(typ reflect2.Type, bs int) (handler, layout, error) {
	switch typ.Kind() {
	case reflect.Bool, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Float32, reflect.Float64:
		size := int(typ.Type1().Size())
		return func(stream Stream, ptr unsafe.Pointer) error {
			b := unsafe.Slice((*byte)(ptr), size)
			_, err := stream.Read(b)
			if err != nil {
				return err
			}
			toHost(stream.ByteOrder(), b)
			return nil
		}, layout{size, size}, nil
	case reflect.Int, reflect.Uint, reflect.Uintptr:
		return decodeWord(int(typ.Type1().Size()), bs), layout{bs, bs}, nil
	case reflect.Array:
		return decodeArray(typ.(reflect2.ArrayType), bs)
	case reflect.Pointer:
		return decodePointer(typ.(reflect2.PtrType).Elem(), bs)
	case reflect.String:
		return decodeString(), layout{bs, bs}, nil
	case reflect.Struct:
		return decodeStruct(typ.(reflect2.StructType), bs)
	}
	return nil, layout{}, fmt.Errorf("%w: %s", ErrTypeUnsupported, typ)
}

// decodeWord reads a target word of bs bytes into a host word of size bytes.
func decodeWord(size, bs int) handler {
	n, pad := size, 0
	if n > bs {
		n = bs
	} else if n < bs {
		pad = bs - n
	}
	return func(stream Stream, ptr unsafe.Pointer) error {
		var raw [8]byte
		_, err := stream.Read(raw[:n])
		if err != nil {
			return err
		}
		v := readUint(stream.ByteOrder(), raw[:n])
		word := unsafe.Slice((*byte)(ptr), size)
		if size == 8 {
			binary.NativeEndian.PutUint64(word, v)
		} else {
			binary.NativeEndian.PutUint32(word, uint32(v))
		}
		if pad > 0 {
			return stream.Skip(pad)
		}
		return nil
	}
}

// decodePointer resolves the element handler on first use so self-referencing
// types such as list nodes terminate.
func decodePointer(elem reflect2.Type, bs int) (handler, layout, error) {
	return func(stream Stream, ptr unsafe.Pointer) error {
		subStream, err := stream.ReadStream()
		if err != nil {
			return err
		} else if subStream.Offset() == 0 {
			*(*unsafe.Pointer)(ptr) = nil
			return nil
		}
		data, err := getUnmarshalData(elem, bs)
		if err != nil {
			return err
		}
		elemPtr := *(*unsafe.Pointer)(ptr)
		if elemPtr == nil {
			elemPtr = elem.UnsafeNew()
			*(*unsafe.Pointer)(ptr) = elemPtr
		}
		return data.handler(subStream, elemPtr)
	}, layout{bs, bs}, nil
}

// decodeString follows a char pointer and reads up to the terminating NUL.
func decodeString() handler {
	return func(stream Stream, ptr unsafe.Pointer) error {
		subStream, err := stream.ReadStream()
		if err != nil {
			return err
		} else if subStream.Offset() == 0 {
			*(*string)(ptr) = ""
			return nil
		}
		str, err := subStream.ReadString()
		if err != nil {
			return err
		}
		*(*string)(ptr) = str
		return nil
	}
}
