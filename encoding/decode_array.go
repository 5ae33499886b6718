package encoding

import (
	"reflect"
	"unsafe"

	"github.com/modern-go/reflect2"
)

func decodeArray(typ reflect2.ArrayType, bs int) (handler, layout, error) {
	count := typ.Len()
	elem := typ.Elem()
	if isPlain(elem.Type1(), bs) {
		total := int(typ.Type1().Size())
		return func(stream Stream, ptr unsafe.Pointer) error {
			_, err := stream.Read(unsafe.Slice((*byte)(ptr), total))
			return err
		}, layout{total, int(elem.Type1().Align())}, nil
	}
	unmarshal, elemLayout, err := decode(elem, bs)
	if err != nil {
		return nil, layout{}, err
	}
	return func(stream Stream, ptr unsafe.Pointer) error {
		for i := 0; i < count; i++ {
			err := unmarshal(stream, typ.UnsafeGetIndex(ptr, i))
			if err != nil {
				return err
			}
		}
		return nil
	}, layout{elemLayout.size * count, elemLayout.align}, nil
}

// isPlain reports whether typ has the same in-memory layout on the host and
// on a target with word size bs, so it can be copied in one read.
func isPlain(typ reflect.Type, bs int) bool {
	switch typ.Kind() {
	case reflect.Bool, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Float32, reflect.Float64:
		return true
	case reflect.Int, reflect.Uint, reflect.Uintptr:
		return int(typ.Size()) == bs
	case reflect.Array:
		return isPlain(typ.Elem(), bs)
	}
	return false
}
