package encoding

import (
	"unsafe"

	"github.com/modern-go/reflect2"
)

type structField struct {
	handler handler
	offset  uintptr
	pad     int
}

func decodeStruct(typ reflect2.StructType, bs int) (handler, layout, error) {
	count := typ.NumField()
	fields := make([]structField, 0, count)
	var offset, maxAlign int
	for i := 0; i < count; i++ {
		field := typ.Field(i)
		if field.Tag().Get("encoding") == "ignore" {
			continue
		}
		unmarshal, l, err := decode(field.Type(), bs)
		if err != nil {
			return nil, layout{}, err
		}
		start := align(offset, l.align)
		fields = append(fields, structField{unmarshal, field.Offset(), start - offset})
		offset = start + l.size
		maxAlign = max(maxAlign, l.align)
	}
	total := align(offset, maxAlign)
	tail := total - offset
	return func(stream Stream, ptr unsafe.Pointer) error {
		for _, f := range fields {
			if f.pad > 0 {
				if err := stream.Skip(f.pad); err != nil {
					return err
				}
			}
			if err := f.handler(stream, unsafe.Add(ptr, f.offset)); err != nil {
				return err
			}
		}
		if tail > 0 {
			return stream.Skip(tail)
		}
		return nil
	}, layout{total, max(maxAlign, 1)}, nil
}
