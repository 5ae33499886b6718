package target

import (
	"golang.org/x/exp/constraints"

	"github.com/wnxd/crashdbg/target"
)

// regBuffer stages one register value on its way into a register cache.
type regBuffer [target.RegBufferSize]byte

// view returns the first width bytes of buf. Registers wider than the buffer
// are a capacity violation; truncating them would show wrong values.
func view[W constraints.Integer](buf *regBuffer, reg int, width W) ([]byte, error) {
	if width < 0 || uint64(width) > uint64(len(buf)) {
		return nil, target.NewCapacityError(reg, int(width), len(buf))
	}
	n := int(width)
	return buf[:n:n], nil
}

// checkWidths reports the first register of arch that cannot be staged.
func checkWidths(arch target.Arch) error {
	var buf regBuffer
	for reg := 0; reg < arch.NumRegs(); reg++ {
		_, err := view(&buf, reg, arch.RegSize(reg))
		if err != nil {
			return err
		}
	}
	return nil
}
