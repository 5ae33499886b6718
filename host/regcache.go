package host

import (
	"slices"

	"github.com/wnxd/crashdbg/engine"
	"github.com/wnxd/crashdbg/target"
)

// RegCache holds the raw register values of one thread.
type RegCache struct {
	arch   target.Arch
	values [][]byte
	status []target.RegStatus
}

func newRegCache(arch target.Arch) *RegCache {
	n := arch.NumRegs()
	return &RegCache{
		arch:   arch,
		values: make([][]byte, n),
		status: make([]target.RegStatus, n),
	}
}

func (rc *RegCache) valid(reg int) bool {
	return reg >= 0 && reg < len(rc.status)
}

// Supply copies val; the caller's buffer is reused between registers.
func (rc *RegCache) Supply(reg int, val []byte) {
	if !rc.valid(reg) {
		return
	}
	rc.values[reg] = slices.Clone(val)
	rc.status[reg] = target.RegStatus_Valid
}

func (rc *RegCache) SupplyUnknown(reg int) {
	if !rc.valid(reg) {
		return
	}
	rc.values[reg] = nil
	rc.status[reg] = target.RegStatus_Unavailable
}

func (rc *RegCache) Status(reg int) target.RegStatus {
	if !rc.valid(reg) {
		return target.RegStatus_Unavailable
	}
	return rc.status[reg]
}

// Value returns the cached bytes of reg, or nil unless its status is valid.
func (rc *RegCache) Value(reg int) []byte {
	if rc.Status(reg) != target.RegStatus_Valid {
		return nil
	}
	return rc.values[reg]
}

// Uint returns reg decoded in the architecture byte order. Registers wider
// than eight bytes are truncated to their low word.
func (rc *RegCache) Uint(reg int) (uint64, bool) {
	val := rc.Value(reg)
	if val == nil {
		return 0, false
	}
	var word [8]byte
	order := rc.arch.ByteOrder()
	if order == engine.BO_BIG_ENDIAN {
		if len(val) > len(word) {
			val = val[len(val)-len(word):]
		}
		copy(word[len(word)-len(val):], val)
	} else {
		copy(word[:], val)
	}
	return order.Order().Uint64(word[:]), true
}

func (rc *RegCache) Invalidate() {
	clear(rc.values)
	clear(rc.status)
}
