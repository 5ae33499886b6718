package target

import (
	"fmt"

	"github.com/wnxd/crashdbg/encoding"
	"github.com/wnxd/crashdbg/engine"
	"github.com/wnxd/crashdbg/target"
)

// XferPartial moves len(buf) bytes between buf and dump memory at offset,
// where buf is readBuf when set and writeBuf otherwise. Transfers either
// complete or fail; there are no short counts.
func (t *Tgt) XferPartial(obj target.Object, annex string, readBuf, writeBuf []byte, offset uint64) (uint64, error) {
	if t.closed {
		return 0, target.ErrClosed
	}
	if !obj.IsMemory() {
		return 0, fmt.Errorf("%w: %w: %s", target.ErrIO, target.ErrObjectUnsupported, obj)
	}
	buf, write := readBuf, false
	if readBuf == nil {
		buf, write = writeBuf, true
	}
	err := t.eng.ReadMemory(offset, buf, write)
	if err != nil {
		t.log.V(2).Info("memory transfer failed", "object", obj, "addr", offset, "len", len(buf), "write", write, "error", err.Error())
		return 0, fmt.Errorf("%w: %#x: %w", target.ErrIO, offset, err)
	}
	return uint64(len(buf)), nil
}

func (t *Tgt) MemRead(addr, size uint64) ([]byte, error) {
	data := make([]byte, size)
	_, err := t.XferPartial(target.Object_Memory, "", data, nil, addr)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// MemExtract decodes the structure at addr into the value val points to.
func (t *Tgt) MemExtract(addr uint64, val any) error {
	stream, err := t.stream(addr)
	if err != nil {
		return err
	}
	return encoding.Decode(stream, val)
}

func (t *Tgt) ToPointer(addr uint64) target.Pointer {
	return target.ToPointer(t, t.host.Arch(), addr)
}

func (t *Tgt) stream(addr uint64) (encoding.Stream, error) {
	arch := t.host.Arch()
	size := int(arch.Machine().PointerSize())
	if size == 0 {
		return nil, engine.ErrArchUnsupported
	}
	return newPointerStream(t.ToPointer(addr), size, arch.ByteOrder().Order()), nil
}
