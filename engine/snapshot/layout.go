package snapshot

import (
	"fmt"

	"github.com/wnxd/crashdbg/engine"
	"github.com/wnxd/crashdbg/target"
)

func regs(size int, names ...string) []target.RegDesc {
	descs := make([]target.RegDesc, len(names))
	for i, name := range names {
		descs[i] = target.RegDesc{Name: name, Size: size}
	}
	return descs
}

func numbered(prefix string, n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return names
}

// defaultLayout follows the GDB register numbering of each architecture.
func defaultLayout(arch engine.Arch) []target.RegDesc {
	switch arch {
	case engine.ARCH_ARM:
		return append(regs(4, numbered("r", 13)...), regs(4, "sp", "lr", "pc", "cpsr")...)
	case engine.ARCH_ARM64:
		layout := regs(8, numbered("x", 31)...)
		layout = append(layout, regs(8, "sp", "pc")...)
		return append(layout, regs(4, "cpsr")...)
	case engine.ARCH_X86:
		return regs(4, "eax", "ecx", "edx", "ebx", "esp", "ebp", "esi", "edi", "eip", "eflags", "cs", "ss", "ds", "es", "fs", "gs")
	case engine.ARCH_X86_64:
		layout := regs(8, "rax", "rbx", "rcx", "rdx", "rsi", "rdi", "rbp", "rsp")
		layout = append(layout, regs(8, numbered("r", 16)[8:]...)...)
		layout = append(layout, regs(8, "rip")...)
		return append(layout, regs(4, "eflags", "cs", "ss", "ds", "es", "fs", "gs")...)
	}
	return nil
}

func parseByteOrder(s string) (engine.ByteOrder, error) {
	switch s {
	case "", "little":
		return engine.BO_LITTLE_ENDIAN, nil
	case "big":
		return engine.BO_BIG_ENDIAN, nil
	}
	return 0, fmt.Errorf("%w: byte order %q", ErrSnapshotInvalid, s)
}

func buildArch(snap *Snapshot) (*target.RegTable, error) {
	arch := engine.ParseArch(snap.Arch)
	if arch == engine.ARCH_UNKNOWN {
		return nil, fmt.Errorf("%w: %q", engine.ErrArchUnsupported, snap.Arch)
	}
	order, err := parseByteOrder(snap.ByteOrder)
	if err != nil {
		return nil, err
	}
	table := &target.RegTable{Arch: arch, Order: order}
	if len(snap.Registers) == 0 {
		table.Regs = defaultLayout(arch)
		return table, nil
	}
	for _, r := range snap.Registers {
		if r.Name == "" || r.Size <= 0 {
			return nil, fmt.Errorf("%w: register %q size %d", ErrSnapshotInvalid, r.Name, r.Size)
		}
		table.Regs = append(table.Regs, target.RegDesc{Name: r.Name, Size: r.Size})
	}
	return table, nil
}
