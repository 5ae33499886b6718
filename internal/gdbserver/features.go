package gdbserver

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wnxd/crashdbg/engine"
	"github.com/wnxd/crashdbg/target"
)

func gdbArchitecture(arch engine.Arch) string {
	switch arch {
	case engine.ARCH_ARM:
		return "arm"
	case engine.ARCH_ARM64:
		return "aarch64"
	case engine.ARCH_X86:
		return "i386"
	case engine.ARCH_X86_64:
		return "i386:x86-64"
	}
	return ""
}

// targetXML describes the register layout so GDB numbers registers the same
// way the target does.
func targetXML(arch target.Arch) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0"?><!DOCTYPE target SYSTEM "gdb-target.dtd"><target version="1.0">`)
	if name := gdbArchitecture(arch.Machine()); name != "" {
		fmt.Fprintf(&sb, "<architecture>%s</architecture>", name)
	}
	sb.WriteString(`<feature name="org.crashdbg.core">`)
	for reg := 0; reg < arch.NumRegs(); reg++ {
		fmt.Fprintf(&sb, `<reg name="%s" bitsize="%d" regnum="%d"/>`, arch.RegName(reg), arch.RegSize(reg)*8, reg)
	}
	sb.WriteString("</feature></target>")
	return sb.String()
}

// xferChunk answers a qXfer read whose trailing argument is OFFSET,LENGTH.
func xferChunk(data, cmd string) string {
	lastColon := strings.LastIndex(cmd, ":")
	if lastColon < 0 || lastColon+1 >= len(cmd) {
		return "E01"
	}
	off, ln, ok := parsePair(cmd[lastColon+1:])
	if !ok {
		return "E01"
	}
	if off >= uint64(len(data)) {
		return "l"
	}
	end := off + ln
	if end > uint64(len(data)) {
		end = uint64(len(data))
	}
	marker := "m"
	if end == uint64(len(data)) {
		marker = "l"
	}
	return marker + data[off:end]
}

func parsePair(s string) (a, b uint64, ok bool) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	a, err1 := strconv.ParseUint(parts[0], 16, 64)
	b, err2 := strconv.ParseUint(parts[1], 16, 64)
	return a, b, err1 == nil && err2 == nil
}
