package snapshot

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// FormatConstraint is the range of snapshot format versions this package
// reads.
const FormatConstraint = "^1"

type Snapshot struct {
	Version     string          `yaml:"version"`
	Arch        string          `yaml:"arch"`
	ByteOrder   string          `yaml:"byte_order,omitempty"`
	Registers   []RegisterDesc  `yaml:"registers,omitempty"`
	CurrentTask Addr            `yaml:"current_task"`
	CPUs        []CPU           `yaml:"cpus,omitempty"`
	Tasks       []Task          `yaml:"tasks"`
	Memory      []MemorySegment `yaml:"memory,omitempty"`
}

type RegisterDesc struct {
	Name string `yaml:"name"`
	Size int    `yaml:"size"`
}

// CPU is the saved state of one processor. A register missing from
// Registers is reported as unavailable.
type CPU struct {
	Task      Addr           `yaml:"task"`
	Registers map[string]Hex `yaml:"registers,omitempty"`
}

type Task struct {
	Addr      Addr           `yaml:"addr"`
	Pid       uint64         `yaml:"pid"`
	Comm      string         `yaml:"comm"`
	CPU       *int           `yaml:"cpu,omitempty"`
	Registers map[string]Hex `yaml:"registers,omitempty"`
}

type MemorySegment struct {
	Addr Addr `yaml:"addr"`
	Data Hex  `yaml:"data"`
}

// Addr accepts decimal, 0x hex and 0o octal scalars up to the full 64 bits.
type Addr uint64

func (a *Addr) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: address must be a scalar", node.Line)
	}
	v, err := strconv.ParseUint(strings.ReplaceAll(node.Value, "_", ""), 0, 64)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*a = Addr(v)
	return nil
}

func (a Addr) MarshalYAML() (any, error) {
	return fmt.Sprintf("%#x", uint64(a)), nil
}

// Hex is raw bytes written as a hex string in dump byte order. Whitespace
// and a leading 0x are ignored.
type Hex []byte

func (h *Hex) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: hex data must be a scalar", node.Line)
	}
	s := strings.Join(strings.Fields(node.Value), "")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	data, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*h = data
	return nil
}

func (h Hex) MarshalYAML() (any, error) {
	return hex.EncodeToString(h), nil
}
