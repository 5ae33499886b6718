// Package snapshot is an engine backed by a YAML description of a dump:
// register layout, per-CPU register values, the task list and memory
// segments.
package snapshot

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/wnxd/crashdbg/engine"
	"github.com/wnxd/crashdbg/target"
)

type segment struct {
	addr uint64
	data []byte
}

type Engine struct {
	mu       sync.Mutex
	snap     *Snapshot
	arch     *target.RegTable
	tasks    map[uint64]*Task
	segments []segment
	current  *Task
	active   engine.ContextID
	taskCtx  bool
}

var (
	_ engine.CPUEngine  = (*Engine)(nil)
	_ engine.TaskEngine = (*Engine)(nil)
)

func Load(r io.Reader) (*Snapshot, error) {
	var snap Snapshot
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&snap); err != nil {
		return nil, fmt.Errorf("unable to parse snapshot: %w", err)
	}
	return &snap, nil
}

func Open(path string) (*Engine, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	snap, err := Load(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	return New(snap)
}

func checkVersion(version string) error {
	c, err := semver.NewConstraint(FormatConstraint)
	if err != nil {
		return err
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrVersionMismatch, version, err)
	}
	if !c.Check(v) {
		return fmt.Errorf("%w: %s does not satisfy %s", ErrVersionMismatch, v, FormatConstraint)
	}
	return nil
}

func New(snap *Snapshot) (*Engine, error) {
	if snap == nil {
		return nil, ErrSnapshotInvalid
	}
	err := checkVersion(snap.Version)
	if err != nil {
		return nil, err
	}
	arch, err := buildArch(snap)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		snap:  snap,
		arch:  arch,
		tasks: make(map[uint64]*Task, len(snap.Tasks)),
	}
	for i := range snap.Tasks {
		task := &snap.Tasks[i]
		if _, ok := e.tasks[uint64(task.Addr)]; ok {
			return nil, fmt.Errorf("%w: duplicate task %#x", ErrSnapshotInvalid, uint64(task.Addr))
		}
		if task.CPU != nil && (*task.CPU < 0 || *task.CPU >= len(snap.CPUs)) {
			return nil, fmt.Errorf("%w: task %#x on cpu %d", ErrSnapshotInvalid, uint64(task.Addr), *task.CPU)
		}
		e.tasks[uint64(task.Addr)] = task
	}
	if task, ok := e.tasks[uint64(snap.CurrentTask)]; ok {
		e.current = task
	} else if snap.CurrentTask != 0 {
		return nil, fmt.Errorf("%w: current task %#x", engine.ErrTaskNotFound, uint64(snap.CurrentTask))
	}
	for _, m := range snap.Memory {
		e.segments = append(e.segments, segment{uint64(m.Addr), m.Data})
	}
	slices.SortFunc(e.segments, func(a, b segment) int {
		if a.addr < b.addr {
			return -1
		} else if a.addr > b.addr {
			return 1
		}
		return 0
	})
	return e, nil
}

// Arch is the register layout described by the snapshot.
func (e *Engine) Arch() *target.RegTable {
	return e.arch
}

func (e *Engine) findSegment(addr, size uint64) (segment, bool) {
	i, found := slices.BinarySearchFunc(e.segments, addr, func(s segment, addr uint64) int {
		if s.addr < addr {
			return -1
		} else if s.addr > addr {
			return 1
		}
		return 0
	})
	if !found {
		i--
	}
	if i < 0 {
		return segment{}, false
	}
	s := e.segments[i]
	off := addr - s.addr
	if off > uint64(len(s.data)) || size > uint64(len(s.data))-off {
		return segment{}, false
	}
	return s, true
}

// ReadMemory serves reads from a single segment. Snapshots are immutable, so
// writes are refused.
func (e *Engine) ReadMemory(addr uint64, buf []byte, write bool) error {
	if write {
		return engine.ErrReadOnly
	}
	s, ok := e.findSegment(addr, uint64(len(buf)))
	if !ok {
		return fmt.Errorf("%w: %#x+%d", engine.ErrMemoryUnavailable, addr, len(buf))
	}
	copy(buf, s.data[addr-s.addr:])
	return nil
}

func (e *Engine) registers(ctx engine.ContextID) (map[string]Hex, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.snap.CPUs) > 0 && !e.taskCtx {
		if uint64(ctx) >= uint64(len(e.snap.CPUs)) {
			return nil, fmt.Errorf("%w: %d", engine.ErrContextInvalid, ctx)
		}
		return e.snap.CPUs[ctx].Registers, nil
	}
	if ctx != 0 {
		return nil, fmt.Errorf("%w: %d", engine.ErrContextInvalid, ctx)
	}
	if e.current == nil {
		return nil, engine.ErrTaskNotFound
	}
	// a running task's registers live in its CPU entry
	if e.current.CPU != nil {
		return e.snap.CPUs[*e.current.CPU].Registers, nil
	}
	return e.current.Registers, nil
}

// SetTaskContext makes context 0 answer for the current task instead of
// CPU 0.
func (e *Engine) SetTaskContext(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.taskCtx = on
}

func (e *Engine) GetRegister(ctx engine.ContextID, reg int, name string, val []byte) error {
	regs, err := e.registers(ctx)
	if err != nil {
		return err
	}
	raw, ok := regs[name]
	if !ok {
		return fmt.Errorf("%w: %s", engine.ErrRegisterUnavailable, name)
	} else if len(raw) > len(val) {
		return fmt.Errorf("%w: %s is %d bytes, want %d", ErrSnapshotInvalid, name, len(raw), len(val))
	}
	clear(val)
	if e.arch.Order == engine.BO_BIG_ENDIAN {
		copy(val[len(val)-len(raw):], raw)
	} else {
		copy(val, raw)
	}
	return nil
}

func (e *Engine) CurrentIdentity() (engine.Identity, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return engine.Identity{}, engine.ErrTaskNotFound
	}
	return engine.Identity{PID: e.current.Pid, Comm: e.current.Comm}, nil
}

func (e *Engine) ContextCount() (int, error) {
	if len(e.snap.CPUs) == 0 {
		return 0, engine.ErrTopologyUnsupported
	}
	return len(e.snap.CPUs), nil
}

// ResolveTask maps a task to the CPU it was running on when the dump was
// taken.
func (e *Engine) ResolveTask(task uint64) (engine.ContextID, error) {
	t, ok := e.tasks[task]
	if !ok {
		return 0, fmt.Errorf("%w: %#x", engine.ErrTaskNotFound, task)
	} else if t.CPU == nil {
		return 0, fmt.Errorf("%w: task %#x was not running", engine.ErrContextInvalid, task)
	}
	return engine.ContextID(*t.CPU), nil
}

func (e *Engine) SetActiveContext(ctx engine.ContextID) (engine.ContextID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if uint64(ctx) >= uint64(len(e.snap.CPUs)) {
		return e.active, fmt.Errorf("%w: %d", engine.ErrContextInvalid, ctx)
	}
	prev := e.active
	e.active = ctx
	return prev, nil
}

func (e *Engine) ActiveContext() engine.ContextID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// SetCurrentTask selects task the way a "set" command would. Callers forward
// the task to the target with ChangeThreadContext.
func (e *Engine) SetCurrentTask(task uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.tasks[task]
	if !ok {
		return fmt.Errorf("%w: %#x", engine.ErrTaskNotFound, task)
	}
	e.current = t
	return nil
}

func (e *Engine) CurrentTask() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return 0
	}
	return uint64(e.current.Addr)
}

func (e *Engine) Tasks() []Task {
	return slices.Clone(e.snap.Tasks)
}
