package engine

// ContextID identifies one execution context known to the engine: a CPU
// index in multi-context mode, or 0 for the single implicit context.
type ContextID uint64

// Identity is the human readable identity of the engine's current task.
type Identity struct {
	PID  uint64
	Comm string
}

// Engine is the query surface of a post-mortem analysis engine. Every call is
// synchronous and in-process.
type Engine interface {
	// ReadMemory copies len(buf) bytes at addr into buf, or out of buf when
	// write is set. Transfers are all or nothing.
	ReadMemory(addr uint64, buf []byte, write bool) error
	// GetRegister fills val with the raw value of register reg for ctx.
	// len(val) is the register width reported by the architecture.
	GetRegister(ctx ContextID, reg int, name string, val []byte) error
	CurrentIdentity() (Identity, error)
}

// CPUEngine is implemented by engines that can enumerate CPUs. Engines that
// implement it but cannot enumerate for a particular dump report
// ErrTopologyUnsupported from ContextCount.
type CPUEngine interface {
	Engine
	ContextCount() (int, error)
	ResolveTask(task uint64) (ContextID, error)
	// SetActiveContext makes ctx the context per-context queries answer for
	// and returns the previously active one.
	SetActiveContext(ctx ContextID) (ContextID, error)
}

// TaskEngine is implemented by engines that keep per-CPU state but can also
// answer the implicit context 0 with the registers of the current task.
// Single-context targets turn it on before their first query.
type TaskEngine interface {
	Engine
	SetTaskContext(on bool)
}
