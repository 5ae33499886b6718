package target

import (
	"errors"
	"fmt"
	"slices"

	"github.com/wnxd/crashdbg/engine"
	"github.com/wnxd/crashdbg/target"
)

var errFake = errors.New("fake engine failure")

type fakeEngine struct {
	regs     map[engine.ContextID]map[int][]byte
	memBase  uint64
	mem      []byte
	identity *engine.Identity
	calls    []string
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{regs: make(map[engine.ContextID]map[int][]byte)}
}

func (fe *fakeEngine) setReg(ctx engine.ContextID, reg int, val ...byte) {
	if fe.regs[ctx] == nil {
		fe.regs[ctx] = make(map[int][]byte)
	}
	fe.regs[ctx][reg] = val
}

func (fe *fakeEngine) ReadMemory(addr uint64, buf []byte, write bool) error {
	fe.calls = append(fe.calls, fmt.Sprintf("mem %#x %d %t", addr, len(buf), write))
	if write {
		return engine.ErrReadOnly
	}
	if addr < fe.memBase || addr-fe.memBase+uint64(len(buf)) > uint64(len(fe.mem)) {
		return engine.ErrMemoryUnavailable
	}
	copy(buf, fe.mem[addr-fe.memBase:])
	return nil
}

func (fe *fakeEngine) GetRegister(ctx engine.ContextID, reg int, name string, val []byte) error {
	fe.calls = append(fe.calls, fmt.Sprintf("reg %d %d", ctx, reg))
	v, ok := fe.regs[ctx][reg]
	if !ok {
		return errFake
	}
	clear(val)
	copy(val, v)
	return nil
}

func (fe *fakeEngine) CurrentIdentity() (engine.Identity, error) {
	if fe.identity == nil {
		return engine.Identity{}, engine.ErrTaskNotFound
	}
	return *fe.identity, nil
}

type fakeCPUEngine struct {
	*fakeEngine
	count    int
	countErr error
	tasks    map[uint64]engine.ContextID
	active   engine.ContextID
	taskCtx  bool
	// actives records the active context at every register query.
	actives []engine.ContextID
}

func newFakeCPUEngine(count int) *fakeCPUEngine {
	return &fakeCPUEngine{
		fakeEngine: newFakeEngine(),
		count:      count,
		tasks:      make(map[uint64]engine.ContextID),
	}
}

func (fe *fakeCPUEngine) GetRegister(ctx engine.ContextID, reg int, name string, val []byte) error {
	fe.actives = append(fe.actives, fe.active)
	return fe.fakeEngine.GetRegister(ctx, reg, name, val)
}

func (fe *fakeCPUEngine) ContextCount() (int, error) {
	return fe.count, fe.countErr
}

func (fe *fakeCPUEngine) ResolveTask(task uint64) (engine.ContextID, error) {
	fe.calls = append(fe.calls, fmt.Sprintf("resolve %#x", task))
	ctx, ok := fe.tasks[task]
	if !ok {
		return 0, engine.ErrTaskNotFound
	}
	return ctx, nil
}

func (fe *fakeCPUEngine) SetActiveContext(ctx engine.ContextID) (engine.ContextID, error) {
	fe.calls = append(fe.calls, fmt.Sprintf("active %d", ctx))
	prev := fe.active
	fe.active = ctx
	return prev, nil
}

func (fe *fakeCPUEngine) SetTaskContext(on bool) {
	fe.taskCtx = on
}

type regEntry struct {
	Status target.RegStatus
	Value  []byte
}

type fakeCache struct {
	host *fakeHost
	ptid target.PTID
	regs map[int]regEntry
	// order is the sequence of supplied register indices.
	order []int
}

func (fc *fakeCache) Supply(reg int, val []byte) {
	fc.regs[reg] = regEntry{target.RegStatus_Valid, slices.Clone(val)}
	fc.order = append(fc.order, reg)
	fc.host.event("supply %v %d", fc.ptid, reg)
}

func (fc *fakeCache) SupplyUnknown(reg int) {
	fc.regs[reg] = regEntry{Status: target.RegStatus_Unavailable}
	fc.order = append(fc.order, reg)
	fc.host.event("unknown %v %d", fc.ptid, reg)
}

type fakeHost struct {
	arch        target.Arch
	threads     []target.Thread
	caches      map[target.PTID]*fakeCache
	active      target.Thread
	events      []string
	invalidates int
	reinits     int
	addErr      error
	onReinit    func()
}

func newFakeHost(arch target.Arch) *fakeHost {
	return &fakeHost{arch: arch, caches: make(map[target.PTID]*fakeCache)}
}

func (fh *fakeHost) event(format string, args ...any) {
	fh.events = append(fh.events, fmt.Sprintf(format, args...))
}

func (fh *fakeHost) Arch() target.Arch {
	return fh.arch
}

func (fh *fakeHost) AddThread(th target.Thread) error {
	if fh.addErr != nil {
		return fh.addErr
	}
	fh.threads = append(fh.threads, th)
	fh.event("add %v", th.PTID())
	return nil
}

func (fh *fakeHost) cache(ptid target.PTID) *fakeCache {
	fc, ok := fh.caches[ptid]
	if !ok {
		fc = &fakeCache{host: fh, ptid: ptid, regs: make(map[int]regEntry)}
		fh.caches[ptid] = fc
	}
	return fc
}

func (fh *fakeHost) RegisterCache(th target.Thread) target.RegisterCache {
	return fh.cache(th.PTID())
}

func (fh *fakeHost) SwitchToThread(th target.Thread) {
	fh.active = th
	fh.event("switch %v", th.PTID())
}

func (fh *fakeHost) InvalidateRegisters() {
	fh.invalidates++
	for _, fc := range fh.caches {
		clear(fc.regs)
	}
	fh.event("invalidate")
}

func (fh *fakeHost) ReinitFrameCache() {
	fh.reinits++
	fh.event("reinit")
	if fh.onReinit != nil {
		fh.onReinit()
	}
}

func (fh *fakeHost) reset() {
	fh.events = nil
}

func testArch() *target.RegTable {
	return &target.RegTable{
		Arch:  engine.ARCH_X86_64,
		Order: engine.BO_LITTLE_ENDIAN,
		Regs: []target.RegDesc{
			{Name: "rax", Size: 8},
			{Name: "rbx", Size: 8},
			{Name: "rip", Size: 8},
			{Name: "eflags", Size: 4},
		},
	}
}

func fillRegs(fe *fakeEngine, ctx engine.ContextID, arch target.Arch) {
	for reg := 0; reg < arch.NumRegs(); reg++ {
		val := make([]byte, arch.RegSize(reg))
		for i := range val {
			val[i] = byte(ctx)<<4 | byte(reg)
		}
		fe.setReg(ctx, reg, val...)
	}
}
