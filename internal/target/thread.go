package target

import (
	"fmt"

	"github.com/wnxd/crashdbg/engine"
	"github.com/wnxd/crashdbg/target"
)

type thread struct {
	tgt  *Tgt
	ptid target.PTID
	ctx  engine.ContextID
}

type threadManager struct {
	threads map[engine.ContextID]*thread
	order   []*thread
	current *thread
}

func (tm *threadManager) ctor() {
	tm.threads = make(map[engine.ContextID]*thread)
}

func (tm *threadManager) dtor() {
	clear(tm.threads)
	tm.order = nil
	tm.current = nil
}

func (tm *threadManager) find(ctx engine.ContextID) *thread {
	return tm.threads[ctx]
}

// add registers ctx with the host and the directory. Adding a known context
// returns the existing thread.
func (tm *threadManager) add(t *Tgt, ctx engine.ContextID) (*thread, error) {
	if th, ok := tm.threads[ctx]; ok {
		return th, nil
	}
	th := &thread{
		tgt:  t,
		ptid: target.PTID{Pid: t.cfg.Pid, Lwp: 0, Tid: uint64(ctx)},
		ctx:  ctx,
	}
	err := t.host.AddThread(th)
	if err != nil {
		return nil, err
	}
	tm.threads[ctx] = th
	tm.order = append(tm.order, th)
	return th, nil
}

// lookupOrCreate makes at most one creation attempt, so a directory that
// disagrees with the engine fails instead of retrying forever.
func (tm *threadManager) lookupOrCreate(t *Tgt, ctx engine.ContextID) (*thread, error) {
	if th := tm.find(ctx); th != nil {
		return th, nil
	}
	_, err := tm.add(t, ctx)
	if th := tm.find(ctx); th != nil {
		t.log.V(1).Info("thread created", "context", ctx, "ptid", th.ptid)
		return th, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %d: %w", target.ErrNoSuchContext, ctx, err)
	}
	return nil, fmt.Errorf("%w: %d", target.ErrNoSuchContext, ctx)
}

func (tm *threadManager) selectThread(t *Tgt, th *thread) {
	tm.current = th
	t.host.SwitchToThread(th)
}

func (t *Tgt) ownThread(th target.Thread) (*thread, error) {
	if th == nil {
		return nil, target.ErrThreadInvalid
	}
	if own, ok := th.(*thread); ok && own.tgt == t {
		return own, nil
	}
	ptid := th.PTID()
	if own := t.find(engine.ContextID(ptid.Tid)); own != nil && own.ptid == ptid {
		return own, nil
	}
	return nil, fmt.Errorf("%w: %v", target.ErrThreadInvalid, ptid)
}

func (t *Tgt) Threads() []target.Thread {
	threads := make([]target.Thread, len(t.order))
	for i, th := range t.order {
		threads[i] = th
	}
	return threads
}

func (t *Tgt) FindThread(ptid target.PTID) (target.Thread, error) {
	th := t.find(engine.ContextID(ptid.Tid))
	if th == nil || th.ptid != ptid {
		return nil, fmt.Errorf("%w: %v", target.ErrThreadInvalid, ptid)
	}
	return th, nil
}

func (t *Tgt) CurrentThread() target.Thread {
	if t.current == nil {
		return nil
	}
	return t.current
}

func (th *thread) Target() target.Target {
	return th.tgt
}

func (th *thread) PTID() target.PTID {
	return th.ptid
}

func (th *thread) ContextID() engine.ContextID {
	return th.ctx
}

func (th *thread) String() string {
	return th.ptid.String()
}
