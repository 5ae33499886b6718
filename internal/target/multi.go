package target

import (
	"fmt"

	"github.com/wnxd/crashdbg/engine"
	"github.com/wnxd/crashdbg/target"
)

// multiContext exposes one thread per CPU reported by the engine.
type multiContext struct {
	eng   engine.CPUEngine
	count int
}

func newMultiContext(eng engine.CPUEngine, count int) (*multiContext, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: %d", target.ErrNoContexts, count)
	}
	return &multiContext{eng: eng, count: count}, nil
}

func (mc *multiContext) mode() target.Mode {
	return target.Mode_Multi
}

func (mc *multiContext) init(t *Tgt) error {
	if te, ok := mc.eng.(engine.TaskEngine); ok {
		te.SetTaskContext(false)
	}
	for i := 0; i < mc.count; i++ {
		_, err := t.add(t, engine.ContextID(i))
		if err != nil {
			return err
		}
	}
	th := t.find(0)
	t.selectThread(t, th)
	err := t.fetchRegisters(th, target.AllRegisters)
	if err != nil {
		return err
	}
	t.host.ReinitFrameCache()
	return nil
}

func (mc *multiContext) describe(t *Tgt, ptid target.PTID) string {
	return fmt.Sprintf("CPU %d", ptid.Tid)
}

func (mc *multiContext) redundant(sw *switcher, id uint64) bool {
	return false
}

// apply resolves the task and checks register widths before touching the
// directory, so a failed switch leaves no thread behind. The registers are
// fetched eagerly because frames are unwound right after the switch returns.
func (mc *multiContext) apply(t *Tgt, task uint64) error {
	ctx, err := mc.eng.ResolveTask(task)
	if err != nil {
		return fmt.Errorf("%w: task %d: %w", target.ErrNoMapping, task, err)
	}
	err = checkWidths(t.host.Arch())
	if err != nil {
		return err
	}
	th, err := t.lookupOrCreate(t, ctx)
	if err != nil {
		return err
	}
	err = t.fetchRegisters(th, target.AllRegisters)
	if err != nil {
		return err
	}
	t.selectThread(t, th)
	t.host.ReinitFrameCache()
	t.switcher.last = task
	return nil
}

func (mc *multiContext) refresh(t *Tgt, ctx engine.ContextID) (err error) {
	th, err := t.lookupOrCreate(t, ctx)
	if err != nil {
		return err
	}
	prev, err := mc.eng.SetActiveContext(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_, rerr := mc.eng.SetActiveContext(prev)
		if rerr != nil && err == nil {
			err = rerr
		}
	}()
	return t.fetchRegisters(th, target.AllRegisters)
}
