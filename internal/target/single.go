package target

import (
	"fmt"

	"github.com/wnxd/crashdbg/engine"
	"github.com/wnxd/crashdbg/target"
)

// singleContext exposes exactly one thread whose registers follow whatever
// task the engine currently has selected.
type singleContext struct{}

func (singleContext) mode() target.Mode {
	return target.Mode_Single
}

func (singleContext) init(t *Tgt) error {
	if te, ok := t.eng.(engine.TaskEngine); ok {
		te.SetTaskContext(true)
	}
	th, err := t.add(t, 0)
	if err != nil {
		return err
	}
	t.selectThread(t, th)
	err = t.fetchRegisters(th, target.AllRegisters)
	if err != nil {
		return err
	}
	t.host.ReinitFrameCache()
	return nil
}

// describe asks the engine every time; the current task can change between
// calls.
func (singleContext) describe(t *Tgt, ptid target.PTID) string {
	id, err := t.eng.CurrentIdentity()
	if err != nil {
		t.log.V(2).Info("task identity unavailable", "error", err.Error())
		return fmt.Sprintf("process %d", ptid.Pid)
	}
	return fmt.Sprintf("%d %s", id.PID, id.Comm)
}

func (singleContext) redundant(sw *switcher, id uint64) bool {
	return id == sw.last
}

func (singleContext) apply(t *Tgt, id uint64) error {
	t.switcher.last = id
	t.host.InvalidateRegisters()
	t.host.ReinitFrameCache()
	return nil
}

func (singleContext) refresh(t *Tgt, ctx engine.ContextID) error {
	return target.ErrNotSupported
}
