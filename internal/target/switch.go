package target

import (
	"fmt"

	"github.com/wnxd/crashdbg/engine"
	"github.com/wnxd/crashdbg/target"
)

type switcher struct {
	state    target.SwitchState
	last     uint64
	inflight uint64
}

func (sw *switcher) ctor() {
	sw.state = target.SwitchState_Idle
	sw.last = 0
	sw.inflight = 0
}

// change runs one switch notification. Notifications that arrive while a
// switch is running are only accepted when they name the context already
// being switched to.
func (sw *switcher) change(t *Tgt, id uint64) error {
	if sw.state == target.SwitchState_Switching {
		if id == sw.inflight {
			return nil
		}
		return fmt.Errorf("%w: %d while switching to %d", target.ErrSwitchInProgress, id, sw.inflight)
	}
	if t.strategy.redundant(sw, id) {
		return nil
	}
	sw.state = target.SwitchState_Switching
	sw.inflight = id
	defer func() {
		sw.state = target.SwitchState_Idle
	}()
	err := t.strategy.apply(t, id)
	if err != nil {
		t.log.V(1).Info("context switch failed", "id", id, "error", err.Error())
		return err
	}
	t.log.V(1).Info("context switched", "id", id)
	return nil
}

func (t *Tgt) ChangeThreadContext(id uint64) error {
	if t.closed {
		return target.ErrClosed
	}
	return t.switcher.change(t, id)
}

func (t *Tgt) RefreshContext(ctx engine.ContextID) error {
	if t.closed {
		return target.ErrClosed
	}
	err := t.strategy.refresh(t, ctx)
	if err != nil {
		return err
	}
	t.log.V(1).Info("context refreshed", "context", ctx)
	return nil
}

// ContextReady is the best-effort form of RefreshContext used by engines
// once a context has been fully populated.
func (t *Tgt) ContextReady(ctx engine.ContextID) {
	err := t.RefreshContext(ctx)
	if err != nil {
		t.log.Error(err, "context refresh failed", "context", ctx)
	}
}

func (t *Tgt) SwitchState() target.SwitchState {
	return t.switcher.state
}
