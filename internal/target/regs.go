package target

import (
	"github.com/wnxd/crashdbg/target"
)

func (t *Tgt) fetchRegisters(th *thread, reg int) error {
	arch := t.host.Arch()
	cache := t.host.RegisterCache(th)
	if reg != target.AllRegisters {
		if reg < 0 || reg >= arch.NumRegs() {
			return target.ErrRegisterInvalid
		}
		return t.fetchRegister(th, arch, cache, reg)
	}
	for r := 0; r < arch.NumRegs(); r++ {
		err := t.fetchRegister(th, arch, cache, r)
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *Tgt) fetchRegister(th *thread, arch target.Arch, cache target.RegisterCache, reg int) error {
	var buf regBuffer
	val, err := view(&buf, reg, arch.RegSize(reg))
	if err != nil {
		return err
	}
	name := arch.RegName(reg)
	err = t.eng.GetRegister(th.ctx, reg, name, val)
	if err != nil {
		t.log.V(2).Info("register unavailable", "context", th.ctx, "reg", name, "error", err.Error())
		cache.SupplyUnknown(reg)
		return nil
	}
	cache.Supply(reg, val)
	return nil
}

func (t *Tgt) FetchRegisters(th target.Thread, reg int) error {
	if t.closed {
		return target.ErrClosed
	}
	own, err := t.ownThread(th)
	if err != nil {
		return err
	}
	return t.fetchRegisters(own, reg)
}
