package target

import (
	"errors"

	"github.com/wnxd/crashdbg/engine"
	"github.com/wnxd/crashdbg/target"
)

// contextStrategy maps debugger threads onto engine contexts. It is chosen
// once per target.
type contextStrategy interface {
	mode() target.Mode
	init(t *Tgt) error
	describe(t *Tgt, ptid target.PTID) string
	// redundant reports whether a notification for id can be dropped without
	// touching any cache.
	redundant(sw *switcher, id uint64) bool
	apply(t *Tgt, id uint64) error
	refresh(t *Tgt, ctx engine.ContextID) error
}

func selectStrategy(eng engine.Engine, mode target.Mode) (contextStrategy, error) {
	cpu, isCPU := eng.(engine.CPUEngine)
	switch mode {
	case target.Mode_Single:
		return new(singleContext), nil
	case target.Mode_Multi:
		if !isCPU {
			return nil, engine.ErrTopologyUnsupported
		}
		count, err := cpu.ContextCount()
		if err != nil {
			return nil, err
		}
		return newMultiContext(cpu, count)
	case target.Mode_Auto:
		if !isCPU {
			return new(singleContext), nil
		}
		count, err := cpu.ContextCount()
		if errors.Is(err, engine.ErrTopologyUnsupported) {
			return new(singleContext), nil
		} else if err != nil {
			return nil, err
		}
		return newMultiContext(cpu, count)
	}
	return nil, target.ErrArgumentInvalid
}
