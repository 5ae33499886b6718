package target

import (
	"github.com/go-logr/logr"

	"github.com/wnxd/crashdbg/engine"
	"github.com/wnxd/crashdbg/target"
)

var crashInfo = target.Info{
	Shortname: "crash",
	Longname:  "Local core dump file",
	Doc:       "Use a built-in crash instance as a target.",
}

type Tgt struct {
	eng      engine.Engine
	host     target.Host
	cfg      target.Config
	log      logr.Logger
	strategy contextStrategy
	closed   bool
	threadManager
	switcher
}

func NewCrashTarget(eng engine.Engine, host target.Host, opts ...target.Option) (target.Target, error) {
	t := new(Tgt)
	err := t.Init(eng, host, target.NewConfig(opts...))
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tgt) Init(eng engine.Engine, host target.Host, cfg target.Config) error {
	if eng == nil || host == nil {
		return target.ErrArgumentInvalid
	}
	t.eng = eng
	t.host = host
	t.cfg = cfg
	t.log = cfg.Logger.WithName("crash")
	t.threadManager.ctor()
	strategy, err := selectStrategy(eng, cfg.Mode)
	if err != nil {
		return err
	}
	t.strategy = strategy
	t.switcher.ctor()
	err = strategy.init(t)
	if err != nil {
		t.threadManager.dtor()
		return err
	}
	t.log.V(1).Info("target initialized", "mode", strategy.mode(), "threads", len(t.threadManager.order))
	return nil
}

func (t *Tgt) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	t.threadManager.dtor()
	return nil
}

func (t *Tgt) Info() target.Info {
	return crashInfo
}

func (t *Tgt) Mode() target.Mode {
	return t.strategy.mode()
}

func (t *Tgt) HasAllMemory() bool { return true }
func (t *Tgt) HasMemory() bool    { return true }
func (t *Tgt) HasStack() bool     { return true }
func (t *Tgt) HasRegisters() bool { return true }

// ThreadAlive is always true: contexts never exit within a session.
func (t *Tgt) ThreadAlive(ptid target.PTID) bool {
	return true
}

func (t *Tgt) PidToStr(ptid target.PTID) string {
	return t.strategy.describe(t, ptid)
}
