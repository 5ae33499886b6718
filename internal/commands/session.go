package commands

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/spf13/pflag"

	"github.com/wnxd/crashdbg/engine/snapshot"
	"github.com/wnxd/crashdbg/host"
	"github.com/wnxd/crashdbg/target"
	"github.com/wnxd/crashdbg/target/crash"
)

type sessionConfig struct {
	Snapshot string
	Mode     string
	Pid      int
}

var session sessionConfig

func addSessionFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&session.Snapshot, "snapshot", "s", "", "Path to the YAML dump snapshot.")
	fs.StringVar(&session.Mode, "mode", "auto", "Context mode: 'auto', 'single' or 'multi'.")
	fs.IntVar(&session.Pid, "pid", target.DefaultPid, "Process id reported for every thread.")
}

type Session struct {
	Engine *snapshot.Engine
	Host   *host.Host
	Target target.Target
}

func openSession(log logr.Logger) (*Session, error) {
	if session.Snapshot == "" {
		return nil, fmt.Errorf("--snapshot is required")
	}
	mode, err := target.ParseMode(session.Mode)
	if err != nil {
		return nil, fmt.Errorf("invalid --mode %q: %w", session.Mode, err)
	}
	eng, err := snapshot.Open(session.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("could not load snapshot: %w", err)
	}
	h := host.New(eng.Arch(), log)
	tgt, err := crash.New(eng, h,
		target.WithLogger(log),
		target.WithMode(mode),
		target.WithPid(session.Pid),
	)
	if err != nil {
		return nil, fmt.Errorf("could not open crash target: %w", err)
	}
	log.V(1).Info("session opened", "snapshot", session.Snapshot, "mode", tgt.Mode().String(), "arch", eng.Arch().Machine().String())
	return &Session{Engine: eng, Host: h, Target: tgt}, nil
}

func (s *Session) Close() error {
	return s.Target.Close()
}
