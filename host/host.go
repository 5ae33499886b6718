// Package host is a minimal in-memory debugger host: a thread list, one
// register cache per thread and a frame cache that only counts rebuilds.
package host

import (
	"fmt"
	"sync"

	"github.com/go-logr/logr"

	"github.com/wnxd/crashdbg/target"
)

type Host struct {
	mu          sync.Mutex
	arch        target.Arch
	log         logr.Logger
	threads     []target.Thread
	caches      map[target.PTID]*RegCache
	active      target.Thread
	frameGen    uint64
	invalidates uint64
}

func New(arch target.Arch, log logr.Logger) *Host {
	return &Host{
		arch:   arch,
		log:    log.WithName("host"),
		caches: make(map[target.PTID]*RegCache),
	}
}

func (h *Host) Arch() target.Arch {
	return h.arch
}

func (h *Host) AddThread(th target.Thread) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	ptid := th.PTID()
	if _, ok := h.caches[ptid]; ok {
		return fmt.Errorf("thread %v already added", ptid)
	}
	h.caches[ptid] = newRegCache(h.arch)
	h.threads = append(h.threads, th)
	h.log.V(1).Info("new thread", "ptid", ptid.String())
	return nil
}

func (h *Host) cache(th target.Thread) *RegCache {
	h.mu.Lock()
	defer h.mu.Unlock()
	ptid := th.PTID()
	rc, ok := h.caches[ptid]
	if !ok {
		rc = newRegCache(h.arch)
		h.caches[ptid] = rc
	}
	return rc
}

func (h *Host) RegisterCache(th target.Thread) target.RegisterCache {
	return h.cache(th)
}

// Registers returns the concrete cache of th for inspection.
func (h *Host) Registers(th target.Thread) *RegCache {
	return h.cache(th)
}

func (h *Host) SwitchToThread(th target.Thread) {
	h.mu.Lock()
	h.active = th
	h.mu.Unlock()
}

func (h *Host) InvalidateRegisters() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, rc := range h.caches {
		rc.Invalidate()
	}
	h.invalidates++
}

func (h *Host) ReinitFrameCache() {
	h.mu.Lock()
	h.frameGen++
	h.mu.Unlock()
}

func (h *Host) Threads() []target.Thread {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]target.Thread(nil), h.threads...)
}

func (h *Host) ActiveThread() target.Thread {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.active
}

// FrameGeneration counts frame cache rebuilds.
func (h *Host) FrameGeneration() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frameGen
}

func (h *Host) Invalidations() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.invalidates
}
