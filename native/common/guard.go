package common

import (
	"errors"
	"sync"
)

var ErrModulePaused = errors.New("module paused")

type PauseView interface {
	IsPaused(module string) bool
}

func Guard(p PauseView, module string) error {
	if p == nil || module == "" {
		return nil
	}
	if p.IsPaused(module) {
		return ErrModulePaused
	}
	return nil
}

// PauseController is a writable PauseView, the per-module kill switch an
// operator toggles from the CLI (pause registry / reputation / lending
// independently, e.g. during an incident) without needing a governance
// proposal pipeline. Pause flags live only in memory: they are not written
// to the kv store, so a pause set by one lendingd invocation does not carry
// over to the next.
type PauseController struct {
	mu     sync.RWMutex
	paused map[string]bool
}

// NewPauseController constructs a controller with every module unpaused.
func NewPauseController() *PauseController {
	return &PauseController{paused: make(map[string]bool)}
}

func (c *PauseController) IsPaused(module string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.paused[module]
}

// SetPaused pauses or unpauses module.
func (c *PauseController) SetPaused(module string, paused bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paused[module] = paused
}
