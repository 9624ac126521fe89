package registry

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	coreerrors "github.com/GabinFay/uncle-credit-p2p-lending/core/errors"
	"github.com/GabinFay/uncle-credit-p2p-lending/core/events"
	"github.com/GabinFay/uncle-credit-p2p-lending/core/types"
	nativecommon "github.com/GabinFay/uncle-credit-p2p-lending/native/common"
	"github.com/GabinFay/uncle-credit-p2p-lending/observability/metrics"
)

// Engine implements the UserRegistry operations of §4.1.
type Engine struct {
	state   state
	pauses  nativecommon.PauseView
	emitter events.Emitter
	guard   nativecommon.ReentrancyGuard
	logger  *slog.Logger
	nowFn   func() int64
	metrics *metrics.LendingMetrics
}

// ModuleName is the identifier passed to PauseView.IsPaused for this module.
const ModuleName = "registry"

// NewEngine constructs an Engine bound to the given storage backend. pauses
// and logger may be nil; emitter defaults to events.NoopEmitter.
func NewEngine(st state, pauses nativecommon.PauseView, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		state:   st,
		pauses:  pauses,
		emitter: events.NoopEmitter{},
		logger:  logger,
		nowFn:   func() int64 { return time.Now().Unix() },
	}
}

// SetEmitter installs the event sink. Not safe to call concurrently with
// engine operations.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	e.emitter = emitter
}

// SetMetrics installs the Prometheus instrumentation handle. Leaving it
// unset is safe; all recorder methods are nil-receiver tolerant.
func (e *Engine) SetMetrics(m *metrics.LendingMetrics) {
	e.metrics = m
}

// SetNowFunc overrides the clock; tests use this for deterministic
// registration timestamps.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		now = func() int64 { return time.Now().Unix() }
	}
	e.nowFn = now
}

func validateName(name string) error {
	if len(name) < MinNameLength || len(name) > MaxNameLength {
		return fmt.Errorf("%w: name must be %d..=%d UTF-8 bytes", coreerrors.ErrNameInvalid, MinNameLength, MaxNameLength)
	}
	return nil
}

// Register performs the one-shot registration of caller under name (§4.1).
func (e *Engine) Register(caller types.Address, name string) error {
	release, err := e.guard.Enter()
	if err != nil {
		return err
	}
	defer release()

	corrID := uuid.NewString()
	if err := nativecommon.Guard(e.pauses, ModuleName); err != nil {
		return err
	}
	if err := validateName(name); err != nil {
		e.logger.Warn("registry.register rejected", "correlationId", corrID, "caller", caller.String(), "reason", err)
		return err
	}

	existing, ok, err := e.state.GetProfile(caller)
	if err != nil {
		return err
	}
	if ok && existing.Registered {
		return fmt.Errorf("%w: %s", coreerrors.ErrAlreadyRegistered, caller.String())
	}

	now := e.nowFn()
	profile := &UserProfile{Registered: true, Name: name, RegistrationTime: now}
	if err := e.state.PutProfile(caller, profile); err != nil {
		return err
	}
	if err := e.state.AppendRegistrationIndex(caller); err != nil {
		return err
	}

	e.emitter.Emit(events.UserRegistered{Address: caller, Name: name, RegistrationTime: now})
	e.metrics.IncUsersRegistered()
	e.logger.Info("registry.register", "correlationId", corrID, "caller", caller.String(), "name", name)
	return nil
}

// UpdateName mutates the display name of an already-registered caller
// (§4.1).
func (e *Engine) UpdateName(caller types.Address, name string) error {
	release, err := e.guard.Enter()
	if err != nil {
		return err
	}
	defer release()

	corrID := uuid.NewString()
	if err := nativecommon.Guard(e.pauses, ModuleName); err != nil {
		return err
	}
	if err := validateName(name); err != nil {
		e.logger.Warn("registry.updateName rejected", "correlationId", corrID, "caller", caller.String(), "reason", err)
		return err
	}

	profile, ok, err := e.state.GetProfile(caller)
	if err != nil {
		return err
	}
	if !ok || !profile.Registered {
		return fmt.Errorf("%w: %s", coreerrors.ErrNotRegistered, caller.String())
	}

	profile.Name = name
	if err := e.state.PutProfile(caller, profile); err != nil {
		return err
	}

	e.emitter.Emit(events.UserProfileUpdated{Address: caller, Name: name})
	e.logger.Info("registry.updateName", "correlationId", corrID, "caller", caller.String(), "name", name)
	return nil
}

// IsRegistered reports whether addr has completed registration.
func (e *Engine) IsRegistered(addr types.Address) (bool, error) {
	profile, ok, err := e.state.GetProfile(addr)
	if err != nil || !ok {
		return false, err
	}
	return profile.Registered, nil
}

// Profile returns a defensive copy of addr's profile, or ok=false if unset.
func (e *Engine) Profile(addr types.Address) (*UserProfile, bool, error) {
	return e.state.GetProfile(addr)
}

// RegisteredAtIndex returns the address registered at position idx in
// registration order (0-indexed).
func (e *Engine) RegisteredAtIndex(idx uint64) (types.Address, bool, error) {
	return e.state.RegisteredAtIndex(idx)
}

// TotalRegistered returns the number of accounts ever registered.
func (e *Engine) TotalRegistered() (uint64, error) {
	return e.state.TotalRegistered()
}
