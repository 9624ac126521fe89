package main

import (
	"fmt"
	"log/slog"

	"github.com/GabinFay/uncle-credit-p2p-lending/config"
	"github.com/GabinFay/uncle-credit-p2p-lending/core/events"
	"github.com/GabinFay/uncle-credit-p2p-lending/core/token"
	"github.com/GabinFay/uncle-credit-p2p-lending/core/types"
	nativecommon "github.com/GabinFay/uncle-credit-p2p-lending/native/common"
	"github.com/GabinFay/uncle-credit-p2p-lending/native/lending"
	"github.com/GabinFay/uncle-credit-p2p-lending/native/registry"
	"github.com/GabinFay/uncle-credit-p2p-lending/native/reputation"
	"github.com/GabinFay/uncle-credit-p2p-lending/observability/logging"
	"github.com/GabinFay/uncle-credit-p2p-lending/observability/metrics"
	"github.com/GabinFay/uncle-credit-p2p-lending/storage/kv"
)

// app bootstraps every module engine from config and wires them together for
// the lifetime of a single CLI invocation. Each invocation restores state
// from the configured store, performs the requested operation, then
// snapshots the result back before exiting — the CLI has no long-lived
// daemon process to hold state in memory between commands (mirrors the
// teacher's one-shot nhbctl tool rather than its long-running nhb node).
type app struct {
	cfg     *config.Config
	store   kv.Store
	pauses      *nativecommon.PauseController
	rateLimiter *nativecommon.AddressRateLimiter
	logger      *slog.Logger
	metrics     *metrics.LendingMetrics
	emitter     events.Emitter

	registryState    *registry.MemoryState
	reputationState  *reputation.MemoryState
	lendingState     *lending.MemoryState
	registryEngine   *registry.Engine
	reputationEngine *reputation.Engine
	lendingEngine    *lending.Engine

	tokens *token.Directory
	// memTokens indexes every MemToken this process created by id, so they
	// can be snapshotted back on close alongside the engine states.
	memTokens map[types.Address]*token.MemToken
}

func newApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := logging.Setup("lendingd", "")
	if cfg.LogLevel != "" {
		logger = logger.With("configuredLevel", cfg.LogLevel)
	}

	var store kv.Store
	if cfg.DataDir == "" || cfg.DataDir == "memory" {
		store = kv.NewMemoryStore()
	} else {
		store, err = kv.OpenLevelStore(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("open data dir %s: %w", cfg.DataDir, err)
		}
	}

	owner, err := cfg.Owner()
	if err != nil {
		return nil, err
	}
	lendingIdentity, err := cfg.LendingIdentity()
	if err != nil {
		return nil, err
	}
	reputationVault, err := cfg.ReputationVaultAddress()
	if err != nil {
		return nil, err
	}
	lendingVault, err := cfg.LendingVaultAddress()
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:         cfg,
		store:       store,
		pauses:      nativecommon.NewPauseController(),
		rateLimiter: nativecommon.NewAddressRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst),
		logger:      logger,
		metrics:     metrics.Lending(),
		emitter:     events.LogEmitter{Logger: logger},
		tokens:      token.NewDirectory(),
		memTokens:   make(map[types.Address]*token.MemToken),
	}

	a.registryState = registry.NewMemoryState()
	if _, err := a.registryState.Restore(store); err != nil {
		return nil, fmt.Errorf("restore registry state: %w", err)
	}
	a.reputationState = reputation.NewMemoryState()
	if _, err := a.reputationState.Restore(store); err != nil {
		return nil, fmt.Errorf("restore reputation state: %w", err)
	}
	a.lendingState = lending.NewMemoryState()
	if _, err := a.lendingState.Restore(store); err != nil {
		return nil, fmt.Errorf("restore lending state: %w", err)
	}

	a.registryEngine = registry.NewEngine(a.registryState, a.pauses, logger.With("module", "registry"))
	a.registryEngine.SetEmitter(a.emitter)
	a.registryEngine.SetMetrics(a.metrics)

	a.reputationEngine = reputation.NewEngine(a.reputationState, a.registryEngine, a.tokens, owner, reputationVault, a.pauses, logger.With("module", "reputation"))
	a.reputationEngine.SetEmitter(a.emitter)
	a.reputationEngine.SetMetrics(a.metrics)
	if err := a.reputationEngine.SetLendingAuthority(owner, lendingIdentity); err != nil {
		return nil, fmt.Errorf("set lending authority: %w", err)
	}

	a.lendingEngine = lending.NewEngine(a.lendingState, a.registryEngine, a.reputationEngine, a.tokens, lendingIdentity, lendingVault, a.pauses, logger.With("module", "lending"))
	a.lendingEngine.SetEmitter(a.emitter)
	a.lendingEngine.SetMetrics(a.metrics)

	return a, nil
}

// token returns (creating and registering if necessary) the MemToken
// collaborator backing id, restoring its balances from the store.
func (a *app) token(id types.Address) (*token.MemToken, error) {
	if t, ok := a.memTokens[id]; ok {
		return t, nil
	}
	t := token.NewMemToken()
	if _, err := t.Restore(a.store, id); err != nil {
		return nil, fmt.Errorf("restore token %s: %w", id.String(), err)
	}
	a.tokens.Register(id, t)
	a.memTokens[id] = t
	return t, nil
}

// close snapshots every module's state and token ledger back to the store
// and releases the underlying resources.
func (a *app) close() error {
	if err := a.registryState.Snapshot(a.store); err != nil {
		return fmt.Errorf("snapshot registry state: %w", err)
	}
	if err := a.reputationState.Snapshot(a.store); err != nil {
		return fmt.Errorf("snapshot reputation state: %w", err)
	}
	if err := a.lendingState.Snapshot(a.store); err != nil {
		return fmt.Errorf("snapshot lending state: %w", err)
	}
	for id, t := range a.memTokens {
		if err := t.Snapshot(a.store, id); err != nil {
			return fmt.Errorf("snapshot token %s: %w", id.String(), err)
		}
	}
	return a.store.Close()
}
