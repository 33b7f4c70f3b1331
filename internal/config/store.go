package config

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrAlreadyInitialized is returned by Store.Init after the first successful
// call. It is informational: the store keeps its current configuration.
var ErrAlreadyInitialized = errors.New("configuration already initialized")

// Store holds the configuration for one application instance. It starts with
// defaults and accepts exactly one Init, after which it is sealed.
type Store struct {
	mu        sync.RWMutex
	cfg       Config
	sealed    bool
	listeners []func(Config)
	logger    *slog.Logger
}

// NewStore creates a store holding the default configuration.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		cfg:    *DefaultConfig(),
		logger: logger,
	}
}

// Get returns a copy of the current configuration.
func (s *Store) Get() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Initialized reports whether Init has succeeded.
func (s *Store) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sealed
}

// OnInit registers fn to be called with the merged configuration after a
// successful Init.
func (s *Store) OnInit(fn func(Config)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Init merges p over the defaults and seals the store.
// A second call logs a warning, changes nothing and returns
// ErrAlreadyInitialized. An invalid merge leaves the store unsealed.
func (s *Store) Init(p Partial) error {
	s.mu.Lock()
	if s.sealed {
		s.mu.Unlock()
		s.logger.Warn("toast configuration already initialized, ignoring")
		return ErrAlreadyInitialized
	}

	next := p.Apply(s.cfg)
	if err := next.Validate(); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("invalid configuration: %w", err)
	}

	s.cfg = next
	s.sealed = true
	listeners := make([]func(Config), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(next)
	}

	s.logger.Debug("toast configuration initialized",
		"mobile_breakpoint", next.Breakpoints.Mobile,
		"animation", next.Animation.Duration.Duration(),
		"default_duration", next.Toasts.DefaultDuration.Duration(),
		"gap", next.Toasts.Gap,
	)
	return nil
}
