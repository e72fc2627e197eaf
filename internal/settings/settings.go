// Package settings persists the handful of process-wide flags, most
// importantly whether the consent agent is enabled at all.
package settings

import (
	"context"
	"sync"
)

const KeyExtensionEnabled = "extensionEnabled"

// Store is a boolean key-value store. ok is false when key was never set.
type Store interface {
	GetBool(ctx context.Context, key string) (value bool, ok bool, err error)
	SetBool(ctx context.Context, key string, value bool) error
}

// Enabled reads the enable flag. Unset means enabled.
func Enabled(ctx context.Context, s Store) (bool, error) {
	v, ok, err := s.GetBool(ctx, KeyExtensionEnabled)
	if err != nil {
		return true, err
	}
	if !ok {
		return true, nil
	}
	return v, nil
}

func SetEnabled(ctx context.Context, s Store, enabled bool) error {
	return s.SetBool(ctx, KeyExtensionEnabled, enabled)
}

// EnsureDefaults writes enabled=true when the flag was never set.
func EnsureDefaults(ctx context.Context, s Store) error {
	_, ok, err := s.GetBool(ctx, KeyExtensionEnabled)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	return s.SetBool(ctx, KeyExtensionEnabled, true)
}

type Memory struct {
	mu     sync.RWMutex
	values map[string]bool
}

func NewMemory() *Memory {
	return &Memory{values: make(map[string]bool)}
}

func (m *Memory) GetBool(_ context.Context, key string) (bool, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Memory) SetBool(_ context.Context, key string, value bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}
