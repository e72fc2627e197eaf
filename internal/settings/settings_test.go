package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenStore struct{}

func (brokenStore) GetBool(context.Context, string) (bool, bool, error) {
	return false, false, errors.New("unavailable")
}

func (brokenStore) SetBool(context.Context, string, bool) error {
	return errors.New("unavailable")
}

func TestEnabledDefaultsToTrue(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	enabled, err := Enabled(ctx, m)
	require.NoError(t, err)
	assert.True(t, enabled)

	require.NoError(t, SetEnabled(ctx, m, false))
	enabled, err = Enabled(ctx, m)
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestEnsureDefaultsDoesNotOverride(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, EnsureDefaults(ctx, m))
	v, ok, _ := m.GetBool(ctx, KeyExtensionEnabled)
	assert.True(t, ok)
	assert.True(t, v)

	require.NoError(t, SetEnabled(ctx, m, false))
	require.NoError(t, EnsureDefaults(ctx, m))
	v, _, _ = m.GetBool(ctx, KeyExtensionEnabled)
	assert.False(t, v)
}

func TestEnabledOnStoreFailure(t *testing.T) {
	enabled, err := Enabled(context.Background(), brokenStore{})
	assert.Error(t, err)
	assert.True(t, enabled)

	assert.Error(t, EnsureDefaults(context.Background(), brokenStore{}))
}
