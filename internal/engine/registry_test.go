package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/trackrunner/api/schemas"
	"github.com/xkilldash9x/trackrunner/internal/config"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{DamcoTrackingName}, r.Names())

	f, err := r.Lookup(DamcoTrackingName)
	require.NoError(t, err)
	eng := f(config.NewDefaultConfig(), zaptest.NewLogger(t))
	assert.Equal(t, DamcoTrackingName, eng.Name())
}

func TestRegistryLookupUnknown(t *testing.T) {
	r := DefaultRegistry()
	f, err := r.Lookup("damco_tracking_msc")
	assert.Nil(t, f)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownScript)
	assert.Contains(t, err.Error(), "damco_tracking_msc")
	assert.Contains(t, err.Error(), DamcoTrackingName, "lists what is available")
}

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()
	factory := func(*config.Config, *zap.Logger) schemas.Engine { return nil }

	require.NoError(t, r.Register("b_script", factory))
	require.NoError(t, r.Register("a_script", factory))
	assert.Equal(t, []string{"a_script", "b_script"}, r.Names())

	assert.Error(t, r.Register("a_script", factory), "duplicates are rejected")
	assert.Error(t, r.Register("  ", factory))
	assert.Error(t, r.Register("c_script", nil))
	assert.Panics(t, func() { r.MustRegister("a_script", factory) })
}
