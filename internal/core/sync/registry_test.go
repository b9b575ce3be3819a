package sync

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRegisterFirstWins(t *testing.T) {
	r := NewRegistry(nil, logrus.New())

	first := newTestCoordinator(&stubFetcher{}, nil)
	second := newTestCoordinator(&stubFetcher{}, nil)

	assert.True(t, r.Register(first))
	assert.False(t, r.Register(second), "entries are created once and never replaced")

	got, ok := r.Get("ABC123")
	require.True(t, ok)
	assert.Same(t, first, got)
	assert.Equal(t, 1, r.Len())
}

func TestRegistryGetUnknown(t *testing.T) {
	r := NewRegistry(nil, logrus.New())
	_, ok := r.Get("UNKNOWN")
	assert.False(t, ok)
}

func TestRouteToKnownDevice(t *testing.T) {
	r := NewRegistry(nil, logrus.New())
	c := newTestCoordinator(&stubFetcher{}, nil)
	require.NoError(t, c.Seed(context.Background(), map[string]interface{}{
		"power": false, "mode": "auto",
	}))
	r.Register(c)

	r.Route("ABC123", map[string]interface{}{"power": true})

	assert.Equal(t, map[string]interface{}{"power": true, "mode": "auto"}, c.CurrentState())
}

func TestRouteToUnknownDeviceIsSilentNoOp(t *testing.T) {
	r := NewRegistry(nil, logrus.New())
	c := newTestCoordinator(&stubFetcher{}, nil)
	require.NoError(t, c.Seed(context.Background(), map[string]interface{}{"power": false}))
	r.Register(c)

	r.Route("UNKNOWN", map[string]interface{}{"power": true})

	assert.Equal(t, map[string]interface{}{"power": false}, c.CurrentState(),
		"a frame for a foreign device must not touch any coordinator")
}
