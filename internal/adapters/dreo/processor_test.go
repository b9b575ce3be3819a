package dreo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessPassThroughWithoutConfig(t *testing.T) {
	p := NewStateProcessor()

	raw := map[string]interface{}{"poweron": true, "mode": "auto"}
	normalized, err := p.Process(raw, nil)
	require.NoError(t, err)
	assert.Equal(t, raw, normalized)
}

func TestProcessSelectsAndRenames(t *testing.T) {
	p := NewStateProcessor()
	modelConfig := map[string]interface{}{
		"reported": []interface{}{
			map[string]interface{}{"key": "poweron", "name": "power"},
			map[string]interface{}{"key": "mode"},
			map[string]interface{}{"key": "absent_key", "name": "never_set"},
		},
	}

	raw := map[string]interface{}{"poweron": true, "mode": "auto", "internal_counter": 99}
	normalized, err := p.Process(raw, modelConfig)
	require.NoError(t, err)

	assert.Equal(t, map[string]interface{}{"power": true, "mode": "auto"}, normalized)
}

func TestProcessEmptyRawFails(t *testing.T) {
	p := NewStateProcessor()

	_, err := p.Process(nil, nil)
	require.Error(t, err)
	assert.True(t, IsDataShapeError(err))

	_, err = p.Process(map[string]interface{}{}, nil)
	assert.True(t, IsDataShapeError(err))
}

func TestProcessNoConfiguredAttributesPresentFails(t *testing.T) {
	p := NewStateProcessor()
	modelConfig := map[string]interface{}{
		"reported": []interface{}{
			map[string]interface{}{"key": "poweron"},
		},
	}

	_, err := p.Process(map[string]interface{}{"unrelated": 1}, modelConfig)
	require.Error(t, err)
	assert.True(t, IsDataShapeError(err))
}

func TestProcessIgnoresMalformedConfigEntries(t *testing.T) {
	p := NewStateProcessor()
	modelConfig := map[string]interface{}{
		"reported": []interface{}{
			"not a map",
			map[string]interface{}{"name": "missing key"},
			map[string]interface{}{"key": "mode"},
		},
	}

	normalized, err := p.Process(map[string]interface{}{"mode": "auto"}, modelConfig)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"mode": "auto"}, normalized)
}

func TestLoadModelConfigs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.yaml")
	content := `
DR-HTF008S:
  reported:
    - key: poweron
      name: power
    - key: mode
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	set, err := LoadModelConfigs(path)
	require.NoError(t, err)

	cfg := set.For("DR-HTF008S")
	require.NotNil(t, cfg)
	assert.Nil(t, set.For("UNKNOWN-MODEL"))

	// The YAML shape feeds straight into the processor
	normalized, err := NewStateProcessor().Process(
		map[string]interface{}{"poweron": true, "mode": "auto", "extra": 1}, cfg)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"power": true, "mode": "auto"}, normalized)
}

func TestLoadModelConfigsMissingFile(t *testing.T) {
	set, err := LoadModelConfigs(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Empty(t, set)
}
