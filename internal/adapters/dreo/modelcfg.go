package dreo

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ModelConfigSet maps a device model to its attribute config. It backs
// up the device-list payload for models whose list entry arrives
// without a controlsConf block.
type ModelConfigSet map[string]map[string]interface{}

// LoadModelConfigs reads fallback model configs from a YAML file. A
// missing file is not an error; it just means no fallbacks.
func LoadModelConfigs(path string) (ModelConfigSet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ModelConfigSet{}, nil
		}
		return nil, fmt.Errorf("failed to read model configs: %w", err)
	}

	var set ModelConfigSet
	if err := yaml.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("failed to parse model configs: %w", err)
	}
	if set == nil {
		set = ModelConfigSet{}
	}
	return set, nil
}

// For returns the config for a model, or nil when unknown.
func (s ModelConfigSet) For(model string) map[string]interface{} {
	return s[model]
}
