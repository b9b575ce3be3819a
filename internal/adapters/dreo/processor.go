package dreo

// DataProcessor converts a raw reported payload into the normalized
// attribute set consumed by the entity layer. Implementations must be
// pure: a failed call leaves no observable state behind.
type DataProcessor interface {
	Process(raw map[string]interface{}, modelConfig map[string]interface{}) (map[string]interface{}, error)
}

// StateProcessor is the default processor. The model config's
// "reported" list selects and renames raw attributes; without one, the
// raw payload passes through unchanged.
type StateProcessor struct{}

// NewStateProcessor creates the default processor.
func NewStateProcessor() *StateProcessor {
	return &StateProcessor{}
}

// Process translates raw state using the model config. It needs the
// full attribute set to produce a coherent result, which is why push
// deltas are merged onto a retained snapshot before reprocessing.
func (p *StateProcessor) Process(raw map[string]interface{}, modelConfig map[string]interface{}) (map[string]interface{}, error) {
	if len(raw) == 0 {
		return nil, &DataShapeError{Reason: "empty raw state"}
	}

	specs := reportedSpecs(modelConfig)
	if specs == nil {
		// Unknown model: expose the raw attributes as-is
		normalized := make(map[string]interface{}, len(raw))
		for k, v := range raw {
			normalized[k] = v
		}
		return normalized, nil
	}

	normalized := make(map[string]interface{}, len(specs))
	for _, spec := range specs {
		value, ok := raw[spec.key]
		if !ok {
			continue
		}
		normalized[spec.name] = value
	}

	if len(normalized) == 0 {
		return nil, &DataShapeError{Reason: "no configured attributes present in raw state"}
	}
	return normalized, nil
}

type attributeSpec struct {
	key  string
	name string
}

// reportedSpecs extracts the attribute list from a model config. The
// same shape arrives from the device-list payload (JSON) and the
// fallback model file (YAML).
func reportedSpecs(modelConfig map[string]interface{}) []attributeSpec {
	if modelConfig == nil {
		return nil
	}
	entries, ok := modelConfig["reported"].([]interface{})
	if !ok {
		return nil
	}

	specs := make([]attributeSpec, 0, len(entries))
	for _, entry := range entries {
		m, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		key, _ := m["key"].(string)
		if key == "" {
			continue
		}
		name, _ := m["name"].(string)
		if name == "" {
			name = key
		}
		specs = append(specs, attributeSpec{key: key, name: name})
	}

	if len(specs) == 0 {
		return nil
	}
	return specs
}
