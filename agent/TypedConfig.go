package agent

import (
	"fmt"

	"github.com/samuelfneumann/onpolicy/internal/typedjson"
)

// TypedConfig pairs a Config with its Type so that it can be decoded
// from JSON into its registered concrete type
type TypedConfig struct {
	Type
	Config
}

// NewTypedConfig returns c paired with its Type
func NewTypedConfig(c Config) TypedConfig {
	return TypedConfig{Type: c.Type(), Config: c}
}

// UnmarshalJSON implements the json.Unmarshaller interface
func (t *TypedConfig) UnmarshalJSON(data []byte) error {
	config, typeName, err := typedjson.Decode(data, registeredTypes)
	if err != nil {
		return fmt.Errorf("unmarshalJSON: agent config: %v", err)
	}

	t.Type = Type(typeName)
	t.Config = config.(Config)
	return nil
}
