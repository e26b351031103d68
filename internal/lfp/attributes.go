package lfp

import (
	"fmt"

	"github.com/floodlink-io/floodlink/internal/parfile"
	"github.com/floodlink-io/floodlink/pkg/bmi"
)

// The par format has no sections, so every attribute lives under one
// synthetic "general" namespace: whatever prefix a caller supplies is
// stripped and replaced before lookup.

// AttributeNames returns the configured attribute names, qualified with
// the synthetic namespace, in file order.
func (m *LFP) AttributeNames() ([]string, error) {
	if m.config == nil {
		return nil, bmi.ErrNotConfigured
	}
	keys := m.config.Keys()
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = parfile.Qualify(k)
	}
	return names, nil
}

// AttributeValue returns the value of the named attribute as a string.
func (m *LFP) AttributeValue(name string) (string, error) {
	if m.config == nil {
		return "", bmi.ErrNotConfigured
	}
	key := parfile.Key(name)
	m.logger.Debug("get attribute", "name", parfile.Qualify(key))
	v, ok := m.config.Get(key)
	if !ok {
		return "", fmt.Errorf("attribute %s not found", parfile.Qualify(key))
	}
	return v, nil
}

// SetAttributeValue stores value under the named attribute. The value is
// stored verbatim as a string; numeric or date interpretation is the
// caller's concern.
func (m *LFP) SetAttributeValue(name, value string) error {
	if m.config == nil {
		return bmi.ErrNotConfigured
	}
	key := parfile.Key(name)
	m.logger.Debug("set attribute", "name", parfile.Qualify(key), "value", value)
	m.config.Set(key, value)
	return nil
}
