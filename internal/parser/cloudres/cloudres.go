// Package cloudres holds the per-cloud, per-resource-type handler tables
// shared by every IaC parser. A handler maps a resource kind's raw
// attributes (already normalized to a plain map by the caller's format, be
// it HCL or YAML) to the canonical size string and metadata that the
// pricing catalog and cost simulator key on. Handlers never fail: an
// unknown type is simply absent from the table and the resource is
// skipped by the caller.
package cloudres

import (
	"fmt"

	"github.com/finopsguard/guardrail/internal/model"
)

// Attrs is the normalized attribute bag a parser hands to a handler. Keys
// are the IaC-native attribute names; values are already unwrapped to
// plain Go scalars/maps/slices.
type Attrs map[string]interface{}

// String returns the string form of attrs[key], or def if absent or not a
// string.
func (a Attrs) String(key, def string) string {
	if v, ok := a[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return def
}

// Int returns the int form of attrs[key], or def if absent or not
// numeric.
func (a Attrs) Int(key string, def int) int {
	if v, ok := a[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case int64:
			return int(n)
		case float64:
			return int(n)
		}
	}
	return def
}

// Bool returns the bool form of attrs[key], or def if absent or not a bool.
func (a Attrs) Bool(key string, def bool) bool {
	if v, ok := a[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Handler converts a resource kind's attributes to a canonical size and
// metadata, and contributes the "kind tag" used to compose the resource's
// ID.
type Handler func(attrs Attrs) (size string, metadata map[string]interface{}, kindTag string)

var registry = map[string]Handler{}

func register(resourceType string, h Handler) {
	registry[resourceType] = h
}

// Alias registers an additional resource type name that resolves to the
// same handler as an existing one. Build stamps the alias name itself, not
// the existing one, as the resulting resource's Type.
func alias(newType, existingType string) {
	if h, ok := registry[existingType]; ok {
		registry[newType] = h
	}
}

// Build dispatches resourceType to its handler and assembles a
// CanonicalResource. It returns nil if resourceType is not in the table —
// the resource kind is outside the priced universe and must be silently
// skipped by the caller, per the parser contract.
func Build(resourceType, name, region string, count int, attrs Attrs, tags map[string]string) *model.CanonicalResource {
	h, ok := registry[resourceType]
	if !ok {
		return nil
	}
	size, metadata, kindTag := h(attrs)
	id := fmt.Sprintf("%s-%s-%s", name, kindTag, region)
	return &model.CanonicalResource{
		ID:       id,
		Type:     resourceType,
		Name:     name,
		Region:   region,
		Size:     size,
		Count:    count,
		Tags:     tags,
		Metadata: metadata,
	}
}

// Known reports whether resourceType has a registered handler, without
// building a resource. Parsers use this to decide whether to even attempt
// attribute extraction for a block.
func Known(resourceType string) bool {
	_, ok := registry[resourceType]
	return ok
}
