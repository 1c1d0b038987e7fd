package repository

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultNamespace is the cache-key namespace used when an entity type does
// not declare one.
const DefaultNamespace = "default"

// keyBuilder derives cache keys for a single entity type. Key generation is
// a pure function of the metadata and the id/suffix inputs, so identical
// calls always produce identical keys.
type keyBuilder struct {
	namespace string
	name      string
}

func newKeyBuilder(meta Metadata) keyBuilder {
	ns := meta.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}
	return keyBuilder{
		namespace: strings.ToLower(ns),
		name:      strings.ToLower(meta.Name),
	}
}

// Entity returns the single-entity key {namespace}.{name}.{id} with an
// optional trailing suffix segment.
func (k keyBuilder) Entity(id int64, suffix string) string {
	if suffix != "" {
		return fmt.Sprintf("%s.%s.%d.%s", k.namespace, k.name, id, suffix)
	}
	return fmt.Sprintf("%s.%s.%d", k.namespace, k.name, id)
}

// Collection returns the collection key {namespace}.{name}.{suffix} with a
// default suffix of "all".
func (k keyBuilder) Collection(suffix string) string {
	if suffix == "" {
		suffix = "all"
	}
	return fmt.Sprintf("%s.%s.%s", k.namespace, k.name, suffix)
}

// rangeSuffix names a bounded get-all slice. An unbounded fetch shares the
// plain "all" key.
func rangeSuffix(limit, offset int) string {
	if limit <= 0 && offset <= 0 {
		return "all"
	}
	return fmt.Sprintf("all.limit_%d.offset_%d", limit, offset)
}

// countSuffix incorporates filters sorted by key so equivalent filter maps
// always land on the same cache key.
func countSuffix(filters map[string]any) string {
	if len(filters) == 0 {
		return "count_all"
	}

	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s_%v", k, filters[k]))
	}
	return "count_" + strings.Join(parts, "_")
}
