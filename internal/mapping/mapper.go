// Package mapping provides the bidirectional model name lookup between
// external (client-facing) and internal (backend-facing) identifiers.
package mapping

import "sort"

// Mapper holds the immutable model name mapping table. The forward map may be
// many-to-one; the reverse map is derived by iterating external names in
// sorted order and keeping the first entry, so when several external names
// map to the same internal name, the lexicographically smallest external name
// wins. Safe for concurrent use: built once, never mutated.
type Mapper struct {
	forward map[string]string
	reverse map[string]string
}

// NewMapper builds a Mapper from the configured external → internal table.
func NewMapper(modelMapping map[string]string) *Mapper {
	forward := make(map[string]string, len(modelMapping))
	reverse := make(map[string]string, len(modelMapping))

	externals := make([]string, 0, len(modelMapping))
	for external := range modelMapping {
		externals = append(externals, external)
	}
	sort.Strings(externals)

	for _, external := range externals {
		internal := modelMapping[external]
		forward[external] = internal
		if _, exists := reverse[internal]; !exists {
			reverse[internal] = external
		}
	}

	return &Mapper{forward: forward, reverse: reverse}
}

// ToInternal maps an external model name to the backend's name. Unknown names
// pass through unchanged.
func (m *Mapper) ToInternal(external string) string {
	if internal, ok := m.forward[external]; ok {
		return internal
	}
	return external
}

// ToExternal maps a backend model name back to an external name. Unknown
// names pass through unchanged.
func (m *Mapper) ToExternal(internal string) string {
	if external, ok := m.reverse[internal]; ok {
		return external
	}
	return internal
}

// Len returns the number of configured forward mappings.
func (m *Mapper) Len() int {
	return len(m.forward)
}
