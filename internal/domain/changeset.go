package domain

import "sort"

// PendingChangeSet accumulates the attribute mutations required to move
// one remote entity to its desired state. Values are the new settings,
// keyed by document attribute name. An empty set means the entity already
// matches and no script is emitted for it.
type PendingChangeSet map[string]string

// Set records a new value for an attribute.
func (c PendingChangeSet) Set(attr, value string) {
	c[attr] = value
}

// Empty reports whether any change is pending.
func (c PendingChangeSet) Empty() bool {
	return len(c) == 0
}

// Attrs returns the changed attribute names in sorted order, so emitted
// scripts are deterministic for a given change-set.
func (c PendingChangeSet) Attrs() []string {
	attrs := make([]string, 0, len(c))
	for a := range c {
		attrs = append(attrs, a)
	}
	sort.Strings(attrs)
	return attrs
}
