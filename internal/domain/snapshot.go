package domain

// Snapshot is the state of one remote entity as read from a configuration
// document. It is a value: the reader builds it once per reconciliation
// pass and nothing mutates it afterwards.
//
// Exists=false with an empty attribute map means the entity (or its whole
// document) is not present remotely. That is a normal outcome, not an
// error: a cluster member's documents appear on the deployment manager
// only after the member is provisioned.
type Snapshot struct {
	Exists     bool
	ID         string // store-assigned id, empty when Exists is false
	Attributes map[string]string
}

// Attr returns the named attribute and whether the snapshot holds it.
func (s Snapshot) Attr(name string) (string, bool) {
	v, ok := s.Attributes[name]
	return v, ok
}

// AbsentSnapshot is the canonical "entity not found" result.
func AbsentSnapshot() Snapshot {
	return Snapshot{Exists: false, Attributes: map[string]string{}}
}
