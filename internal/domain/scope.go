package domain

// ScopeKind identifies the level of the cell topology a resource lives at.
type ScopeKind string

const (
	ScopeCell    ScopeKind = "cell"
	ScopeCluster ScopeKind = "cluster"
	ScopeNode    ScopeKind = "node"
	ScopeServer  ScopeKind = "server"
)

// Valid reports whether k is one of the four recognized scope kinds.
func (k ScopeKind) Valid() bool {
	switch k {
	case ScopeCell, ScopeCluster, ScopeNode, ScopeServer:
		return true
	}
	return false
}

// ScopeRef is the operator-supplied location of a resource. Which
// identifiers are required depends on Kind: cell always, cluster for
// cluster scope, node for node and server scope, server for server scope.
type ScopeRef struct {
	Kind    ScopeKind `json:"kind" yaml:"kind"`
	Cell    string    `json:"cell" yaml:"cell"`
	Cluster string    `json:"cluster,omitempty" yaml:"cluster,omitempty"`
	Node    string    `json:"node,omitempty" yaml:"node,omitempty"`
	Server  string    `json:"server,omitempty" yaml:"server,omitempty"`
}

// String renders the populated identifiers, most-specific last. Used in
// resource keys and error messages, not in document addressing.
func (s ScopeRef) String() string {
	out := string(s.Kind) + ":" + s.Cell
	if s.Cluster != "" {
		out += "/" + s.Cluster
	}
	if s.Node != "" {
		out += "/" + s.Node
	}
	if s.Server != "" {
		out += "/" + s.Server
	}
	return out
}

// ManagementScope is a scope entry as stored in a configuration document:
// an opaque store-assigned id plus the colon-delimited hierarchical name,
// e.g. "(cell):CELL_01:(node):appNode01". The id is only meaningful within
// the document that assigned it.
type ManagementScope struct {
	ID   string
	Name string
}
