package domain

// ResourceKind identifies a managed resource type.
type ResourceKind string

const (
	KindKeystore             ResourceKind = "keystore"
	KindCertificate          ResourceKind = "certificate"
	KindSSLConfig            ResourceKind = "ssl_config"
	KindTrustAssociation     ResourceKind = "trust_association"
	KindJMSConnectionFactory ResourceKind = "jms_connection_factory"
	KindJMSQueue             ResourceKind = "jms_queue"
	KindSharedLibrary        ResourceKind = "shared_library"
	KindClassLoader          ResourceKind = "class_loader"
)

// Kinds lists every managed resource kind in a stable order.
var Kinds = []ResourceKind{
	KindKeystore,
	KindCertificate,
	KindSSLConfig,
	KindTrustAssociation,
	KindJMSConnectionFactory,
	KindJMSQueue,
	KindSharedLibrary,
	KindClassLoader,
}

// Valid reports whether k is a known resource kind.
func (k ResourceKind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// ClassLoaderMode is the delegation mode of a class loader instance.
type ClassLoaderMode string

const (
	ParentFirst ClassLoaderMode = "PARENT_FIRST"
	ParentLast  ClassLoaderMode = "PARENT_LAST"
)

// Valid reports whether m is a recognized delegation mode.
func (m ClassLoaderMode) Valid() bool {
	return m == ParentFirst || m == ParentLast
}

// Resource is one desired-state resource instance from a manifest.
// Attributes holds flat string attributes keyed by their document names;
// only keys present carry an opinion, absent keys are never compared.
// Pool maps and Libraries are kind-specific and empty for other kinds.
type Resource struct {
	Kind           ResourceKind      `json:"kind" yaml:"kind"`
	Name           string            `json:"name" yaml:"name"`
	Scope          ScopeRef          `json:"scope" yaml:"scope"`
	Attributes     map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	ConnectionPool map[string]string `json:"connectionPool,omitempty" yaml:"connectionPool,omitempty"`
	SessionPool    map[string]string `json:"sessionPool,omitempty" yaml:"sessionPool,omitempty"`
	Mode           ClassLoaderMode   `json:"mode,omitempty" yaml:"mode,omitempty"`
	Libraries      []string          `json:"libraries,omitempty" yaml:"libraries,omitempty"`
	Absent         bool              `json:"absent,omitempty" yaml:"absent,omitempty"`
}

// Key returns a stable identity for the resource within one manifest set.
// Class loaders have no operator-assigned name; their mode stands in.
func (r *Resource) Key() string {
	name := r.Name
	if r.Kind == KindClassLoader && name == "" {
		name = string(r.Mode)
	}
	return string(r.Kind) + "/" + name + "@" + r.Scope.String()
}

// ClassLoaderInstance is one anonymous class loader as found in a server
// document. The id is store-assigned and does not survive recreation;
// reconciliation identity is structural (mode plus library membership).
type ClassLoaderInstance struct {
	ID        string
	Mode      ClassLoaderMode
	Libraries []string // document order, duplicates permitted
}
