package domain

// AttrSchema describes how one resource kind maps onto the configuration
// documents: which document holds it, the element tag and name-bearing
// attribute used to locate it, and which attributes may change after
// creation.
//
// Kinds with a ScopeAttr live in a document shared by several scopes
// (security.xml) and are located through the management-scope table;
// kinds without one live in a per-scope document and are located by name
// alone.
type AttrSchema struct {
	Document  string // file name under the scope directory
	Tag       string // element tag carrying instances of this kind
	NameAttr  string // attribute holding the operator-assigned name
	ScopeAttr string // attribute referencing a management-scope id, if any

	// Mutable and Immutable together enumerate the supported attributes.
	// Anything outside both sets is rejected at validation time.
	Mutable   []string
	Immutable []string

	// Secret lists attributes stored obfuscated in the document.
	Secret []string

	// Refs maps attribute names whose value is another entity's id to the
	// referenced entity's shape. Referenced attributes are folded into
	// the snapshot during the read.
	Refs map[string]RefSpec
}

// RefSpec describes a same-document reference held in an attribute value.
type RefSpec struct {
	Tag    string // element tag of the referenced entity
	Prefix string // prepended to folded attribute names, may be empty
}

// Schemas enumerates the document mapping for every managed kind.
var Schemas = map[ResourceKind]AttrSchema{
	KindKeystore: {
		Document:  "security.xml",
		Tag:       "keyStores",
		NameAttr:  "name",
		ScopeAttr: "managementScope",
		Mutable:   []string{"location", "password", "description", "readOnly", "initializeAtStartup"},
		Immutable: []string{"type", "provider"},
		Secret:    []string{"password"},
	},
	KindCertificate: {
		Document:  "security.xml",
		Tag:       "certificates",
		NameAttr:  "alias",
		ScopeAttr: "managementScope",
		Mutable:   []string{"certificateFilePath", "base64Encoded"},
		Immutable: []string{"alias", "keystore"},
	},
	KindSSLConfig: {
		Document:  "security.xml",
		Tag:       "sslConfigGroups",
		NameAttr:  "name",
		ScopeAttr: "managementScope",
		Mutable:   []string{"keystoreName", "truststoreName", "clientAuthentication", "securityLevel", "sslProtocol"},
		Immutable: []string{"direction"},
		Refs:      map[string]RefSpec{"sslConfig": {Tag: "repertoire"}},
	},
	KindTrustAssociation: {
		Document:  "security.xml",
		Tag:       "trustAssociations",
		NameAttr:  "name",
		ScopeAttr: "managementScope",
		Mutable:   []string{"enabled", "interceptors"},
	},
	KindJMSConnectionFactory: {
		Document: "resources.xml",
		Tag:      "factories",
		NameAttr: "name",
		Mutable: []string{
			"description", "providerEndpoints",
			"connectionPool.minConnections", "connectionPool.maxConnections",
			"connectionPool.connectionTimeout", "connectionPool.reapTime",
			"connectionPool.unusedTimeout", "connectionPool.agedTimeout",
			"connectionPool.purgePolicy",
			"sessionPool.minConnections", "sessionPool.maxConnections",
			"sessionPool.connectionTimeout", "sessionPool.reapTime",
			"sessionPool.unusedTimeout", "sessionPool.agedTimeout",
			"sessionPool.purgePolicy",
		},
		Immutable: []string{"jndiName", "busName"},
		Refs: map[string]RefSpec{
			"connectionPool": {Tag: "connectionPool", Prefix: "connectionPool."},
			"sessionPool":    {Tag: "sessionPool", Prefix: "sessionPool."},
		},
	},
	KindJMSQueue: {
		Document:  "resources.xml",
		Tag:       "queues",
		NameAttr:  "name",
		Mutable:   []string{"description", "deliveryMode", "timeToLive", "priority"},
		Immutable: []string{"jndiName", "queueName"},
	},
	KindSharedLibrary: {
		Document: "libraries.xml",
		Tag:      "libraries",
		NameAttr: "name",
		Mutable:  []string{"classPath", "nativePath", "description", "isolatedClassLoader"},
	},
	KindClassLoader: {
		Document:  "server.xml",
		Tag:       "classloaders",
		NameAttr:  "",
		Mutable:   []string{"libraries"},
		Immutable: []string{"mode"},
	},
}

// IsImmutable reports whether attr may not change after creation for kind.
func IsImmutable(kind ResourceKind, attr string) bool {
	for _, a := range Schemas[kind].Immutable {
		if a == attr {
			return true
		}
	}
	return false
}

// IsSecret reports whether attr is stored obfuscated for kind.
func IsSecret(kind ResourceKind, attr string) bool {
	for _, a := range Schemas[kind].Secret {
		if a == attr {
			return true
		}
	}
	return false
}

// KnownAttr reports whether attr is part of kind's schema at all.
func KnownAttr(kind ResourceKind, attr string) bool {
	s := Schemas[kind]
	for _, a := range s.Mutable {
		if a == attr {
			return true
		}
	}
	for _, a := range s.Immutable {
		if a == attr {
			return true
		}
	}
	return false
}
