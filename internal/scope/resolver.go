// Package scope maps logical resource locations (cell, cluster, node,
// server) to the address forms the deployment manager's sub-APIs expect.
// Resolution is pure string derivation; nothing here touches the
// filesystem or the wsadmin tool.
package scope

import (
	"fmt"
	"path"

	"github.com/wasconverge/wasconverge/internal/domain"
)

// Address is the resolved location of a scope in its four representations:
//
//	Query: slash-delimited containment path for AdminConfig.getid
//	Mod:   relative directory path used when creating objects
//	XML:   the management-scope key stored inside security documents
//	File:  absolute path of the cell's security.xml
//
// File is the same document for every scope in a cell: security entities
// of all scopes live side by side in the cell file and are told apart by
// their management-scope reference, which is what XML keys into.
type Address struct {
	Query string
	Mod   string
	XML   string
	File  string

	// CellMod is the cell's containment path ("cells/C"); configuration
	// ids for entities in the shared security document are built on it
	// rather than on Mod.
	CellMod string

	dir string
}

// Doc returns the absolute path of another per-scope document, e.g.
// "resources.xml" or "server.xml", derived from the same resolution.
func (a Address) Doc(name string) string {
	return path.Join(a.dir, name)
}

// Resolver derives scope addresses under one deployment-manager profile.
type Resolver struct {
	profileBase string
	dmgrProfile string
}

// NewResolver creates a Resolver rooted at profileBase/dmgrProfile.
func NewResolver(profileBase, dmgrProfile string) Resolver {
	return Resolver{profileBase: profileBase, dmgrProfile: dmgrProfile}
}

// ConfigRoot returns the profile's configuration root directory. Readers
// use it to expand the ${CONFIG_ROOT} placeholder found in stored paths.
func (r Resolver) ConfigRoot() string {
	return path.Join(r.profileBase, r.dmgrProfile, "config")
}

// Resolve maps ref to its four address forms. It fails with a
// domain.ScopeError when the kind is unrecognized or an identifier the
// kind requires is missing. Identical inputs always yield identical
// addresses.
func (r Resolver) Resolve(ref domain.ScopeRef) (Address, error) {
	if ref.Cell == "" {
		return Address{}, &domain.ScopeError{Kind: string(ref.Kind), Detail: "cell is required"}
	}

	var query, mod, xml string
	switch ref.Kind {
	case domain.ScopeCell:
		query = fmt.Sprintf("/Cell:%s", ref.Cell)
		mod = path.Join("cells", ref.Cell)
		xml = fmt.Sprintf("(cell):%s", ref.Cell)
	case domain.ScopeCluster:
		if ref.Cluster == "" {
			return Address{}, &domain.ScopeError{Kind: string(ref.Kind), Detail: "cluster is required"}
		}
		query = fmt.Sprintf("/Cell:%s/ServerCluster:%s", ref.Cell, ref.Cluster)
		mod = path.Join("cells", ref.Cell, "clusters", ref.Cluster)
		xml = fmt.Sprintf("(cell):%s:(cluster):%s", ref.Cell, ref.Cluster)
	case domain.ScopeNode:
		if ref.Node == "" {
			return Address{}, &domain.ScopeError{Kind: string(ref.Kind), Detail: "node is required"}
		}
		query = fmt.Sprintf("/Cell:%s/Node:%s", ref.Cell, ref.Node)
		mod = path.Join("cells", ref.Cell, "nodes", ref.Node)
		xml = fmt.Sprintf("(cell):%s:(node):%s", ref.Cell, ref.Node)
	case domain.ScopeServer:
		if ref.Node == "" {
			return Address{}, &domain.ScopeError{Kind: string(ref.Kind), Detail: "node is required"}
		}
		if ref.Server == "" {
			return Address{}, &domain.ScopeError{Kind: string(ref.Kind), Detail: "server is required"}
		}
		query = fmt.Sprintf("/Cell:%s/Node:%s/Server:%s", ref.Cell, ref.Node, ref.Server)
		mod = path.Join("cells", ref.Cell, "nodes", ref.Node, "servers", ref.Server)
		xml = fmt.Sprintf("(cell):%s:(node):%s:(server):%s", ref.Cell, ref.Node, ref.Server)
	default:
		return Address{}, &domain.ScopeError{Kind: string(ref.Kind), Detail: "unrecognized scope kind"}
	}

	dir := path.Join(r.ConfigRoot(), mod)
	cellMod := path.Join("cells", ref.Cell)
	return Address{
		Query:   query,
		Mod:     mod,
		XML:     xml,
		File:    path.Join(r.ConfigRoot(), cellMod, "security.xml"),
		CellMod: cellMod,
		dir:     dir,
	}, nil
}
