package configstate

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/wasconverge/wasconverge/internal/domain"
	"github.com/wasconverge/wasconverge/internal/scope"
)

// Reader extracts entity snapshots from per-scope configuration documents.
type Reader struct {
	resolver scope.Resolver
}

// NewReader creates a Reader for documents under resolver's profile.
func NewReader(resolver scope.Resolver) *Reader {
	return &Reader{resolver: resolver}
}

// docPath picks the document a kind lives in for the given address.
func docPath(addr scope.Address, schema domain.AttrSchema) string {
	if schema.Document == "security.xml" {
		return addr.File
	}
	return addr.Doc(schema.Document)
}

// ReadEntity locates the named entity of the given kind inside the
// address's document and returns its attribute snapshot.
//
// Scoped kinds take two hops: the management-scope table maps the
// address's XML key to a scope id, then the entity is matched by tag,
// scope-reference attribute, and name attribute. Per-scope documents
// (resources.xml, libraries.xml) need only the name match. Attribute
// values referencing another entity's id are resolved and folded into the
// snapshot, and path placeholders are expanded, before the snapshot is
// returned. An absent file or unlocatable entity yields exists=false with
// no error.
func (r *Reader) ReadEntity(addr scope.Address, kind domain.ResourceKind, name string) (domain.Snapshot, error) {
	schema, ok := domain.Schemas[kind]
	if !ok || schema.NameAttr == "" {
		return domain.AbsentSnapshot(), nil
	}

	doc, found, err := loadDocument(docPath(addr, schema), r.resolver.ConfigRoot())
	if err != nil {
		return domain.AbsentSnapshot(), err
	}
	if !found {
		return domain.AbsentSnapshot(), nil
	}

	scopeID := ""
	if schema.ScopeAttr != "" {
		scopeID = doc.scopeID(addr.XML)
		if scopeID == "" {
			return domain.AbsentSnapshot(), nil
		}
	}

	for _, el := range doc.elements(schema.Tag) {
		if el.SelectAttrValue(schema.NameAttr, "") != name {
			continue
		}
		if schema.ScopeAttr != "" && el.SelectAttrValue(schema.ScopeAttr, "") != scopeID {
			continue
		}
		return r.snapshot(doc, el, schema), nil
	}
	return domain.AbsentSnapshot(), nil
}

// snapshot converts a located element into an attribute map, resolving
// same-document references and expanding placeholders.
func (r *Reader) snapshot(doc *document, el *etree.Element, schema domain.AttrSchema) domain.Snapshot {
	attrs := make(map[string]string)
	for _, a := range el.Attr {
		key := a.Key
		if a.Space != "" {
			key = a.Space + ":" + a.Key
		}
		if strings.HasPrefix(key, "xmi:") || key == schema.ScopeAttr {
			continue
		}
		if _, isRef := schema.Refs[key]; isRef {
			continue
		}
		attrs[key] = doc.expand(a.Value)
	}

	for refAttr, ref := range schema.Refs {
		refID := el.SelectAttrValue(refAttr, "")
		if refID == "" {
			continue
		}
		target, ok := doc.byID[refID]
		if !ok || target.Tag != ref.Tag {
			continue
		}
		for _, a := range target.Attr {
			if a.Space != "" || strings.HasPrefix(a.Key, "xmi") {
				continue
			}
			attrs[ref.Prefix+a.Key] = doc.expand(a.Value)
		}
	}

	return domain.Snapshot{
		Exists:     true,
		ID:         el.SelectAttrValue(idAttr, ""),
		Attributes: attrs,
	}
}

// ReadClassLoaders returns every class loader instance in the server
// document at addr, in document order. Instances carry no name; callers
// match them structurally. An absent document yields an empty slice.
func (r *Reader) ReadClassLoaders(addr scope.Address) ([]domain.ClassLoaderInstance, error) {
	schema := domain.Schemas[domain.KindClassLoader]

	doc, found, err := loadDocument(addr.Doc(schema.Document), r.resolver.ConfigRoot())
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	var instances []domain.ClassLoaderInstance
	for _, el := range doc.elements(schema.Tag) {
		inst := domain.ClassLoaderInstance{
			ID:   el.SelectAttrValue(idAttr, ""),
			Mode: domain.ClassLoaderMode(el.SelectAttrValue("mode", "")),
		}
		for _, lib := range el.ChildElements() {
			if lib.Tag != "libraries" {
				continue
			}
			if name := lib.SelectAttrValue("libraryName", ""); name != "" {
				inst.Libraries = append(inst.Libraries, name)
			}
		}
		instances = append(instances, inst)
	}
	return instances, nil
}
