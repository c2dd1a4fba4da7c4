// Package configstate reads entity snapshots out of the deployment
// manager's configuration documents. The documents are flat: nesting is
// simulated through attributes holding other entities' xmi:id values, so
// an entity's relationships are discovered by id lookup, never by XML
// position. Each read parses fresh and builds id-keyed indexes once;
// nothing is cached between reconciliation passes.
package configstate

import (
	"fmt"
	"os"
	"strings"

	"github.com/beevik/etree"
)

const (
	idAttr          = "xmi:id"
	scopeTag        = "managementScopes"
	configRootToken = "${CONFIG_ROOT}"
)

// document is one parsed configuration file with its lookup tables.
type document struct {
	scopeIDByName map[string]string        // management scope name -> xmi:id
	byID          map[string]*etree.Element // any element carrying xmi:id
	byTag         map[string][]*etree.Element
	configRoot    string
}

// loadDocument parses the file at path. An absent file yields (nil, false,
// nil): the entity simply cannot exist yet, which callers surface as
// exists=false rather than an error.
func loadDocument(path, configRoot string) (*document, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading %s: %w", path, err)
	}

	tree := etree.NewDocument()
	if err := tree.ReadFromBytes(data); err != nil {
		return nil, false, fmt.Errorf("parsing %s: %w", path, err)
	}

	doc := &document{
		scopeIDByName: make(map[string]string),
		byID:          make(map[string]*etree.Element),
		byTag:         make(map[string][]*etree.Element),
		configRoot:    configRoot,
	}
	doc.index(tree.Root())
	return doc, true, nil
}

// index walks the tree once, filling the id, tag, and scope tables.
func (d *document) index(el *etree.Element) {
	if el == nil {
		return
	}
	if id := el.SelectAttrValue(idAttr, ""); id != "" {
		d.byID[id] = el
	}
	d.byTag[el.Tag] = append(d.byTag[el.Tag], el)
	if el.Tag == scopeTag {
		name := el.SelectAttrValue("scopeName", "")
		if name == "" {
			name = el.SelectAttrValue("name", "")
		}
		if id := el.SelectAttrValue(idAttr, ""); id != "" && name != "" {
			d.scopeIDByName[name] = id
		}
	}
	for _, child := range el.ChildElements() {
		d.index(child)
	}
}

// scopeID returns the xmi:id of the management scope whose name equals
// xmlKey, or "" when the document holds no such scope.
func (d *document) scopeID(xmlKey string) string {
	return d.scopeIDByName[xmlKey]
}

// elements returns every element with the given tag, in document order.
func (d *document) elements(tag string) []*etree.Element {
	return d.byTag[tag]
}

// expand substitutes path placeholder tokens in an attribute value.
func (d *document) expand(value string) string {
	return strings.ReplaceAll(value, configRootToken, d.configRoot)
}
