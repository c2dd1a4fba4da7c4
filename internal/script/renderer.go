// Package script renders the Jython administration scripts that the
// wsadmin tool executes against the deployment manager. Rendering is
// pure: a script is always safe to generate, whether or not it is
// ultimately executed. Each rendered script applies one batched mutation
// and ends with a single AdminConfig.save(), since every wsadmin
// invocation pays the tool's full interpreter startup cost.
package script

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/wasconverge/wasconverge/internal/domain"
	"github.com/wasconverge/wasconverge/internal/scope"
)

//go:embed templates/*.py.tmpl
var templateFS embed.FS

// typeNames maps resource kinds to the administrative model's type names.
var typeNames = map[domain.ResourceKind]string{
	domain.KindKeystore:             "KeyStore",
	domain.KindCertificate:          "Certificate",
	domain.KindSSLConfig:            "SSLConfigGroup",
	domain.KindTrustAssociation:     "TrustAssociation",
	domain.KindJMSConnectionFactory: "JMSConnectionFactory",
	domain.KindJMSQueue:             "Queue",
	domain.KindSharedLibrary:        "Library",
	domain.KindClassLoader:          "Classloader",
}

// Renderer holds the parsed template set.
type Renderer struct {
	tmpl *template.Template
}

// pystr renders a value as a Jython string literal. sprig's squote only
// wraps, so embedded quotes and backslashes must be escaped here or the
// generated script will not parse.
func pystr(v any) string {
	s := fmt.Sprint(v)
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}

// NewRenderer parses the embedded script templates.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("scripts").
		Funcs(sprig.TxtFuncMap()).
		Funcs(template.FuncMap{"pystr": pystr}).
		ParseFS(templateFS, "templates/*.py.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing script templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// ObjectID builds the tool's configuration id, "(mod|document#xmiID)".
// Entities in the shared security document are addressed through the
// cell's containment path whatever their management scope; everything
// else lives in a per-scope document.
func ObjectID(addr scope.Address, document, xmiID string) string {
	mod := addr.Mod
	if document == "security.xml" {
		mod = addr.CellMod
	}
	return fmt.Sprintf("(%s|%s#%s)", mod, document, xmiID)
}

// params feeds the script templates. Unused fields stay zero.
type params struct {
	Type      string
	Name      string
	Query     string
	XML       string
	ScopeType string
	ObjectID  string
	Mode      string
	Attrs     [][2]string
	Add       []string
	Remove    []string
}

func orderedAttrs(changes domain.PendingChangeSet) [][2]string {
	attrs := make([][2]string, 0, len(changes))
	for _, name := range changes.Attrs() {
		attrs = append(attrs, [2]string{name, changes[name]})
	}
	return attrs
}

func (r *Renderer) render(name string, p params) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, p); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}
	return buf.String(), nil
}

// Create renders the creation script for a named resource. For
// security-domain-scoped kinds the script also finds or creates the
// management scope entry and attaches the entity to it.
func (r *Renderer) Create(res *domain.Resource, addr scope.Address, attrs domain.PendingChangeSet) (string, error) {
	p := params{
		Type:  typeNames[res.Kind],
		Name:  res.Name,
		Query: addr.Query,
		Attrs: orderedAttrs(attrs),
	}
	if domain.Schemas[res.Kind].ScopeAttr != "" {
		p.XML = addr.XML
		p.ScopeType = string(res.Scope.Kind)
	}
	return r.render("create.py.tmpl", p)
}

// Modify renders the script applying one change-set to an existing
// entity, addressed directly by its document id.
func (r *Renderer) Modify(res *domain.Resource, addr scope.Address, xmiID string, changes domain.PendingChangeSet) (string, error) {
	return r.render("modify.py.tmpl", params{
		Type:     typeNames[res.Kind],
		Name:     res.Name,
		ObjectID: ObjectID(addr, domain.Schemas[res.Kind].Document, xmiID),
		Attrs:    orderedAttrs(changes),
	})
}

// Remove renders the destruction script for an existing entity.
func (r *Renderer) Remove(res *domain.Resource, addr scope.Address, xmiID string) (string, error) {
	return r.render("remove.py.tmpl", params{
		Type:     typeNames[res.Kind],
		Name:     res.Name,
		ObjectID: ObjectID(addr, domain.Schemas[res.Kind].Document, xmiID),
	})
}

// CreateClassLoader renders the script creating a fresh class loader
// instance holding the full library set.
func (r *Renderer) CreateClassLoader(addr scope.Address, mode domain.ClassLoaderMode, libraries []string) (string, error) {
	return r.render("classloader_create.py.tmpl", params{
		Query: addr.Query,
		Mode:  string(mode),
		Add:   libraries,
	})
}

// ModifyClassLoader renders the script adjusting one existing instance's
// library membership.
func (r *Renderer) ModifyClassLoader(addr scope.Address, xmiID string, add, remove []string) (string, error) {
	return r.render("classloader_modify.py.tmpl", params{
		ObjectID: ObjectID(addr, domain.Schemas[domain.KindClassLoader].Document, xmiID),
		Add:      add,
		Remove:   remove,
	})
}

// RemoveClassLoader renders the destruction script for one instance.
// Mode changes go through here: identity is not stable, so a mode change
// is a destroy followed by a create on the next pass.
func (r *Renderer) RemoveClassLoader(addr scope.Address, xmiID string) (string, error) {
	return r.render("remove.py.tmpl", params{
		Type:     typeNames[domain.KindClassLoader],
		Name:     "classloader",
		ObjectID: ObjectID(addr, domain.Schemas[domain.KindClassLoader].Document, xmiID),
	})
}
