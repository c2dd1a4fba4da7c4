package manifest_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/wasconverge/wasconverge/internal/domain"
	"github.com/wasconverge/wasconverge/internal/manifest"
)

const keystoreManifest = `resources:
  - kind: keystore
    name: CellDefaultKeyStore
    scope:
      kind: cell
      cell: CELL_01
    attributes:
      location: /keys/cell.p12
      type: PKCS12
      description: cell keystore
  - kind: class_loader
    scope:
      kind: server
      cell: CELL_01
      node: appNode01
      server: AppServer01
    mode: PARENT_LAST
    libraries: [FOO, QUUX, BAZ]
`

const jmsManifest = `resources:
  - kind: jms_connection_factory
    name: orderCF
    scope:
      kind: cluster
      cell: CELL_01
      cluster: MyCluster01
    attributes:
      description: order entry
    connectionPool:
      maxConnections: "10"
`

func writeManifest(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "security.yaml", keystoreManifest)

	resources, err := manifest.Load(filepath.Join(dir, "security.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(resources) != 2 {
		t.Fatalf("expected 2 resources, got %d", len(resources))
	}

	ks := resources[0]
	if ks.Kind != domain.KindKeystore || ks.Name != "CellDefaultKeyStore" {
		t.Errorf("unexpected first resource: %+v", ks)
	}
	if ks.Scope.Kind != domain.ScopeCell || ks.Scope.Cell != "CELL_01" {
		t.Errorf("scope not parsed: %+v", ks.Scope)
	}
	if ks.Attributes["type"] != "PKCS12" {
		t.Errorf("attributes not parsed: %v", ks.Attributes)
	}

	cl := resources[1]
	if cl.Kind != domain.KindClassLoader || cl.Mode != domain.ParentLast {
		t.Errorf("unexpected class loader: %+v", cl)
	}
	if len(cl.Libraries) != 3 || cl.Libraries[2] != "BAZ" {
		t.Errorf("libraries not parsed: %v", cl.Libraries)
	}
}

func TestLoadDir_CombinesFiles(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "security.yaml", keystoreManifest)
	writeManifest(t, dir, "messaging.yml", jmsManifest)
	writeManifest(t, dir, "notes.txt", "not a manifest")

	resources, err := manifest.LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir failed: %v", err)
	}
	if len(resources) != 3 {
		t.Fatalf("expected 3 resources, got %d", len(resources))
	}

	var cf *domain.Resource
	for i := range resources {
		if resources[i].Kind == domain.KindJMSConnectionFactory {
			cf = &resources[i]
		}
	}
	if cf == nil {
		t.Fatal("connection factory not loaded")
	}
	if cf.ConnectionPool["maxConnections"] != "10" {
		t.Errorf("pool not parsed: %v", cf.ConnectionPool)
	}
}

func TestLoadDir_DuplicateIdentity(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "a.yaml", keystoreManifest)
	writeManifest(t, dir, "b.yaml", keystoreManifest)

	_, err := manifest.LoadDir(dir)
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "broken.yaml", "resources: [\n")

	if _, err := manifest.Load(filepath.Join(dir, "broken.yaml")); err == nil {
		t.Fatal("expected parse error")
	}
}
