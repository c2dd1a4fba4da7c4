package service_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/wasconverge/wasconverge/internal/domain"
	"github.com/wasconverge/wasconverge/internal/script"
	"github.com/wasconverge/wasconverge/internal/scope"
	"github.com/wasconverge/wasconverge/internal/service"
	"github.com/wasconverge/wasconverge/internal/storage/memory"
	"github.com/wasconverge/wasconverge/internal/wsadmin"
)

const cellSecurityXML = `<?xml version="1.0" encoding="UTF-8"?>
<security:Security xmi:version="2.0" xmlns:xmi="http://www.omg.org/XMI" xmlns:security="http://www.ibm.com/websphere/appserver/schemas/5.0/security.xmi">
  <managementScopes xmi:id="ManagementScope_1" scopeName="(cell):CELL_01" scopeType="cell"/>
  <keyStores xmi:id="KeyStore_1" name="CellDefaultKeyStore" password="{xor}LDo8LTor" location="/opt/keys/key.p12" type="PKCS12" description="d0" managementScope="ManagementScope_1"/>
</security:Security>
`

const appServerXML = `<?xml version="1.0" encoding="UTF-8"?>
<process:Server xmi:version="2.0" xmlns:xmi="http://www.omg.org/XMI" xmlns:process="http://www.ibm.com/websphere/appserver/schemas/5.0/process.xmi" name="AppServer01">
  <components xmi:id="ApplicationServer_1">
    <classloaders xmi:id="Classloader_1" mode="PARENT_LAST">
      <libraries xmi:id="LibraryRef_1" libraryName="QUUX"/>
    </classloaders>
    <classloaders xmi:id="Classloader_2" mode="PARENT_LAST">
      <libraries xmi:id="LibraryRef_2" libraryName="BAR"/>
      <libraries xmi:id="LibraryRef_3" libraryName="QUUX"/>
      <libraries xmi:id="LibraryRef_4" libraryName="FOO"/>
    </classloaders>
  </components>
</process:Server>
`

type harness struct {
	rec         *wsadmin.Recorder
	store       *memory.Store
	reconciler  *service.Reconciler
	manifestDir string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	base := t.TempDir()

	write := func(rel, content string) {
		full := filepath.Join(base, "PROFILE_DMGR_01", "config", rel)
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	write("cells/CELL_01/security.xml", cellSecurityXML)
	write("cells/CELL_01/nodes/appNode01/servers/AppServer01/server.xml", appServerXML)

	renderer, err := script.NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	h := &harness{
		rec:         wsadmin.NewRecorder(),
		store:       memory.New(),
		manifestDir: t.TempDir(),
	}
	h.reconciler = service.New(
		h.store,
		scope.NewResolver(base, "PROFILE_DMGR_01"),
		h.rec,
		renderer,
		h.manifestDir,
		20*time.Millisecond,
		true,
		zerolog.Nop(),
	)
	return h
}

func (h *harness) writeManifest(t *testing.T, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(h.manifestDir, name), []byte(content), 0644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
}

func TestForceSyncUnchanged(t *testing.T) {
	h := newHarness(t)
	h.writeManifest(t, "keystore.yaml", `resources:
  - kind: keystore
    name: CellDefaultKeyStore
    scope:
      kind: cell
      cell: CELL_01
    attributes:
      description: d0
      password: secret
`)

	detail, err := h.reconciler.ForceSync(context.Background(), "test")
	if err != nil {
		t.Fatalf("ForceSync: %v", err)
	}
	if detail.Status != domain.RunStatusSuccess {
		t.Errorf("status = %q, want success", detail.Status)
	}
	if len(detail.Results) != 1 {
		t.Fatalf("got %d results, want 1", len(detail.Results))
	}
	if detail.Results[0].Outcome != domain.OutcomeUnchanged {
		t.Errorf("outcome = %q, want unchanged", detail.Results[0].Outcome)
	}
	if got := h.rec.Scripts(); len(got) != 0 {
		t.Errorf("matching state still emitted %d scripts", len(got))
	}
}

func TestForceSyncModify(t *testing.T) {
	h := newHarness(t)
	h.writeManifest(t, "keystore.yaml", `resources:
  - kind: keystore
    name: CellDefaultKeyStore
    scope:
      kind: cell
      cell: CELL_01
    attributes:
      description: rotated keystore
`)

	detail, err := h.reconciler.ForceSync(context.Background(), "test")
	if err != nil {
		t.Fatalf("ForceSync: %v", err)
	}
	if detail.Results[0].Outcome != domain.OutcomeModified {
		t.Fatalf("outcome = %q, want modified", detail.Results[0].Outcome)
	}

	scripts := h.rec.Scripts()
	if len(scripts) != 1 {
		t.Fatalf("got %d scripts, want 1", len(scripts))
	}
	if !strings.Contains(scripts[0], "AdminConfig.modify") {
		t.Errorf("script does not modify:\n%s", scripts[0])
	}
	if !strings.Contains(scripts[0], "KeyStore_1") {
		t.Errorf("script does not target the existing entity:\n%s", scripts[0])
	}
	if detail.Results[0].Script != scripts[0] {
		t.Errorf("recorded script differs from executed script")
	}
}

func TestForceSyncCreate(t *testing.T) {
	h := newHarness(t)
	h.writeManifest(t, "keystore.yaml", `resources:
  - kind: keystore
    name: NodeSigningStore
    scope:
      kind: cell
      cell: CELL_01
    attributes:
      type: PKCS12
      location: /opt/keys/signing.p12
      password: secret
`)

	detail, err := h.reconciler.ForceSync(context.Background(), "test")
	if err != nil {
		t.Fatalf("ForceSync: %v", err)
	}
	if detail.Results[0].Outcome != domain.OutcomeCreated {
		t.Fatalf("outcome = %q, want created: %s", detail.Results[0].Outcome, detail.Results[0].Error)
	}

	scripts := h.rec.Scripts()
	if len(scripts) != 1 {
		t.Fatalf("got %d scripts, want 1", len(scripts))
	}
	if !strings.Contains(scripts[0], "AdminConfig.create") {
		t.Errorf("script does not create:\n%s", scripts[0])
	}
	if strings.Contains(scripts[0], "'password', 'secret'") {
		t.Errorf("script carries the plaintext secret:\n%s", scripts[0])
	}
	if !strings.Contains(scripts[0], "{xor}LDo8LTor") {
		t.Errorf("script does not carry the obfuscated secret:\n%s", scripts[0])
	}
}

func TestForceSyncRemove(t *testing.T) {
	h := newHarness(t)
	h.writeManifest(t, "keystore.yaml", `resources:
  - kind: keystore
    name: CellDefaultKeyStore
    scope:
      kind: cell
      cell: CELL_01
    absent: true
  - kind: keystore
    name: NeverExisted
    scope:
      kind: cell
      cell: CELL_01
    absent: true
`)

	detail, err := h.reconciler.ForceSync(context.Background(), "test")
	if err != nil {
		t.Fatalf("ForceSync: %v", err)
	}
	outcomes := map[string]string{}
	for _, res := range detail.Results {
		outcomes[res.ResourceKey] = res.Outcome
	}
	if outcomes["keystore/CellDefaultKeyStore@cell:CELL_01"] != domain.OutcomeRemoved {
		t.Errorf("existing store outcome = %q, want removed", outcomes["keystore/CellDefaultKeyStore@cell:CELL_01"])
	}
	if outcomes["keystore/NeverExisted@cell:CELL_01"] != domain.OutcomeUnchanged {
		t.Errorf("missing store outcome = %q, want unchanged", outcomes["keystore/NeverExisted@cell:CELL_01"])
	}

	scripts := h.rec.Scripts()
	if len(scripts) != 1 {
		t.Fatalf("got %d scripts, want 1", len(scripts))
	}
	if !strings.Contains(scripts[0], "AdminConfig.remove") {
		t.Errorf("script does not remove:\n%s", scripts[0])
	}
}

func TestFailureIsolation(t *testing.T) {
	h := newHarness(t)
	// Changing the type of an existing keystore is rejected; the sibling
	// resource must still converge.
	h.writeManifest(t, "keystores.yaml", `resources:
  - kind: keystore
    name: CellDefaultKeyStore
    scope:
      kind: cell
      cell: CELL_01
    attributes:
      type: JKS
  - kind: keystore
    name: CellDefaultKeyStore2
    scope:
      kind: cell
      cell: CELL_01
    attributes:
      type: PKCS12
`)

	detail, err := h.reconciler.ForceSync(context.Background(), "test")
	if err != nil {
		t.Fatalf("ForceSync: %v", err)
	}
	if detail.Status != domain.RunStatusPartial {
		t.Errorf("status = %q, want partial", detail.Status)
	}

	outcomes := map[string]string{}
	errTexts := map[string]string{}
	for _, res := range detail.Results {
		outcomes[res.ResourceKey] = res.Outcome
		errTexts[res.ResourceKey] = res.Error
	}
	if outcomes["keystore/CellDefaultKeyStore@cell:CELL_01"] != domain.OutcomeFailed {
		t.Errorf("immutable change outcome = %q, want failed", outcomes["keystore/CellDefaultKeyStore@cell:CELL_01"])
	}
	if !strings.Contains(errTexts["keystore/CellDefaultKeyStore@cell:CELL_01"], "immutable") {
		t.Errorf("error = %q, want immutable mention", errTexts["keystore/CellDefaultKeyStore@cell:CELL_01"])
	}
	if outcomes["keystore/CellDefaultKeyStore2@cell:CELL_01"] != domain.OutcomeCreated {
		t.Errorf("sibling outcome = %q, want created", outcomes["keystore/CellDefaultKeyStore2@cell:CELL_01"])
	}
	if got := h.rec.Scripts(); len(got) != 1 {
		t.Errorf("got %d scripts, want 1 for the surviving sibling", len(got))
	}
}

func TestDeferredOnMissingParent(t *testing.T) {
	h := newHarness(t)
	h.rec.Err = domain.ErrNotYetProvisioned
	h.writeManifest(t, "keystore.yaml", `resources:
  - kind: keystore
    name: ClusterStore
    scope:
      kind: cluster
      cell: CELL_01
      cluster: MyCluster01
    attributes:
      type: PKCS12
`)

	detail, err := h.reconciler.ForceSync(context.Background(), "test")
	if err != nil {
		t.Fatalf("ForceSync: %v", err)
	}
	res := detail.Results[0]
	if res.Outcome != domain.OutcomeDeferred {
		t.Fatalf("outcome = %q, want deferred: %s", res.Outcome, res.Error)
	}
	if !strings.Contains(res.Error, "not provisioned yet") {
		t.Errorf("error = %q, want not-yet-provisioned mention", res.Error)
	}
	if res.Script == "" {
		t.Errorf("deferred result should keep the attempted script")
	}
}

func TestClassLoaderConvergence(t *testing.T) {
	h := newHarness(t)
	h.writeManifest(t, "classloader.yaml", `resources:
  - kind: class_loader
    scope:
      kind: server
      cell: CELL_01
      node: appNode01
      server: AppServer01
    mode: PARENT_LAST
    libraries: [FOO, QUUX, BAZ]
`)

	detail, err := h.reconciler.ForceSync(context.Background(), "test")
	if err != nil {
		t.Fatalf("ForceSync: %v", err)
	}
	res := detail.Results[0]
	if res.Outcome != domain.OutcomeModified {
		t.Fatalf("outcome = %q, want modified: %s", res.Outcome, res.Error)
	}

	scripts := h.rec.Scripts()
	if len(scripts) != 1 {
		t.Fatalf("got %d scripts, want 1", len(scripts))
	}
	if !strings.Contains(scripts[0], "Classloader_2") {
		t.Errorf("script does not target the best-covering instance:\n%s", scripts[0])
	}
	if !strings.Contains(scripts[0], "BAZ") {
		t.Errorf("script does not add the missing library:\n%s", scripts[0])
	}
	if !strings.Contains(scripts[0], "'BAR'") {
		t.Errorf("script does not drop the extra library:\n%s", scripts[0])
	}
}

func TestValidationFailureRecorded(t *testing.T) {
	h := newHarness(t)
	h.writeManifest(t, "bad.yaml", `resources:
  - kind: mystery
    name: thing
    scope:
      kind: cell
      cell: CELL_01
`)

	detail, err := h.reconciler.ForceSync(context.Background(), "test")
	if err != nil {
		t.Fatalf("ForceSync: %v", err)
	}
	if detail.Status != domain.RunStatusFailed {
		t.Errorf("status = %q, want failed", detail.Status)
	}
	if len(detail.Results) == 0 || detail.Results[0].Outcome != domain.OutcomeFailed {
		t.Errorf("invalid manifest resource should record a failed result")
	}
	if got := h.rec.Scripts(); len(got) != 0 {
		t.Errorf("invalid resource still emitted %d scripts", len(got))
	}
}

func TestRunPersistence(t *testing.T) {
	h := newHarness(t)
	h.writeManifest(t, "keystore.yaml", `resources:
  - kind: keystore
    name: CellDefaultKeyStore
    scope:
      kind: cell
      cell: CELL_01
    attributes:
      description: changed
`)

	detail, err := h.reconciler.ForceSync(context.Background(), "cli")
	if err != nil {
		t.Fatalf("ForceSync: %v", err)
	}

	ctx := context.Background()
	run, err := h.store.GetRun(ctx, detail.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Trigger != "cli" {
		t.Errorf("trigger = %q, want cli", run.Trigger)
	}
	if run.FinishedAt == nil {
		t.Errorf("run was not marked finished")
	}

	results, err := h.store.ListRunResults(ctx, detail.ID)
	if err != nil {
		t.Fatalf("ListRunResults: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d stored results, want 1", len(results))
	}
	if results[0].Outcome != domain.OutcomeModified {
		t.Errorf("stored outcome = %q, want modified", results[0].Outcome)
	}
}

func TestTriggerSyncDebounce(t *testing.T) {
	h := newHarness(t)
	h.writeManifest(t, "keystore.yaml", `resources:
  - kind: keystore
    name: CellDefaultKeyStore
    scope:
      kind: cell
      cell: CELL_01
    attributes:
      description: d0
`)

	h.reconciler.TriggerSync()
	h.reconciler.TriggerSync()
	h.reconciler.TriggerSync()

	deadline := time.After(2 * time.Second)
	for {
		runs, err := h.store.ListRuns(context.Background(), 10)
		if err != nil {
			t.Fatalf("ListRuns: %v", err)
		}
		if len(runs) == 1 && runs[0].FinishedAt != nil {
			return
		}
		if len(runs) > 1 {
			t.Fatalf("debounce collapsed into %d runs, want 1", len(runs))
		}
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for debounced run, have %d", len(runs))
		case <-time.After(10 * time.Millisecond):
		}
	}
}
