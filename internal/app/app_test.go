package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/flowgrid/internal/config"
	"github.com/vk/flowgrid/internal/flow"
	"github.com/vk/flowgrid/internal/hcldoc"
	"github.com/vk/flowgrid/internal/registry"
	"github.com/vk/flowgrid/internal/testutil"
)

// formatted reads a constant, formats it with one decimal and prints it.
const formatted = `{
  "nodes": [
    {"type": "ConstF32", "label": "a", "inputs": [{"type": "F32", "label": "value", "value": VALUE}], "outputs": []},
    {"type": "FormatF32", "label": "fmt",
     "inputs": [{"type": "F32", "label": "value"}, {"type": "U16", "label": "precision", "value": 1}],
     "outputs": [{"type": "String", "label": "result"}]},
    {"type": "Print", "label": "shown", "inputs": [{"type": "String", "label": "value"}], "outputs": []}
  ],
  "connections": [
    {"source": {"nodeId": 0, "socketLabel": "value"}, "destination": {"nodeId": 1, "socketLabel": "value"}},
    {"source": {"nodeId": 1, "socketLabel": "result"}, "destination": {"nodeId": 2, "socketLabel": "value"}}
  ]
}`

func writeDoc(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
}

func formattedDoc(t *testing.T, value string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.json")
	writeDoc(t, path, strings.Replace(formatted, "VALUE", value, 1))
	return path
}

func testConfig(document string) *config.Config {
	cfg := config.Default()
	cfg.Document = document
	cfg.LogLevel = "debug"
	return &cfg
}

func setupAppTest(t *testing.T, cfg *config.Config, modules ...registry.Module) (*App, *testutil.SafeBuffer) {
	t.Helper()

	logBuffer := &testutil.SafeBuffer{}
	testApp := NewApp(logBuffer, cfg, modules...)

	t.Cleanup(func() {
		if os.Getenv("FLOWGRID_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})
	return testApp, logBuffer
}

func TestRunEvaluatesAndPrints(t *testing.T) {
	a, out := setupAppTest(t, testConfig(formattedDoc(t, "2.5")))

	require.NoError(t, a.Run(context.Background()))

	logs := out.String()
	assert.Contains(t, logs, `shown = "2.5"`)
	assert.Contains(t, logs, `1 fmt.result = "2.5"`)
	assert.Contains(t, logs, "run_id=")
	assert.Contains(t, logs, "Document pass complete.")
}

func TestRunWithoutEvaluation(t *testing.T) {
	cfg := testConfig(formattedDoc(t, "2.5"))
	cfg.Evaluate = false
	a, out := setupAppTest(t, cfg)

	require.NoError(t, a.Run(context.Background()))
	assert.NotContains(t, out.String(), "shown =")
}

func TestRunSavesConvertedDocument(t *testing.T) {
	cfg := testConfig(formattedDoc(t, "2.5"))
	cfg.Output = filepath.Join(t.TempDir(), "evaluated.hcl")
	a, _ := setupAppTest(t, cfg)

	require.NoError(t, a.Run(context.Background()))

	src, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)
	doc, diags := hcldoc.Decode(context.Background(), cfg.Output, src)
	require.Empty(t, diags)
	require.Len(t, doc.Nodes, 3)
	assert.Equal(t, "2.5", doc.Nodes[1].Outputs[0].Value.AsString(), "computed values are saved")
	require.Len(t, doc.Connections, 2)
}

func TestRunDiagnostics(t *testing.T) {
	body := `{"nodes": [{"type": "Teleport", "label": "x", "inputs": [], "outputs": []}], "connections": []}`

	testCases := []struct {
		name    string
		strict  bool
		wantErr string
	}{
		{name: "lenient", strict: false},
		{name: "strict", strict: true, wantErr: "document has 1 error diagnostic(s)"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "graph.json")
			writeDoc(t, path, body)
			cfg := testConfig(path)
			cfg.Strict = tc.strict
			a, out := setupAppTest(t, cfg)

			err := a.Run(context.Background())

			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Contains(t, out.String(), "Unknown node type")
		})
	}
}

func TestRunFailures(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.json")
	writeDoc(t, broken, `{"nodes": [`)
	unknown := filepath.Join(dir, "graph.yaml")
	writeDoc(t, unknown, "nodes: []")

	testCases := []struct {
		name     string
		document string
		wantErr  string
	}{
		{name: "syntax error", document: broken, wantErr: "failed to parse document"},
		{name: "missing file", document: filepath.Join(dir, "absent.json"), wantErr: "failed to read document"},
		{name: "unknown extension", document: unknown, wantErr: "cannot detect the format"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a, _ := setupAppTest(t, testConfig(tc.document))
			err := a.Run(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestRunCycleFallsBackToDocumentOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loop.hcl")
	writeDoc(t, path, `
node "MulF32" {
  label = "first"
  input "F32" "lhs" {}
  input "F32" "rhs" {
    value = 2
  }
  output "F32" "result" {}
}

node "MulF32" {
  label = "second"
  input "F32" "lhs" {}
  input "F32" "rhs" {
    value = 3
  }
  output "F32" "result" {}
}

connection {
  source {
    node   = 0
    socket = "result"
  }
  destination {
    node   = 1
    socket = "lhs"
  }
}

connection {
  source {
    node   = 1
    socket = "result"
  }
  destination {
    node   = 0
    socket = "lhs"
  }
}
`)
	a, out := setupAppTest(t, testConfig(path))

	require.NoError(t, a.Run(context.Background()))

	logs := out.String()
	assert.Contains(t, logs, "Graph contains a cycle.")
	assert.Contains(t, logs, "Falling back to document order.")
	assert.Contains(t, logs, "0 first.result = 0")
}

func TestRunSkipsPassThroughLoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relay.json")
	writeDoc(t, path, `{
  "nodes": [
    {"type": "ConstF32", "label": "a", "inputs": [{"type": "F32", "label": "value", "value": 2.5}], "outputs": []},
    {"type": "ConstF32", "label": "b", "inputs": [{"type": "F32", "label": "value"}], "outputs": []},
    {"type": "FormatF32", "label": "fmt",
     "inputs": [{"type": "F32", "label": "value"}, {"type": "U16", "label": "precision", "value": 1}],
     "outputs": [{"type": "String", "label": "result"}]}
  ],
  "connections": [
    {"source": {"nodeId": 0, "socketLabel": "value"}, "destination": {"nodeId": 1, "socketLabel": "value"}},
    {"source": {"nodeId": 1, "socketLabel": "value"}, "destination": {"nodeId": 0, "socketLabel": "value"}},
    {"source": {"nodeId": 1, "socketLabel": "value"}, "destination": {"nodeId": 2, "socketLabel": "value"}}
  ]
}`)
	a, out := setupAppTest(t, testConfig(path))

	require.NoError(t, a.Run(context.Background()))

	logs := out.String()
	assert.Contains(t, logs, "Pass-through loop")
	assert.Contains(t, logs, `2 fmt.result = "2.5"`)
}

func TestHandler(t *testing.T) {
	a, _ := setupAppTest(t, testConfig(formattedDoc(t, "2.5")))
	_, err := a.pass(context.Background())
	require.NoError(t, err)

	testCases := []struct {
		path string
		want string
	}{
		{path: "/health", want: "OK"},
		{path: "/metrics", want: `flowgrid_node_computes_total{type="FormatF32"} 1`},
		{path: "/metrics", want: "flowgrid_document_loads_total 1"},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			a.handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.want)
		})
	}
}

func TestWatchReloadsOnChange(t *testing.T) {
	path := formattedDoc(t, "2.5")
	cfg := testConfig(path)
	cfg.Watch = true
	a, out := setupAppTest(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Watching document for changes.")
	}, 5*time.Second, 10*time.Millisecond)

	writeDoc(t, path, strings.Replace(formatted, "VALUE", "4.5", 1))

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), `shown = "4.5"`)
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

// mislabelled registers a constructor whose node reports another type.
type mislabelled struct{}

func (mislabelled) Register(r *registry.Registry) {
	r.RegisterNode("Declared", func(label string) *flow.Node {
		n := flow.NewNode("Actual", label, nil)
		n.Ready()
		return n
	})
}

func TestNewAppPanicsOnInvalidRegistry(t *testing.T) {
	assert.Panics(t, func() {
		NewApp(&testutil.SafeBuffer{}, testConfig("unused.json"), mislabelled{})
	})
}

func TestFormatFor(t *testing.T) {
	testCases := []struct {
		path     string
		explicit string
		want     string
		wantErr  bool
	}{
		{path: "g.json", want: "json"},
		{path: "G.HCL", want: "hcl"},
		{path: "g.txt", explicit: "hcl", want: "hcl"},
		{path: "g.txt", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.path+"/"+tc.explicit, func(t *testing.T) {
			got, err := formatFor(tc.path, tc.explicit)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
