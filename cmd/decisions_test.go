package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/pders01/reflexion/internal/models"
)

func newDecisionsBackend(t *testing.T, body string) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/decisions" || r.URL.Query().Get("thread_id") != "t1" {
			t.Errorf("unexpected backend call: %s", r.URL)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	viper.Set("backend.url", srv.URL)
}

func TestDecisionsCommand(t *testing.T) {
	setupRepo(t)
	newDecisionsBackend(t, `[
		{"id":"d1","type":"concept_brief","title":"Pick a brief","status":"pending",
		 "args":{"model_summary":"Three options","preview_data":{"diff":`+testBrief+`}}},
		{"id":"d2","type":"hydration","title":"Done already","status":"approved"},
		{"id":"d3","type":"note","title":"No preview","status":"pending"}
	]`)

	decisionsThread = "t1"
	decisionsJSON, decisionsToon = false, false

	c, out := newTestCmd()
	if err := runDecisions(c, []string{}); err != nil {
		t.Fatalf("decisions command failed: %v", err)
	}

	got := out.String()
	for _, want := range []string{"Found 2 pending decision(s)", "d1", "Preview: concept brief, 3 option(s)", "note ready to apply"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "d2") {
		t.Errorf("approved decision listed:\n%s", got)
	}
}

func TestDecisionsJSON(t *testing.T) {
	setupRepo(t)
	newDecisionsBackend(t, `{"unexpected":"shape"}`)

	decisionsThread = "t1"
	decisionsJSON = true
	t.Cleanup(func() { decisionsJSON = false })

	c, out := newTestCmd()
	if err := runDecisions(c, []string{}); err != nil {
		t.Fatalf("decisions command failed: %v", err)
	}
	var items []models.PreviewItem
	if err := json.Unmarshal(out.Bytes(), &items); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, out.String())
	}
	if len(items) != 0 {
		t.Errorf("items = %+v, want none", items)
	}
}

func TestDecisionsInvalidPreview(t *testing.T) {
	setupRepo(t)
	newDecisionsBackend(t, `[
		{"id":"d1","type":"concept_brief","status":"pending",
		 "args":{"preview_data":{"diff":{"options":[],"recommended_index":0,"metadata":{"num_options":0}}}}},
		{"id":"d2","type":"concept_brief","status":"pending",
		 "args":{"preview_data":{"diff":`+testBrief+`}}}
	]`)

	decisionsThread = "t1"
	decisionsJSON, decisionsToon = false, false

	c, out := newTestCmd()
	if err := runDecisions(c, []string{}); err != nil {
		t.Fatalf("decisions command failed: %v", err)
	}

	got := out.String()
	for _, want := range []string{"Found 2 pending decision(s)", "d1", "Preview: unavailable", "no options", "Preview: concept brief, 3 option(s)"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestDecisionsBackendDown(t *testing.T) {
	setupRepo(t)
	viper.Set("backend.url", "http://127.0.0.1:1")

	decisionsThread = "t1"
	if err := runDecisions(nil, []string{}); err == nil {
		t.Error("expected error when the backend is unreachable")
	}
}
