package configfile

import (
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-configfile/pkg/activity"
	"github.com/google/go-cmp/cmp"
)

func mustParse(t *testing.T, text string, opts ...Option) *Config {
	t.Helper()
	cfg, err := Parse(strings.NewReader(text), opts...)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return cfg
}

func TestNewScopeCopiesMetadata(t *testing.T) {
	meta := map[string]any{"owner": "system"}
	scope := NewScope("system", 50,
		WithScopeLabel("System Defaults"),
		WithScopeMetadata(meta),
	)

	meta["owner"] = "mutated"

	if got := scope.Metadata["owner"]; got != "system" {
		t.Fatalf("expected metadata copy to remain 'system', got %q", got)
	}
	if scope.Label != "System Defaults" {
		t.Fatalf("label not set, got %q", scope.Label)
	}
}

func TestNewLayerClonesConfig(t *testing.T) {
	cfg := mustParse(t, "env = prod\n")
	layer := NewLayer(NewScope("user", 100), cfg, WithSnapshotID("abc-123"))

	cfg.Set("env", "qa")
	if got := layer.Config.GetStringOr("env", ""); got != "prod" {
		t.Fatalf("expected layer config to remain immutable; got %q", got)
	}
	layer.Config.Set("env", "staging")
	if got := cfg.GetStringOr("env", ""); got != "qa" {
		t.Fatalf("mutating layer config should not affect original, got %q", got)
	}
	if layer.SnapshotID != "abc-123" {
		t.Fatalf("snapshot id not set, got %q", layer.SnapshotID)
	}

	empty := NewLayer(NewScope("empty", 1), nil)
	if empty.Config == nil || empty.Config.Len() != 0 {
		t.Fatalf("expected nil config to become an empty layer")
	}
}

func TestNewStackOrdersAndValidates(t *testing.T) {
	user := NewLayer(NewScope("user", 300), New())
	group := NewLayer(NewScope("group", 200), New())
	defaults := NewLayer(NewScope("defaults", 100), New())

	stack, err := NewStack(defaults, user, group)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	layers := stack.Layers()
	wantOrder := []string{"user", "group", "defaults"}
	for i, want := range wantOrder {
		if layers[i].Scope.Name != want {
			t.Fatalf("expected layer %d to be %q, got %q", i, want, layers[i].Scope.Name)
		}
	}
	if stack.Len() != 3 {
		t.Fatalf("expected 3 layers, got %d", stack.Len())
	}

	if _, err := NewStack(user, NewLayer(NewScope("user", 50), New())); !errors.Is(err, ErrDuplicateScopeName) {
		t.Fatalf("expected duplicate scope name error, got %v", err)
	}
	if _, err := NewStack(
		NewLayer(NewScope("alpha", 100), New()),
		NewLayer(NewScope("beta", 100), New()),
	); !errors.Is(err, ErrPriorityOrder) {
		t.Fatalf("expected priority order error, got %v", err)
	}
	if _, err := NewStack(NewLayer(Scope{Priority: 1}, New())); !errors.Is(err, ErrScopeNameRequired) {
		t.Fatalf("expected scope name error, got %v", err)
	}
}

func TestStackMergeStrongestWins(t *testing.T) {
	defaults := NewLayer(NewScope("defaults", 100), mustParse(t, `
workers = 2
log.level = info
hosts = a
hosts = b
`))
	group := NewLayer(NewScope("group", 200), mustParse(t, `
workers = 4
region = eu
`))
	user := NewLayer(NewScope("user", 300), mustParse(t, `
log.level = debug
hosts = c
`))

	stack, err := NewStack(defaults, user, group)
	if err != nil {
		t.Fatalf("stack validation failed: %v", err)
	}
	merged, err := stack.Merge(WithName("merged"))
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	if merged.Name() != "merged" {
		t.Fatalf("expected merge options to apply, got name %q", merged.Name())
	}
	want := []string{"workers", "log.level", "hosts", "region"}
	if diff := cmp.Diff(want, merged.Keys()); diff != "" {
		t.Fatalf("unexpected key order (-want +got):\n%s", diff)
	}
	if got, _ := merged.GetInt("workers"); got != 4 {
		t.Fatalf("expected group workers to win, got %d", got)
	}
	if got := merged.GetStringOr("log.level", ""); got != "debug" {
		t.Fatalf("expected user log level, got %q", got)
	}
	if diff := cmp.Diff([]string{"c"}, merged.GetList("hosts")); diff != "" {
		t.Fatalf("expected user hosts to replace the whole list (-want +got):\n%s", diff)
	}
}

func TestStackMergeRequiresLayers(t *testing.T) {
	stack, err := NewStack()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := stack.Merge(); !errors.Is(err, ErrEmptyStack) {
		t.Fatalf("expected empty stack error, got %v", err)
	}
}

func TestStackMergeEmitsLayerEvents(t *testing.T) {
	capture := &activity.CaptureHook{}
	stack, err := NewStack(
		NewLayer(NewScope("system", ScopePrioritySystem), mustParse(t, "a = 1\n"), WithSnapshotID("sys-1")),
		NewLayer(NewScope("user", ScopePriorityUser), mustParse(t, "b = 2\n")),
	)
	if err != nil {
		t.Fatalf("stack: %v", err)
	}
	if _, err := stack.Merge(WithName("app"), WithActivityHooks(activity.Hooks{capture}, activity.Config{})); err != nil {
		t.Fatalf("merge: %v", err)
	}

	if len(capture.Events) != 2 {
		t.Fatalf("expected 2 layer events, got %d", len(capture.Events))
	}
	first := capture.Events[0]
	if first.Verb != activity.VerbLayerApplied || first.ObjectType != activity.ObjectTypeLayer {
		t.Fatalf("unexpected event: %+v", first)
	}
	if first.Metadata["scope_name"] != "system" || first.Metadata["snapshot_id"] != "sys-1" {
		t.Fatalf("expected weakest layer first with scope metadata, got %+v", first.Metadata)
	}
	if capture.Events[1].Metadata["scope_name"] != "user" {
		t.Fatalf("expected user layer second, got %+v", capture.Events[1].Metadata)
	}
}

func TestStackLayersAreImmutable(t *testing.T) {
	stack, err := NewStack(
		NewLayer(NewScope("a", 100, WithScopeMetadata(map[string]any{"owner": "a"})), mustParse(t, "key = value\n")),
		NewLayer(NewScope("b", 50), New()),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	layers := stack.Layers()
	layers[0].Scope.Metadata["owner"] = "mutated"
	layers[0].Config.Set("key", "changed")

	again := stack.Layers()
	if again[0].Scope.Metadata["owner"] != "a" {
		t.Fatalf("expected scope metadata to be copied, got %v", again[0].Scope.Metadata)
	}
	if got := again[0].Config.GetStringOr("key", ""); got != "value" {
		t.Fatalf("expected layer config to be copied, got %q", got)
	}
}

func TestStackTraceReportsEveryLayer(t *testing.T) {
	stack, err := NewStack(
		NewLayer(NewScope("system", ScopePrioritySystem), mustParse(t, "port = 80\n"), WithSnapshotID("sys")),
		NewLayer(NewScope("host", ScopePriorityHost), mustParse(t, "name = box\n")),
		NewLayer(NewScope("user", ScopePriorityUser), mustParse(t, "port = 8080\n")),
	)
	if err != nil {
		t.Fatalf("stack: %v", err)
	}

	trace := stack.Trace("port")
	if trace.Key != "port" || len(trace.Layers) != 3 {
		t.Fatalf("unexpected trace: %+v", trace)
	}
	found := []bool{trace.Layers[0].Found, trace.Layers[1].Found, trace.Layers[2].Found}
	if diff := cmp.Diff([]bool{true, false, true}, found); diff != "" {
		t.Fatalf("unexpected found flags (-want +got):\n%s", diff)
	}

	winner, ok := trace.Effective()
	if !ok || winner.Scope.Name != "user" || winner.Values[0] != "8080" {
		t.Fatalf("expected user layer to win, got %+v", winner)
	}

	payload, err := trace.ToJSON()
	if err != nil {
		t.Fatalf("to json: %v", err)
	}
	decoded, err := TraceFromJSON(payload)
	if err != nil {
		t.Fatalf("from json: %v", err)
	}
	if diff := cmp.Diff(trace, decoded); diff != "" {
		t.Fatalf("trace json mismatch (-want +got):\n%s", diff)
	}

	if _, ok := stack.Trace("missing").Effective(); ok {
		t.Fatalf("expected no effective layer for missing key")
	}
}

func TestSystemSiteHostUser(t *testing.T) {
	system := mustParse(t, "timeout = 30s\nretries = 3\n")
	host := mustParse(t, "retries = 5\n")
	user := mustParse(t, "timeout = 5s\n")

	merged, err := SystemSiteHostUser(system, nil, host, user)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if got, _ := merged.GetString("timeout"); got != "5s" {
		t.Fatalf("expected user timeout, got %q", got)
	}
	if got, _ := merged.GetInt("retries"); got != 5 {
		t.Fatalf("expected host retries, got %d", got)
	}

	if _, err := SystemSiteHostUser(nil, nil, nil, nil); !errors.Is(err, ErrEmptyStack) {
		t.Fatalf("expected empty stack error, got %v", err)
	}
}
