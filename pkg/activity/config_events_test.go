package activity

import (
	"context"
	"testing"
)

func TestBuildConfigUpdatedEventIncludesScopeMetadata(t *testing.T) {
	meta := map[string]any{"custom": "value"}
	scopeMeta := map[string]any{"host_id": "web-1"}
	oldValues := []string{"5"}
	input := ConfigEventInput{
		ActorID:   " actor ",
		UserID:    " user ",
		TenantID:  " tenant ",
		Config:    "server",
		Key:       "workers",
		Metadata:  meta,
		Scope:     ScopeContext{Name: "host", Label: "Host", Priority: 300, Metadata: scopeMeta, SnapshotID: "snap-1"},
		OldValues: oldValues,
		NewValues: []string{"8"},
		Channel:   "config",
	}

	event := BuildConfigUpdatedEvent(input)

	if event.Verb != VerbUpdated {
		t.Fatalf("expected verb %s got %s", VerbUpdated, event.Verb)
	}
	if event.ObjectType != ObjectTypeConfig || event.ObjectID != "server.workers" {
		t.Fatalf("unexpected object fields: %+v", event)
	}
	if event.ActorID != "actor" || event.UserID != "user" || event.TenantID != "tenant" {
		t.Fatalf("unexpected identity fields: %+v", event)
	}
	if event.Metadata["key"] != "workers" || event.Metadata["config"] != "server" {
		t.Fatalf("expected key metadata, got %+v", event.Metadata)
	}
	if event.Metadata["scope_name"] != "host" || event.Metadata["scope_priority"] != 300 {
		t.Fatalf("expected scope metadata, got %+v", event.Metadata)
	}
	if event.Metadata["scope_label"] != "Host" || event.Metadata["snapshot_id"] != "snap-1" {
		t.Fatalf("expected scope label and snapshot id, got %+v", event.Metadata)
	}
	scopeMetadata, ok := event.Metadata["scope_metadata"].(map[string]any)
	if !ok || scopeMetadata["host_id"] != "web-1" {
		t.Fatalf("expected scope_metadata clone, got %v", event.Metadata["scope_metadata"])
	}
	old, ok := event.Metadata["old_values"].([]string)
	if !ok || len(old) != 1 || old[0] != "5" {
		t.Fatalf("expected old values, got %v", event.Metadata["old_values"])
	}
	old[0] = "changed"
	if oldValues[0] != "5" {
		t.Fatalf("expected input values untouched")
	}
	if meta["custom"] != "value" || len(meta) != 1 {
		t.Fatalf("expected input metadata untouched: %+v", meta)
	}
}

func TestBuildConfigDeletedEventUsesFallbackObjectID(t *testing.T) {
	event := BuildConfigDeletedEvent(ConfigEventInput{})
	if event.ObjectID != ObjectTypeConfig {
		t.Fatalf("expected fallback object ID %q, got %q", ObjectTypeConfig, event.ObjectID)
	}
	if event.Metadata != nil {
		t.Fatalf("expected no metadata, got %+v", event.Metadata)
	}
}

func TestBuildConfigWrittenEventUsesSource(t *testing.T) {
	event := BuildConfigWrittenEvent(ConfigEventInput{Source: "/tmp/out.config", Keys: []string{"a"}})
	if event.Verb != VerbWritten || event.ObjectID != "/tmp/out.config" {
		t.Fatalf("unexpected event: %+v", event)
	}
	if len(event.Keys) != 1 || event.Keys[0] != "a" {
		t.Fatalf("expected keys copied, got %v", event.Keys)
	}
}

func TestBuildLayerAppliedEventPrefersSnapshotID(t *testing.T) {
	event := BuildLayerAppliedEvent(ConfigEventInput{
		Scope: ScopeContext{Name: "site", SnapshotID: "snapshot-42"},
	})
	if event.Verb != VerbLayerApplied {
		t.Fatalf("expected verb %s got %s", VerbLayerApplied, event.Verb)
	}
	if event.ObjectType != ObjectTypeLayer || event.ObjectID != "snapshot-42" {
		t.Fatalf("unexpected object fields: %+v", event)
	}
}

func TestBuildConfigEventsWorkWithHooks(t *testing.T) {
	capture := &CaptureHook{}
	hooks := Hooks{capture}

	event := BuildConfigLoadedEvent(ConfigEventInput{Source: "app.config"})
	if err := hooks.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(capture.Events) != 1 || capture.Events[0].Verb != VerbLoaded {
		t.Fatalf("expected loaded event captured, got %+v", capture.Events)
	}
}
