package activity

import (
	"strings"
	"time"
)

const (
	VerbLoaded       = "config.loaded"
	VerbUpdated      = "config.updated"
	VerbDeleted      = "config.deleted"
	VerbWritten      = "config.written"
	VerbLayerApplied = "config.layer.applied"

	ObjectTypeConfig = "config"
	ObjectTypeLayer  = "config.layer"
)

// ScopeContext captures the layer a change belongs to.
type ScopeContext struct {
	Name       string
	Label      string
	Priority   int
	Metadata   map[string]any
	SnapshotID string
}

// ConfigEventInput describes the common fields of config lifecycle events.
type ConfigEventInput struct {
	ActorID    string
	UserID     string
	TenantID   string
	ObjectID   string
	Channel    string
	Config     string
	Source     string
	Key        string
	Keys       []string
	OldValues  []string
	NewValues  []string
	Metadata   map[string]any
	Scope      ScopeContext
	OccurredAt time.Time
}

// BuildConfigLoadedEvent describes a config read from a resource.
func BuildConfigLoadedEvent(input ConfigEventInput) Event {
	return buildConfigEvent(VerbLoaded, ObjectTypeConfig, input)
}

// BuildConfigUpdatedEvent describes a key whose values changed.
func BuildConfigUpdatedEvent(input ConfigEventInput) Event {
	return buildConfigEvent(VerbUpdated, ObjectTypeConfig, input)
}

// BuildConfigDeletedEvent describes a removed key.
func BuildConfigDeletedEvent(input ConfigEventInput) Event {
	return buildConfigEvent(VerbDeleted, ObjectTypeConfig, input)
}

// BuildConfigWrittenEvent describes a config serialized to a resource.
func BuildConfigWrittenEvent(input ConfigEventInput) Event {
	return buildConfigEvent(VerbWritten, ObjectTypeConfig, input)
}

// BuildLayerAppliedEvent describes a scoped layer merged into a config.
func BuildLayerAppliedEvent(input ConfigEventInput) Event {
	return buildConfigEvent(VerbLayerApplied, ObjectTypeLayer, input)
}

func buildConfigEvent(verb, objectType string, input ConfigEventInput) Event {
	metadata := cloneMap(input.Metadata)
	set := func(key string, value any) {
		if metadata == nil {
			metadata = map[string]any{}
		}
		metadata[key] = value
	}

	if input.Config != "" {
		set("config", input.Config)
	}
	if input.Key != "" {
		set("key", input.Key)
	}
	if input.Scope.Name != "" {
		set("scope_name", input.Scope.Name)
		set("scope_priority", input.Scope.Priority)
		if input.Scope.Label != "" {
			set("scope_label", input.Scope.Label)
		}
		if len(input.Scope.Metadata) > 0 {
			set("scope_metadata", cloneMap(input.Scope.Metadata))
		}
	}
	if input.Scope.SnapshotID != "" {
		set("snapshot_id", input.Scope.SnapshotID)
	}
	if input.OldValues != nil {
		set("old_values", cloneStrings(input.OldValues))
	}
	if input.NewValues != nil {
		set("new_values", cloneStrings(input.NewValues))
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		UserID:     strings.TrimSpace(input.UserID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: objectType,
		ObjectID:   objectID(objectType, input),
		Channel:    strings.TrimSpace(input.Channel),
		Source:     strings.TrimSpace(input.Source),
		Keys:       cloneStrings(input.Keys),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

// objectID prefers an explicit id, then the qualified key, the source, the
// snapshot id, and finally the object type.
func objectID(objectType string, input ConfigEventInput) string {
	if id := strings.TrimSpace(input.ObjectID); id != "" {
		return id
	}
	if key := strings.TrimSpace(input.Key); key != "" {
		if name := strings.TrimSpace(input.Config); name != "" {
			return name + "." + key
		}
		return key
	}
	if source := strings.TrimSpace(input.Source); source != "" {
		return source
	}
	if id := strings.TrimSpace(input.Scope.SnapshotID); id != "" {
		return id
	}
	if name := strings.TrimSpace(input.Scope.Name); name != "" {
		return name
	}
	return objectType
}
