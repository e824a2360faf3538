package usersink_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-configfile/pkg/activity"
	"github.com/goliatone/go-configfile/pkg/activity/usersink"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

type recordingSink struct {
	records []usertypes.ActivityRecord
	err     error
}

func (s *recordingSink) Log(_ context.Context, record usertypes.ActivityRecord) error {
	s.records = append(s.records, record)
	return s.err
}

func TestHookNotifyMapsEvent(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	actorID := uuid.New()
	tenantID := uuid.New()

	event := activity.BuildConfigUpdatedEvent(activity.ConfigEventInput{
		ActorID:    actorID.String(),
		UserID:     "not-a-uuid",
		TenantID:   tenantID.String(),
		Config:     "server",
		Key:        "workers",
		Source:     "/etc/app.config",
		NewValues:  []string{"8"},
		Channel:    "config",
		OccurredAt: now,
	})

	if err := hook.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}

	record := sink.records[0]
	if record.ActorID != actorID || record.TenantID != tenantID {
		t.Fatalf("unexpected identity mapping: %+v", record)
	}
	if record.UserID != uuid.Nil {
		t.Fatalf("expected invalid user id to map to uuid.Nil, got %s", record.UserID)
	}
	if record.Verb != activity.VerbUpdated || record.ObjectType != activity.ObjectTypeConfig || record.ObjectID != "server.workers" {
		t.Fatalf("unexpected record payload: %+v", record)
	}
	if record.Channel != "config" || !record.OccurredAt.Equal(now) {
		t.Fatalf("unexpected channel/time: %+v", record)
	}
	if record.Data["source"] != "/etc/app.config" || record.Data["key"] != "workers" {
		t.Fatalf("expected metadata passthrough, got %v", record.Data)
	}
}

func TestHookNotifySkipsIncompleteEvent(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	if err := hook.Notify(context.Background(), activity.Event{}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(sink.records) != 0 {
		t.Fatalf("expected no records for empty event, got %d", len(sink.records))
	}
}

func TestHookNotifyWithoutSink(t *testing.T) {
	hook := usersink.Hook{}
	if err := hook.Notify(context.Background(), activity.BuildConfigLoadedEvent(activity.ConfigEventInput{Source: "a"})); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestHookNotifyPropagatesSinkError(t *testing.T) {
	boom := errors.New("sink down")
	hook := usersink.Hook{Sink: &recordingSink{err: boom}}

	err := hook.Notify(context.Background(), activity.BuildConfigWrittenEvent(activity.ConfigEventInput{Source: "out.config"}))
	if !errors.Is(err, boom) {
		t.Fatalf("expected sink error, got %v", err)
	}
}

func TestHookNotifyDefaultsTimestamp(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	err := hook.Notify(context.Background(), activity.Event{
		Verb:       activity.VerbDeleted,
		ObjectType: activity.ObjectTypeConfig,
		ObjectID:   "a",
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if sink.records[0].OccurredAt.IsZero() {
		t.Fatalf("expected occurred_at to be defaulted")
	}
	if sink.records[0].Data != nil {
		t.Fatalf("expected nil data for bare event, got %v", sink.records[0].Data)
	}
}
