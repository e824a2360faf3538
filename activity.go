package configfile

import (
	"context"

	"github.com/goliatone/go-configfile/pkg/activity"
)

// WithActivityHooks enables change events for the config. Nil hooks are
// dropped; cfg.Enabled is forced on when at least one hook remains.
func WithActivityHooks(hooks activity.Hooks, cfg activity.Config) Option {
	normalized := cloneActivityHooks(hooks)
	return func(o *options) {
		o.activityHooks = normalized
		o.activity = cfg
		o.activity.Enabled = len(normalized) > 0
	}
}

// ActivityHooks returns a copy of the hooks configured on the config.
func (c *Config) ActivityHooks() activity.Hooks {
	if c == nil {
		return nil
	}
	return cloneActivityHooks(c.opts.activityHooks)
}

func (c *Config) emit(event activity.Event) {
	if c == nil || !c.emitter.Enabled() {
		return
	}
	if err := c.emitter.Emit(context.Background(), event); err != nil {
		c.log(Event{Kind: EventActivity, Path: c.source, Text: event.Verb, Err: err})
	}
}

func (c *Config) eventInput(key string, oldValues, newValues []string) activity.ConfigEventInput {
	return activity.ConfigEventInput{
		Config:    c.name,
		Source:    c.source,
		Key:       key,
		OldValues: oldValues,
		NewValues: newValues,
	}
}

func cloneActivityHooks(hooks activity.Hooks) activity.Hooks {
	if len(hooks) == 0 {
		return nil
	}
	normalized := make([]activity.ActivityHook, 0, len(hooks))
	for _, hook := range hooks {
		if hook != nil {
			normalized = append(normalized, hook)
		}
	}
	if len(normalized) == 0 {
		return nil
	}
	return activity.Hooks(normalized)
}
