// Package roles defines typed contracts for plugin roles.
// Plugins that fill a role (declared via PluginInfo.Roles) should implement
// the corresponding interface so callers can use type-safe access via
// PluginResolver.ResolveByRole followed by a type assertion.
package roles

import (
	"context"

	"github.com/HerbHall/healthgenie/pkg/llm"
)

// Role name constants match the strings used in PluginInfo.Roles.
const (
	RoleLLM          = "llm"
	RoleNotification = "notification"
)

// LLMProvider is implemented by plugins that hold a resolved connection to
// a text-generation model. Resolve via PluginResolver.ResolveByRole(RoleLLM)
// then type-assert.
type LLMProvider interface {
	// Conn returns the currently resolved connection, or nil when no
	// endpoint/model pair has been resolved yet (or resolution failed).
	Conn() *llm.Conn
}

// Notifier is implemented by plugins that send notifications (webhooks,
// email, Slack, etc.).
type Notifier interface {
	// Notify sends a notification with the given payload.
	Notify(ctx context.Context, notification Notification) error
}
