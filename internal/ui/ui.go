// Package ui holds the thin surfaces the engine talks back to the page
// through. Every failure mode ends in a non-blocking notification; nothing
// here may block or panic.
package ui

import "log/slog"

// Notifier renders transient warnings and inline validation messages.
type Notifier interface {
	// Warn shows a non-blocking warning notification.
	Warn(message string)

	// Inline reveals a validation message tied to one question's inputs.
	Inline(questionID uint, message string)
}

// Navigator performs a full-page redirect. After a completion redirect no
// further local state matters.
type Navigator interface {
	Redirect(url string)
}

// SlogNotifier logs notifications; the default sink when no widget layer is
// attached (headless tests, CLI tooling).
type SlogNotifier struct {
	Logger *slog.Logger
}

func (n *SlogNotifier) Warn(message string) {
	n.Logger.Warn("Notification", "message", message)
}

func (n *SlogNotifier) Inline(questionID uint, message string) {
	n.Logger.Warn("Inline validation", "question_id", questionID, "message", message)
}

// SlogNavigator logs redirects instead of performing them.
type SlogNavigator struct {
	Logger *slog.Logger
}

func (n *SlogNavigator) Redirect(url string) {
	n.Logger.Info("Redirect", "url", url)
}
