// Package notifications delivers operator push notifications via ntfy.
//
// NewService returns a no-op implementation when no topic is configured, so
// callers never check for nil. Publication summaries and publication failures
// can be toggled independently in the [notifications] config section.
package notifications
