// Package notifications delivers push notifications for queue and
// completion events via ntfy.
package notifications
