// Package poller keeps the console's view of backend state fresh. It polls
// the global status and watched project's clips on an interval, suppresses
// no-change churn via structural comparison, and deduplicates completion
// announcements on the marker value.
package poller
