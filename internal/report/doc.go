// Package report posts periodic activity digests into the event pipeline.
//
// On each scheduled firing the service counts the events recorded since the
// previous firing and emits one status event carrying the per-kind totals.
// Schedules accept cron specs, plain durations, and HH:MM intervals.
package report
