// Package notifier turns important events into outward notifications.
//
// The service subscribes to the hub's wildcard key and classifies each
// event: a kind in the mutable importance set, or any event at error or
// warning severity, is formatted and delivered. Everything else is
// ignored.
//
// # Delivery
//
// Delivery walks the ranked transport strategies probed from the host
// channel (see internal/transport). Each event gets exactly one pass: the
// first strategy to succeed wins, a failing strategy falls through to the
// next, and when none are available or all fail the formatted message is
// written to the local log. There is no queue and no retry; a notification
// that cannot be delivered now is not delivered later.
package notifier
