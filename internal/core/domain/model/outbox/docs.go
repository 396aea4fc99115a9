// Package outbox models persisted domain events awaiting publication.
//
// A Message is written in the same transaction as the aggregate change that raised
// the event and is marked processed once, after the event has been published.
package outbox
