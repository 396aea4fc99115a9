// Package order contains the Order aggregate.
//
// An order moves Created -> Assigned -> Completed. It references its courier by id only;
// every status change queues a StatusChangedEvent that the persistence layer writes to the outbox.
package order
