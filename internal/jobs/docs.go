// Package jobs runs the periodic ticks of the dispatch engine.
//
// Three jobs share one shape: a robfig/cron schedule of "@every <interval>"
// wrapped in SkipIfStillRunning, a context cancelled by Stop, and a Run method
// that performs exactly one tick and can be called directly.
//
//   - CourierAssignmentJob assigns the oldest created order to the best free courier.
//   - CourierMovementJob moves couriers one step towards their orders and completes arrivals.
//   - OutboxJob relays unpublished domain events to the message bus. Trigger runs
//     an extra tick between scheduled ones, e.g. when Postgres notifies about new rows.
//
// A failed tick is logged and counted; the state it did not commit is retried on the next tick.
package jobs
