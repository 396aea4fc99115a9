// Package services holds domain services: behaviour that spans the courier and order
// aggregates without belonging to either of them.
//
// The package includes:
//   - OrderDispatcher: picks the fastest courier able to carry an order and binds the two
package services
