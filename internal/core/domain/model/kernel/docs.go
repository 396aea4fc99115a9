// Package kernel holds the value objects shared by the courier and order aggregates:
// grid Location, UUID identity and the RandomSource used to place things at random.
//
// Values are immutable and constructed through New* functions; a zero value fails Validate.
package kernel
