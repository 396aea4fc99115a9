// Package courier contains the Courier aggregate and its StoragePlace entities.
//
// A courier carries orders in storage places, each holding at most one order.
// It is free for dispatch only while every storage place is empty. Orders are
// placed best-fit: the smallest place that can hold the volume wins, earlier
// places win ties.
//
// Movement is grid based. In one tick a courier spends at most speed steps,
// first along X and then along Y, and never overshoots its target.
package courier
