// Package debounce coalesces bursts of requests into a single action.
//
// A Gate counts requests that are in flight. Every Arm call schedules its
// own timer for the gate's delay. When a timer fires it decrements the
// count; only the timer that brings the count back to zero runs an
// action, and that action is the one passed to the most recent Arm.
//
// A burst of k Arm calls spaced less than the delay apart therefore runs
// exactly one action, the last one, even when timers with equal deadlines
// fire in arbitrary order. Actions should read the state they need when
// they run rather than capture it when armed.
package debounce
