// Package subscription implements a path-addressed publish/subscribe store.
//
// A Store owns a nested data tree (see package pathtree). Listeners
// subscribe to a path and are called back when data is published there.
//
// # Groups
//
// Subscriptions to the same path form a group. A group is created by the
// first Subscribe to its path and discarded when its last subscription is
// removed, so a group exists exactly while it has listeners. Each group
// owns one debounce gate.
//
// # Publishing
//
// Publish shallow-merges a patch into the node at a path and arms the
// group's gate. When the gate settles, every subscription in the group at
// that moment is called, in subscription order, with a copy of the current
// value at the path. Several publishes within the debounce delay produce
// a single round of callbacks that sees the result of all of them.
//
// Publishing to a path nobody subscribes to fails with ErrNoSuchGroup and
// leaves the tree untouched, unless Config.AllowUnobservedPublish is set,
// in which case the merge is applied and nothing is notified.
//
// # Callbacks
//
// Callbacks run without any store lock held and may call back into the
// store, including through the Subscription passed to them. With the real
// clock they run on timer goroutines.
package subscription
