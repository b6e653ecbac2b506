// Package bus delivers messages between components inside one process.
//
// A Board routes every published message to the Queues subscribed to its
// exact concrete type and to the Queues subscribed to all types. Queues are
// unbounded, lock-free FIFOs owned by their subscriber, who polls them with
// Remove. Nothing in this package starts goroutines or blocks a publisher.
//
// When copy-on-delivery is disabled (the default) every recipient receives
// the same message value and must treat it as read-only.
package bus
