// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package pubsub is the change distributor: an in-process registry that fans
committed session state out to live viewers.

	broker := pubsub.NewBroker()
	updates, cancel := broker.Subscribe(listID)
	defer cancel()

	broker.Publish(listID, view) // best-effort, skips full buffers

The broker is injected by the process bootstrap rather than held as a global,
and it is explicitly not the system of record: a viewer that misses an update
converges by refetching durable state.
*/
package pubsub
