// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines the HTTP routes for the Narrowly API using Go 1.22+
method routing, and wires the store, engine, and handlers together.
*/
package router
