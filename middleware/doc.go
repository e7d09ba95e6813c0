// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and response helpers for the
Narrowly API: request logging, JSON encoding/decoding, structured error
responses, and CORS.
*/
package middleware
