// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package plan computes the round targets for a narrowing session.

	targets := plan.Compute(50, 4, plan.DefaultTail, plan.DefaultMinReduction)
	// [5, 3, 1]

	targets = plan.Compute(50, 5, plan.DefaultTail, plan.DefaultMinReduction)
	// [15, 5, 3, 1]

The function is pure and deterministic; the session engine calls it once at
session creation and again only on reset.
*/
package plan
