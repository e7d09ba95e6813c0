// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package plan

import "math"

// DefaultTail is the endgame shape of a narrowing plan: the final rounds
// always aim for 5, then 3, then 1 survivors when enough rounds exist.
var DefaultTail = []int{5, 3, 1}

// DefaultMinReduction is the smallest fraction a forced early round must
// remove when the geometric step fails to shrink the set.
const DefaultMinReduction = 0.2

// Compute returns the round targets for a narrowing session: element i is the
// number of items that must remain after round i. The result always starts at
// or below itemCount, is strictly decreasing, and ends at 1.
//
// One round exists per invited participant (the organizer does not narrow).
// When more rounds are available than the tail shape provides, the early
// rounds shrink the set geometrically toward the tail's first target.
//
// Compute is pure: identical input produces identical output.
func Compute(itemCount, participantCount int, tail []int, minReduction float64) []int {
	if len(tail) == 0 {
		tail = DefaultTail
	}
	if minReduction <= 0 || minReduction >= 1 {
		minReduction = DefaultMinReduction
	}

	// Too small to stage: a single round settles it.
	if itemCount < 5 {
		return []int{1}
	}

	rounds := participantCount - 1
	if rounds < 1 {
		rounds = 1
	}

	var steps []int
	if rounds <= len(tail) {
		for _, t := range tail[len(tail)-rounds:] {
			if t > itemCount {
				t = itemCount
			}
			steps = append(steps, t)
		}
	} else {
		early := rounds - len(tail)
		f := math.Pow(float64(tail[0])/float64(itemCount), 1/float64(early))
		cur := itemCount
		for i := 0; i < early; i++ {
			next := int(math.Round(float64(cur) * f))
			if early == 1 && next <= tail[0] {
				// A single geometric step lands on the tail's first target;
				// aim for roughly 30% of the original size instead, kept
				// strictly between the tail head and the full set.
				next = int(math.Round(0.3 * float64(itemCount)))
				if next <= tail[0] {
					next = tail[0] + 1
				}
				if next >= itemCount {
					next = itemCount - 1
				}
			} else if next >= cur {
				next = cur - int(math.Ceil(float64(cur)*minReduction))
			}
			steps = append(steps, next)
			cur = next
		}
		for _, t := range tail {
			if t > cur {
				t = cur
			}
			steps = append(steps, t)
			cur = t
		}
	}

	// Collapse into a strictly decreasing sequence, dropping any step that
	// fails to shrink the set.
	out := make([]int, 0, len(steps))
	prev := itemCount + 1
	for _, v := range steps {
		if v >= 1 && v < prev {
			out = append(out, v)
			prev = v
		}
	}
	if len(out) == 0 || out[len(out)-1] != 1 {
		out = append(out, 1)
	}
	return out
}
