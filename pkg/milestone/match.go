// SPDX-License-Identifier: Apache-2.0

package milestone

import (
	"fmt"
	"path"
)

// Select resolves patterns against this milestone's own Steps (never the
// chained previous milestone's), returning the matched step indices in
// declaration order with duplicates removed. An empty pattern list selects
// every step. Each pattern is either:
//
//   - a glob (path.Match syntax) matched against Repr(step), e.g.
//     "addusers.*.f*" or "*.03.*"; or
//   - a glob range "A-B": the inclusive run of steps from the first step
//     whose Repr matches glob A through the last step whose Repr matches
//     glob B. An empty A starts at the first step; an empty B ends at the
//     last step.
func Select(steps []Step, patterns []string) ([]int, error) {
	if len(patterns) == 0 {
		all := make([]int, len(steps))
		for i := range steps {
			all[i] = i
		}
		return all, nil
	}

	seen := map[int]bool{}
	var ordered []int
	add := func(i int) {
		if !seen[i] {
			seen[i] = true
			ordered = append(ordered, i)
		}
	}

	for _, pattern := range patterns {
		if lo, hi, isRange := splitRange(pattern); isRange {
			start, end, err := resolveRange(steps, lo, hi)
			if err != nil {
				return nil, fmt.Errorf("pattern %q: %w", pattern, err)
			}
			for i := start; i <= end; i++ {
				add(i)
			}
			continue
		}

		matchedAny := false
		for i, s := range steps {
			ok, err := path.Match(pattern, Repr(s))
			if err != nil {
				return nil, fmt.Errorf("pattern %q: %w", pattern, err)
			}
			if ok {
				matchedAny = true
				add(i)
			}
		}
		if !matchedAny {
			return nil, fmt.Errorf("pattern %q matched no step", pattern)
		}
	}

	sortInts(ordered)
	return ordered, nil
}

// splitRange recognizes the "A-B" glob-range syntax. A plain glob may
// itself contain "-" inside a character class ("[a-z]"); to avoid
// misinterpreting those, a range is only recognized when the hyphen falls
// outside of any "[...]" span.
func splitRange(pattern string) (lo, hi string, isRange bool) {
	depth := 0
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '[':
			depth++
		case ']':
			if depth > 0 {
				depth--
			}
		case '-':
			if depth == 0 {
				return pattern[:i], pattern[i+1:], true
			}
		}
	}
	return "", "", false
}

func resolveRange(steps []Step, lo, hi string) (start, end int, err error) {
	start = 0
	if lo != "" {
		start, err = firstMatch(steps, lo, false)
		if err != nil {
			return 0, 0, err
		}
	}
	end = len(steps) - 1
	if hi != "" {
		end, err = firstMatch(steps, hi, true)
		if err != nil {
			return 0, 0, err
		}
	}
	if start > end {
		return 0, 0, fmt.Errorf("range start %q occurs after end %q", lo, hi)
	}
	return start, end, nil
}

// firstMatch returns the first (or, with last=true, the last) step index
// whose Repr matches glob.
func firstMatch(steps []Step, glob string, last bool) (int, error) {
	found := -1
	for i, s := range steps {
		ok, err := path.Match(glob, Repr(s))
		if err != nil {
			return 0, err
		}
		if ok {
			found = i
			if !last {
				return i, nil
			}
		}
	}
	if found < 0 {
		return 0, fmt.Errorf("no step matches %q", glob)
	}
	return found, nil
}

func sortInts(xs []int) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j] < xs[j-1]; j-- {
			xs[j], xs[j-1] = xs[j-1], xs[j]
		}
	}
}
