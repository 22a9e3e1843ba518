// SPDX-License-Identifier: Apache-2.0

// Package patchgen implements the patch generator: it pairs two
// metadata.VersionDocuments and yields a metadata.PatchDocument, raising
// an interactive disambiguation request (Doubt) whenever a name-set
// mismatch at some nesting level cannot be resolved automatically.
package patchgen

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Doubt is the engine's signal that a diff is ambiguous and requires
// human disambiguation. It names the sub-entity kind and the two name
// sets under comparison.
type Doubt struct {
	Kind   string
	Names0 []string
	Names1 []string
}

// Suggestion is one close-match candidate offered alongside a Doubt
// prompt: a name present in Names0 that a name in Names1 closely
// resembles, ranked by subsequence-similarity distance, at most ten.
type Suggestion struct {
	Name0    string
	Name1    string
	Distance int
}

const maxSuggestions = 10

// suggestRenames proposes up to ten (name0, name1) rename candidates by
// ranking every name1 ∈ Names1\Names0 against every name0 ∈ Names0\Names1
// using fuzzy subsequence distance, closest first.
func suggestRenames(d Doubt) []Suggestion {
	only0 := setDiff(d.Names0, d.Names1)
	only1 := setDiff(d.Names1, d.Names0)
	if len(only0) == 0 || len(only1) == 0 {
		return nil
	}

	var all []Suggestion
	for _, n1 := range only1 {
		ranks := fuzzy.RankFind(n1, only0)
		for _, r := range ranks {
			all = append(all, Suggestion{Name0: r.Target, Name1: n1, Distance: r.Distance})
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Distance < all[j].Distance })
	if len(all) > maxSuggestions {
		all = all[:maxSuggestions]
	}
	return all
}

func setDiff(a, b []string) []string {
	in := make(map[string]bool, len(b))
	for _, n := range b {
		in[n] = true
	}
	var out []string
	for _, n := range a {
		if !in[n] {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}
