// SPDX-License-Identifier: Apache-2.0

package patchgen

import (
	"fmt"

	"github.com/pterm/pterm"
)

// PromptIO is the interactive completion capability injected into the
// patch generator: Resolve presents a Doubt (plus precomputed rename
// Suggestions) and returns the raw answer line typed by the user or
// supplied by an automation harness.
type PromptIO interface {
	Resolve(d Doubt, suggestions []Suggestion) (string, error)
}

// PtermPrompt is the interactive PromptIO backing makeversion/makepatch,
// rendering the Doubt and its suggestions via pterm.
type PtermPrompt struct{}

var _ PromptIO = PtermPrompt{}

func (PtermPrompt) Resolve(d Doubt, suggestions []Suggestion) (string, error) {
	pterm.Warning.Printfln("ambiguous %s diff: names0=%v names1=%v", d.Kind, d.Names0, d.Names1)
	if len(suggestions) > 0 {
		pterm.Info.Println("suggestions:")
		for i, s := range suggestions {
			pterm.Println(fmt.Sprintf("  %d) rename %s/%s (distance %d)", i+1, s.Name0, s.Name1, s.Distance))
		}
	}
	return pterm.DefaultInteractiveTextInput.
		WithDefaultText("create N | unchanged N | rename N0/N1 | drop N").
		Show()
}

// StaticPrompt is a non-interactive PromptIO for tests and scripted
// harnesses: it returns canned answer lines in order, one per Resolve
// call, regardless of which Doubt is presented.
type StaticPrompt struct {
	Answers []string
	next    int
}

var _ PromptIO = &StaticPrompt{}

func (p *StaticPrompt) Resolve(d Doubt, suggestions []Suggestion) (string, error) {
	if p.next >= len(p.Answers) {
		return "", fmt.Errorf("patchgen: StaticPrompt exhausted after %d answers", p.next)
	}
	a := p.Answers[p.next]
	p.next++
	return a, nil
}
