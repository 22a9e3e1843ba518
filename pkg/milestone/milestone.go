// SPDX-License-Identifier: Apache-2.0

// Package milestone implements the milestone driver: an
// ordered list of Steps, each exposing the schema state it targets, driven
// forward or backward against a migration.Core under glob/glob-range
// pattern selection.
package milestone

import (
	"context"
	"fmt"

	"github.com/charlesw1234/sooners-migrate/pkg/metadata"
	"github.com/charlesw1234/sooners-migrate/pkg/shardmap"
)

// Snapshot is one step's target state: the VersionDocument each component
// should be at, plus the SchemaParams deployment blob in effect. A
// component absent from Versions does not exist at this step: running
// onto such a snapshot drops all of that component's tables.
type Snapshot struct {
	Versions map[string]*metadata.VersionDocument
	Params   *shardmap.SchemaParams
}

// Step is one entry in a Milestone. Its target (Metadata1) is intrinsic —
// computed independently of any predecessor — while its metadata0 baseline
// is supplied by the Milestone as the previous step's Metadata1 (or the
// chained previous milestone's last step, or nil for the very first step
// ever run).
type Step interface {
	Abbrev() string
	Number() int

	// SupportsForward/SupportsBackward report whether this step has an
	// implementation for the given traversal direction: a step with only
	// a forward implementation cannot be run backward, and vice versa.
	SupportsForward() bool
	SupportsBackward() bool

	// Metadata1 computes this step's own target snapshot.
	Metadata1(ctx context.Context) (*Snapshot, error)
}

// Repr is a step's textual representation, abbrev.NN.{f|x}{b|x}, matched
// against glob/glob-range patterns by Select.
func Repr(s Step) string {
	return fmt.Sprintf("%s.%02d.%s%s", s.Abbrev(), s.Number(), dirChar(s.SupportsForward(), 'f'), dirChar(s.SupportsBackward(), 'b'))
}

func dirChar(supported bool, c byte) string {
	if supported {
		return string(c)
	}
	return "x"
}

// Milestone is an ordered list of Steps, optionally chained to a named
// previous milestone whose last step supplies the baseline metadata0 for
// this milestone's first step.
type Milestone struct {
	Name     string
	Previous *Milestone
	Steps    []Step
}

// chain computes every step's own Metadata1 in declaration order. It never
// touches a database — DBSchemaStep.Metadata1 only reads history/ files —
// so computing the full chain even when only a subset of steps will
// actually run is cheap and keeps metadata0 derivation correct regardless
// of which steps are selected.
func (m *Milestone) chain(ctx context.Context) ([]*Snapshot, error) {
	out := make([]*Snapshot, len(m.Steps))
	for i, s := range m.Steps {
		snap, err := s.Metadata1(ctx)
		if err != nil {
			return nil, fmt.Errorf("milestone %q: step %s: %w", m.Name, Repr(s), err)
		}
		out[i] = snap
	}
	return out, nil
}

// previousSnapshot returns the baseline for this milestone's first step:
// the chained previous milestone's last step's Metadata1, or nil if there
// is no previous milestone (or the previous milestone chain is itself
// empty, in which case its own baseline is used).
func (m *Milestone) previousSnapshot(ctx context.Context) (*Snapshot, error) {
	if m.Previous == nil {
		return nil, nil
	}
	chain, err := m.Previous.chain(ctx)
	if err != nil {
		return nil, err
	}
	if len(chain) == 0 {
		return m.Previous.previousSnapshot(ctx)
	}
	return chain[len(chain)-1], nil
}

// metadata0Chain returns, for each step index i, the metadata0 baseline
// that step targets from: chain[i-1], or previousSnapshot() for i==0.
func (m *Milestone) metadata0Chain(ctx context.Context, chain []*Snapshot) ([]*Snapshot, error) {
	prev, err := m.previousSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Snapshot, len(m.Steps))
	for i := range m.Steps {
		out[i] = prev
		prev = chain[i]
	}
	return out, nil
}
