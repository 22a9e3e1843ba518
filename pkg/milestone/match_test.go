// SPDX-License-Identifier: Apache-2.0

package milestone

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStep struct {
	abbrev   string
	number   int
	forward  bool
	backward bool
}

func (s *fakeStep) Abbrev() string         { return s.abbrev }
func (s *fakeStep) Number() int            { return s.number }
func (s *fakeStep) SupportsForward() bool  { return s.forward }
func (s *fakeStep) SupportsBackward() bool { return s.backward }
func (s *fakeStep) Metadata1(ctx context.Context) (*Snapshot, error) {
	return &Snapshot{}, nil
}

func fakeSteps() []Step {
	return []Step{
		&fakeStep{abbrev: "init", number: 1, forward: true, backward: true},
		&fakeStep{abbrev: "addusers", number: 2, forward: true, backward: true},
		&fakeStep{abbrev: "shardlogs", number: 3, forward: true, backward: false},
		&fakeStep{abbrev: "cleanup", number: 4, forward: true, backward: true},
	}
}

func TestRepr(t *testing.T) {
	assert.Equal(t, "init.01.fb", Repr(&fakeStep{abbrev: "init", number: 1, forward: true, backward: true}))
	assert.Equal(t, "shardlogs.03.fx", Repr(&fakeStep{abbrev: "shardlogs", number: 3, forward: true}))
	assert.Equal(t, "legacy.07.xb", Repr(&fakeStep{abbrev: "legacy", number: 7, backward: true}))
}

func TestSelect(t *testing.T) {
	steps := fakeSteps()

	tests := []struct {
		name     string
		patterns []string
		want     []int
		wantErr  string
	}{
		{name: "no patterns selects every step", patterns: nil, want: []int{0, 1, 2, 3}},
		{name: "glob on abbrev", patterns: []string{"addusers.*"}, want: []int{1}},
		{name: "glob on number", patterns: []string{"*.03.*"}, want: []int{2}},
		{name: "star matches all", patterns: []string{"*"}, want: []int{0, 1, 2, 3}},
		{name: "range between globs", patterns: []string{"addusers.*-cleanup.*"}, want: []int{1, 2, 3}},
		{name: "open start range", patterns: []string{"-addusers.*"}, want: []int{0, 1}},
		{name: "open end range", patterns: []string{"shardlogs.*-"}, want: []int{2, 3}},
		{name: "duplicates removed across patterns", patterns: []string{"init.*", "init.*"}, want: []int{0}},
		{name: "no match", patterns: []string{"nosuch.*"}, wantErr: "matched no step"},
		{name: "inverted range", patterns: []string{"cleanup.*-init.*"}, wantErr: "occurs after"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Select(steps, tt.patterns)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectTreatsCharacterClassHyphenAsGlob(t *testing.T) {
	steps := []Step{
		&fakeStep{abbrev: "a1", number: 1, forward: true},
		&fakeStep{abbrev: "b2", number: 2, forward: true},
	}
	got, err := Select(steps, []string{"[a-b]*"})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, got)
}
