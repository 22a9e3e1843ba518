// SPDX-License-Identifier: Apache-2.0

package patchgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charlesw1234/sooners-migrate/internal/enginerr"
)

func TestParseAnswer(t *testing.T) {
	doubt := Doubt{
		Kind:   "Column",
		Names0: []string{"a", "b", "gone"},
		Names1: []string{"a", "c", "fresh"},
	}

	tests := []struct {
		name    string
		line    string
		want    *Answer
		wantErr string
	}{
		{
			name: "full coverage with every verb",
			line: "unchanged a rename b/c drop gone create fresh",
			want: &Answer{
				Create:    []string{"fresh"},
				Unchanged: []string{"a"},
				Rename:    []Rename{{Name0: "b", Name1: "c"}},
				Drop:      []string{"gone"},
			},
		},
		{
			name:    "missing name fails coverage",
			line:    "unchanged a rename b/c drop gone",
			wantErr: "left unaccounted for",
		},
		{
			name:    "name claimed twice",
			line:    "unchanged a unchanged a rename b/c drop gone create fresh",
			wantErr: "claimed twice",
		},
		{
			name:    "unknown verb",
			line:    "frobnicate a",
			wantErr: "unrecognized token",
		},
		{
			name:    "rename outside name sets",
			line:    "unchanged a rename b/zzz drop gone create fresh",
			wantErr: "references a name outside",
		},
		{
			name:    "create of a name not in names1",
			line:    "unchanged a rename b/c drop gone create fresh create zzz",
			wantErr: "absent from names1",
		},
		{
			name:    "malformed rename pair",
			line:    "rename bc",
			wantErr: "expected name0/name1",
		},
		{
			name:    "verb without operand",
			line:    "unchanged a drop",
			wantErr: "requires a name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAnswer(tt.line, doubt, nil)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, enginerr.As(err, enginerr.AnswerError))
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAnswerResolvesSuggestionIndexes(t *testing.T) {
	doubt := Doubt{
		Kind:   "Column",
		Names0: []string{"colour"},
		Names1: []string{"color"},
	}
	suggestions := []Suggestion{{Name0: "colour", Name1: "color", Distance: 1}}

	got, err := parseAnswer("rename 1/1", doubt, suggestions)
	require.NoError(t, err)
	assert.Equal(t, []Rename{{Name0: "colour", Name1: "color"}}, got.Rename)
}

func TestParseAnswerRejectsOutOfRangeSuggestionIndex(t *testing.T) {
	doubt := Doubt{Names0: []string{"a"}, Names1: []string{"b"}}

	_, err := parseAnswer("rename 7/7", doubt, nil)
	require.Error(t, err)
	assert.True(t, enginerr.As(err, enginerr.AnswerError))
}
