// SPDX-License-Identifier: Apache-2.0

package enginerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAsMatchesKindThroughWrapping(t *testing.T) {
	err := NewInconsistentDirection()
	wrapped := fmt.Errorf("component %q: %w", "app", err)

	assert.True(t, As(wrapped, InconsistentDirection))
	assert.False(t, As(wrapped, DDLFailure))
	assert.False(t, As(errors.New("plain"), InconsistentDirection))
	assert.False(t, As(nil, InconsistentDirection))
}

func TestDDLFailureKeepsCause(t *testing.T) {
	cause := errors.New("relation already exists")
	err := NewDDLFailure("db0", "create_table", cause)

	assert.True(t, As(err, DDLFailure))
	assert.ErrorContains(t, err, "db0")
	assert.ErrorContains(t, err, "relation already exists")
	assert.True(t, errors.Is(err, cause))
}

func TestErrorMessagesNameTheirSubject(t *testing.T) {
	assert.ErrorContains(t, NewChecksumMismatch("app", 3, "want", "got"), "version 3")
	assert.ErrorContains(t, NewMilestoneStepBanned("install.01.fx", "backward"), "no backward implementation")
	assert.ErrorContains(t, NewAnswerError("dangling name"), "dangling name")
	assert.ErrorContains(t, NewBookkeepingAbsent("sooners_configuration"), "does not yet exist")
	assert.ErrorContains(t, NewAmbiguousDiff("Column", []string{"a"}, []string{"b"}), "requires disambiguation")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(NewInconsistentDirection()))
	assert.Equal(t, 1, ExitCode(errors.New("anything")))
}
