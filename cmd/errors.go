// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"

	"github.com/pterm/pterm"

	"github.com/charlesw1234/sooners-migrate/internal/enginerr"
)

// Report renders err to the terminal via pterm, the CLI's sole catch
// point for the engine's domain-scoped error type: the core raises, the
// CLI reports, nothing is swallowed silently.
func Report(err error) {
	if err == nil {
		return
	}
	var e *enginerr.Error
	if errors.As(err, &e) {
		pterm.Error.Printfln("%s", e)
		return
	}
	pterm.Error.Printfln("%s", err)
}
