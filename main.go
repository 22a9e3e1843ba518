// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"

	"github.com/charlesw1234/sooners-migrate/cmd"
	"github.com/charlesw1234/sooners-migrate/internal/enginerr"
)

func main() {
	err := cmd.Execute()
	cmd.Report(err)
	os.Exit(enginerr.ExitCode(err))
}
