// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/charlesw1234/sooners-migrate/pkg/metadata"
)

// modelDocument is the on-disk shape makeversion reads: one YAML file
// per component, directly mirroring metadata.ModelDefinition. An
// embedding application would normally construct these values in Go;
// this file is the CLI's own stand-in for that assembly step.
type modelDocument struct {
	Tables []metadata.ModelDefinition `yaml:"tables"`
}

func loadModelDocument(path string) ([]metadata.ModelDefinition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model document %q: %w", path, err)
	}
	var doc modelDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing model document %q: %w", path, err)
	}
	return doc.Tables, nil
}
