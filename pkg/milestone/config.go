// SPDX-License-Identifier: Apache-2.0

package milestone

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/charlesw1234/sooners-migrate/pkg/shardmap"
)

// StepConfig is one milestone step as written in a milestones document.
type StepConfig struct {
	Abbrev   string         `yaml:"abbrev"`
	Number   int            `yaml:"number"`
	Forward  *bool          `yaml:"forward,omitempty"`
	Backward *bool          `yaml:"backward,omitempty"`
	Versions map[string]int `yaml:"versions"`
}

// MilestoneConfig is one named milestone, optionally chained from a
// previously declared milestone by name; the chained milestone's last
// step supplies this one's baseline.
type MilestoneConfig struct {
	Name     string       `yaml:"name"`
	Previous string       `yaml:"previous,omitempty"`
	Steps    []StepConfig `yaml:"steps"`
}

// Document is the on-disk shape of a milestones file: an ordered list of
// milestones, each of which may reference an earlier one by name.
type Document struct {
	Milestones []MilestoneConfig `yaml:"milestones"`
}

// LoadFile parses a milestones YAML document. Milestones are otherwise
// constructed directly in Go by an embedding application; this loader is
// the CLI's own embedding, giving msforward and msbackward a MILESTONE
// name to resolve against.
func LoadFile(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("milestone: reading %q: %w", path, err)
	}
	var doc Document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("milestone: parsing %q: %w", path, err)
	}
	return &doc, nil
}

// Build turns the document into named Milestones, resolving each
// milestone's Previous reference against milestones declared earlier in
// the same document. historyDir and params are shared by every DBSchemaStep
// built from this document.
func (doc *Document) Build(historyDir string, params *shardmap.SchemaParams) (map[string]*Milestone, error) {
	built := make(map[string]*Milestone, len(doc.Milestones))
	for _, mc := range doc.Milestones {
		if mc.Name == "" {
			return nil, fmt.Errorf("milestone: a milestone document entry has no name")
		}
		if _, dup := built[mc.Name]; dup {
			return nil, fmt.Errorf("milestone %q: declared more than once", mc.Name)
		}

		var prev *Milestone
		if mc.Previous != "" {
			p, ok := built[mc.Previous]
			if !ok {
				return nil, fmt.Errorf("milestone %q: previous %q must be declared earlier in the document", mc.Name, mc.Previous)
			}
			prev = p
		}

		steps := make([]Step, len(mc.Steps))
		for i, sc := range mc.Steps {
			steps[i] = &DBSchemaStep{
				AbbrevName: sc.Abbrev,
				Num:        sc.Number,
				HistoryDir: historyDir,
				Versions:   sc.Versions,
				Params:     params,
				Forward:    sc.Forward,
				Backward:   sc.Backward,
			}
		}
		built[mc.Name] = &Milestone{Name: mc.Name, Previous: prev, Steps: steps}
	}
	return built, nil
}
