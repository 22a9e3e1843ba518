// SPDX-License-Identifier: Apache-2.0

package milestone

import (
	"context"
	"fmt"

	"github.com/charlesw1234/sooners-migrate/pkg/metadata"
	"github.com/charlesw1234/sooners-migrate/pkg/shardmap"
)

// DBSchemaStep is the database-schema Step variant: it constructs its
// target snapshot from a component-to-version mapping plus a SchemaParams
// blob, loading the matching VersionDocument for each component out of
// history/.
type DBSchemaStep struct {
	AbbrevName string
	Num        int
	HistoryDir string

	// Versions maps component name to the history version this step
	// targets. A component with no entry here does not exist at this
	// step, so running onto it drops all of that component's tables.
	Versions map[string]int

	// Params is the SchemaParams deployment blob this step targets.
	Params *shardmap.SchemaParams

	// Forward/Backward default to true; set false to mark a step as only
	// implemented in one traversal direction.
	Forward  *bool
	Backward *bool
}

var _ Step = (*DBSchemaStep)(nil)

func (s *DBSchemaStep) Abbrev() string { return s.AbbrevName }
func (s *DBSchemaStep) Number() int    { return s.Num }

func (s *DBSchemaStep) SupportsForward() bool  { return boolOr(s.Forward, true) }
func (s *DBSchemaStep) SupportsBackward() bool { return boolOr(s.Backward, true) }

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// Metadata1 reads one VersionDocument per configured component.
func (s *DBSchemaStep) Metadata1(ctx context.Context) (*Snapshot, error) {
	versions := make(map[string]*metadata.VersionDocument, len(s.Versions))
	for component, version := range s.Versions {
		v, err := metadata.ReadVersion(s.HistoryDir, component, version)
		if err != nil {
			return nil, fmt.Errorf("reading version %d of component %q: %w", version, component, err)
		}
		versions[component] = v
	}
	return &Snapshot{Versions: versions, Params: s.Params}, nil
}
