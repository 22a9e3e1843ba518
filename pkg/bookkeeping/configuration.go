// SPDX-License-Identifier: Apache-2.0

package bookkeeping

import (
	"context"
	"fmt"
)

const configPartSize = 64

// well-known conf_type values.
const (
	ConfTypeSchemaParams0 = "SCHEMA_PARAMS_0"
	ConfTypeSchemaParams1 = "SCHEMA_PARAMS_1"
)

// Configuration is the engine's generic text store: text is sliced into
// 64-byte parts and reassembled by part_order. When the table does
// not yet exist, load/save no-op and report false so the in-memory state
// carries forward until the plan itself creates the table.
type Configuration struct {
	names       TableNames
	dialectName string
}

func NewConfiguration(names TableNames, dialectName string) *Configuration {
	return &Configuration{names: names, dialectName: dialectName}
}

// Load returns the reassembled text for confType, or ("", false) if the
// table doesn't exist yet or has no rows for confType.
func (c *Configuration) Load(ctx context.Context, s SessionStore, confType string) (string, bool, error) {
	if !TableExists(ctx, s, c.names.Configuration) {
		return "", false, nil
	}

	rows, err := s.QueryContext(ctx, fmt.Sprintf(
		"SELECT conf_part_order, conf_part FROM %s WHERE conf_type = %s ORDER BY conf_part_order",
		c.names.Configuration, placeholder(c.dialectName, 1)), confType)
	if err != nil {
		return "", false, err
	}
	defer rows.Close()

	parts := map[int]string{}
	maxOrder := -1
	for rows.Next() {
		var order int
		var part string
		if err := rows.Scan(&order, &part); err != nil {
			return "", false, err
		}
		parts[order] = part
		if order > maxOrder {
			maxOrder = order
		}
	}
	if err := rows.Err(); err != nil {
		return "", false, err
	}
	if maxOrder < 0 {
		return "", false, nil
	}

	text := ""
	for i := 0; i <= maxOrder; i++ {
		text += parts[i]
	}
	return text, true, nil
}

// Save slices text into ≤64-byte parts and round-trips it against the
// currently stored parts for confType: existing rows within the new part
// count are updated in place, rows beyond the new length are deleted, and
// a save whose text already matches what is stored is skipped entirely.
// Returns false without error when the table does not yet exist.
func (c *Configuration) Save(ctx context.Context, s SessionStore, confType, text string) (bool, error) {
	if !TableExists(ctx, s, c.names.Configuration) {
		return false, nil
	}

	current, ok, err := c.Load(ctx, s, confType)
	if err != nil {
		return false, err
	}
	if ok && current == text {
		return true, nil
	}

	newParts := sliceParts(text)

	existingCount, err := c.partCount(ctx, s, confType)
	if err != nil {
		return false, err
	}

	for i, part := range newParts {
		if i < existingCount {
			if _, err := s.ExecContext(ctx, fmt.Sprintf(
				"UPDATE %s SET conf_part = %s WHERE conf_type = %s AND conf_part_order = %s",
				c.names.Configuration, placeholder(c.dialectName, 1), placeholder(c.dialectName, 2), placeholder(c.dialectName, 3)),
				part, confType, i); err != nil {
				return false, err
			}
		} else {
			if _, err := s.ExecContext(ctx, fmt.Sprintf(
				"INSERT INTO %s (conf_type, conf_part_order, conf_part) VALUES (%s, %s, %s)",
				c.names.Configuration, placeholder(c.dialectName, 1), placeholder(c.dialectName, 2), placeholder(c.dialectName, 3)),
				confType, i, part); err != nil {
				return false, err
			}
		}
	}

	for i := len(newParts); i < existingCount; i++ {
		if _, err := s.ExecContext(ctx, fmt.Sprintf(
			"DELETE FROM %s WHERE conf_type = %s AND conf_part_order = %s",
			c.names.Configuration, placeholder(c.dialectName, 1), placeholder(c.dialectName, 2)),
			confType, i); err != nil {
			return false, err
		}
	}

	return true, nil
}

func (c *Configuration) partCount(ctx context.Context, s SessionStore, confType string) (int, error) {
	rows, err := s.QueryContext(ctx, fmt.Sprintf(
		"SELECT COUNT(*) FROM %s WHERE conf_type = %s", c.names.Configuration, placeholder(c.dialectName, 1)), confType)
	if err != nil {
		return 0, err
	}
	defer rows.Close()
	count := 0
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return 0, err
		}
	}
	return count, rows.Err()
}

func sliceParts(text string) []string {
	if text == "" {
		return []string{""}
	}
	var parts []string
	for len(text) > configPartSize {
		parts = append(parts, text[:configPartSize])
		text = text[configPartSize:]
	}
	parts = append(parts, text)
	return parts
}
