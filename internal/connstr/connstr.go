// SPDX-License-Identifier: Apache-2.0

// Package connstr rewrites Postgres URL-format connection strings: scoping
// a connection to a schema via search_path, or pointing it at a different
// database in the same server.
package connstr

import (
	"fmt"
	"net/url"
	"strings"
)

// AppendSearchPathOption take a Postgres connection string in URL format and
// produces the same connection string with the search_path option set to the
// provided schema.
func AppendSearchPathOption(connStr, schema string) (string, error) {
	u, err := url.Parse(connStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse connection string: %w", err)
	}

	if schema == "" {
		return connStr, nil
	}

	q := u.Query()
	q.Set("options", fmt.Sprintf("-c search_path=%s", schema))
	encodedQuery := q.Encode()

	// Replace '+' with '%20' to ensure proper encoding of spaces within the
	// `options` query parameter.
	encodedQuery = strings.ReplaceAll(encodedQuery, "+", "%20")

	u.RawQuery = encodedQuery

	return u.String(), nil
}

// WithDatabase takes a Postgres connection string in URL format and
// produces the same connection string pointed at a different database on
// the same server.
func WithDatabase(connStr, database string) (string, error) {
	u, err := url.Parse(connStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse connection string: %w", err)
	}

	u.Path = "/" + database

	return u.String(), nil
}
