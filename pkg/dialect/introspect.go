// SPDX-License-Identifier: Apache-2.0

package dialect

import "database/sql"

func scanStrings(rows *sql.Rows) ([]string, error) {
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanColumns(rows *sql.Rows) ([]ColumnInfo, error) {
	var out []ColumnInfo
	for rows.Next() {
		var c ColumnInfo
		var nullable string
		var def sql.NullString
		if err := rows.Scan(&c.Name, &c.Type, &nullable, &def); err != nil {
			return nil, err
		}
		c.Nullable = nullable == "YES" || nullable == "yes" || nullable == "1"
		if def.Valid {
			c.Default = &def.String
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
