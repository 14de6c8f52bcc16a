// Package cdc consumes the upstream change-data-capture stream and triggers
// configuration rebuilds for relevant table changes.
package cdc

import (
	"encoding/json"
	"fmt"
	"strings"

	"tenantgrid/pkg/platform/sentinel"
)

// Debezium envelope shapes; only the table identification fields matter here,
// everything else is ignored.
type changeKey struct {
	Payload struct {
		PhysicalTableIdentifier string `json:"__dbz__physicalTableIdentifier"`
	} `json:"payload"`
}

type changeValue struct {
	Payload struct {
		Source struct {
			Table string `json:"table"`
		} `json:"source"`
	} `json:"payload"`
}

// TableFromRecord extracts the logical table name from one change event.
// Delete events arrive as tombstones with a nil value; their table is encoded
// in the key's physical table identifier (schema.database.table, reduced to
// the last segment). Insert and update events carry the table in the value's
// source block. A malformed envelope yields sentinel.ErrParse.
func TableFromRecord(key, value []byte) (string, error) {
	if len(value) == 0 {
		var k changeKey
		if err := json.Unmarshal(key, &k); err != nil {
			return "", fmt.Errorf("decode delete key: %w: %v", sentinel.ErrParse, err)
		}
		table := lastSegment(k.Payload.PhysicalTableIdentifier)
		if table == "" {
			return "", fmt.Errorf("delete key missing table identifier: %w", sentinel.ErrParse)
		}
		return table, nil
	}

	var v changeValue
	if err := json.Unmarshal(value, &v); err != nil {
		return "", fmt.Errorf("decode change value: %w: %v", sentinel.ErrParse, err)
	}
	if v.Payload.Source.Table == "" {
		return "", fmt.Errorf("change value missing source table: %w", sentinel.ErrParse)
	}
	return v.Payload.Source.Table, nil
}

// lastSegment reduces schema.database.table to table; anything that is not a
// three-part identifier is returned as is.
func lastSegment(identifier string) string {
	parts := strings.Split(identifier, ".")
	if len(parts) == 3 {
		return parts[2]
	}
	return identifier
}
