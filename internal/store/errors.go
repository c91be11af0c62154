package store

import (
	"fmt"
	"strings"
)

// SchemaError reports a missing required column or a duplicated key value.
type SchemaError struct {
	Table   string
	Column  string
	Missing []string
	Key     any
}

func (e *SchemaError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("schema: table %s is missing columns: %s", e.Table, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("schema: table %s has duplicate %s value %v", e.Table, e.Column, e.Key)
}
