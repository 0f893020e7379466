package repository

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// uuidArray maps a postgres uuid[] column onto []uuid.UUID through
// database/sql. The pgx stdlib driver hands arrays over as their text
// literal, so scanning parses the `{a,b,c}` form.
type uuidArray []uuid.UUID

func (a uuidArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "{}", nil
	}
	elems := make([]string, len(a))
	for i, id := range a {
		elems[i] = id.String()
	}
	return "{" + strings.Join(elems, ",") + "}", nil
}

func (a *uuidArray) Scan(src any) error {
	var literal string
	switch v := src.(type) {
	case nil:
		*a = nil
		return nil
	case string:
		literal = v
	case []byte:
		literal = string(v)
	default:
		return fmt.Errorf("cannot scan %T into uuid array", src)
	}

	literal = strings.Trim(literal, "{}")
	if literal == "" {
		*a = uuidArray{}
		return nil
	}

	parts := strings.Split(literal, ",")
	out := make(uuidArray, 0, len(parts))
	for _, part := range parts {
		id, err := uuid.Parse(strings.Trim(part, `" `))
		if err != nil {
			return fmt.Errorf("invalid uuid %q in array: %w", part, err)
		}
		out = append(out, id)
	}
	*a = out
	return nil
}
