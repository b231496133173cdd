package resource

import (
	"cmp"
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strings"
)

// Direction is the sort order of a query.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection accepts "asc" or "desc" (case-insensitive). Empty means Asc.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "", "asc":
		return Asc, nil
	case "desc":
		return Desc, nil
	}
	return "", fmt.Errorf("resource: invalid direction %q", s)
}

// Filter matches documents whose Field equals Value.
type Filter struct {
	Field string
	Value any
}

// Eq builds an equality filter.
func Eq(field string, value any) Filter {
	return Filter{Field: field, Value: value}
}

// Query describes a collection read. Documents lacking the OrderBy field are
// left out of ordered results. Limit <= 0 means no limit.
type Query struct {
	Filters   []Filter
	OrderBy   string
	Direction Direction
	Limit     int
}

var fieldName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks field names, which some drivers embed in JSON paths.
func (q Query) Validate() error {
	for _, f := range q.Filters {
		if !fieldName.MatchString(f.Field) {
			return fmt.Errorf("resource: invalid filter field %q", f.Field)
		}
	}
	if q.OrderBy != "" && !fieldName.MatchString(q.OrderBy) {
		return fmt.Errorf("resource: invalid order field %q", q.OrderBy)
	}
	switch q.Direction {
	case "", Asc, Desc:
	default:
		return fmt.Errorf("resource: invalid direction %q", q.Direction)
	}
	return nil
}

// Apply evaluates q over docs in memory. It is used by the drivers that
// cannot push the query down.
func Apply(docs []Document, q Query) ([]Document, error) {
	filters := make([]Filter, len(q.Filters))
	for i, f := range q.Filters {
		v, err := normalizeValue(f.Value)
		if err != nil {
			return nil, fmt.Errorf("resource: filter %s: %w", f.Field, err)
		}
		filters[i] = Filter{Field: f.Field, Value: v}
	}

	out := make([]Document, 0, len(docs))
	for _, d := range docs {
		if matches(d, filters) {
			if q.OrderBy != "" {
				if _, ok := d.Fields[q.OrderBy]; !ok {
					continue
				}
			}
			out = append(out, d)
		}
	}

	if q.OrderBy != "" {
		slices.SortStableFunc(out, func(a, b Document) int {
			c := compareValues(a.Fields[q.OrderBy], b.Fields[q.OrderBy])
			if q.Direction == Desc {
				c = -c
			}
			if c == 0 {
				c = cmp.Compare(a.ID, b.ID)
			}
			return c
		})
	} else {
		slices.SortStableFunc(out, func(a, b Document) int { return cmp.Compare(a.ID, b.ID) })
	}

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func matches(d Document, filters []Filter) bool {
	for _, f := range filters {
		v, ok := d.Fields[f.Field]
		if !ok || !reflect.DeepEqual(v, f.Value) {
			return false
		}
	}
	return true
}

func normalizeValue(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	err = json.Unmarshal(data, &out)
	return out, err
}

// compareValues orders nil < bool < number < string < everything else, and
// values of the same kind naturally.
func compareValues(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}
	switch x := a.(type) {
	case bool:
		y := b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		default:
			return 1
		}
	case float64:
		return cmp.Compare(x, b.(float64))
	case string:
		return strings.Compare(x, b.(string))
	}
	return 0
}

func rank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case float64:
		return 2
	case string:
		return 3
	default:
		return 4
	}
}
