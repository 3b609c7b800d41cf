// Package query turns declarative filter, sort and page parameters into a
// storage-neutral query that repositories render for their backend.
package query

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultPage = 1
	DefaultSize = 10
	MaxSize     = 10000
	// MaxPage keeps Size*(Page-1) within an int for every allowed size.
	MaxPage      = math.MaxInt/MaxSize + 1
	DefaultOrder = "-" + IDField

	// TimeLayout is the accepted format of date range bounds, read as UTC.
	TimeLayout = "2006-01-02 15:04:05"

	SuffixAfter  = "__dgt"
	SuffixBefore = "__dlt"
)

// Params is the validated request: the reserved page, size and order
// controls plus field filters. A nil filter value means "no filter".
type Params struct {
	Page    int
	Size    int
	Order   string
	Filters map[string]interface{}
}

type Op int

const (
	OpEquals Op = iota
	OpSubstring
	OpExactID
	OpRange
)

func (o Op) String() string {
	switch o {
	case OpEquals:
		return "equals"
	case OpSubstring:
		return "substring"
	case OpExactID:
		return "exact_id"
	case OpRange:
		return "range"
	default:
		return "unknown"
	}
}

// Term is one filter condition on one field. Range terms carry After (gt)
// and/or Before (lt); the others carry Value.
type Term struct {
	Field  string
	Kind   Kind
	Op     Op
	Value  interface{}
	After  *time.Time
	Before *time.Time
}

// Pattern returns the substring value with every regex metacharacter
// escaped. Matching is case-insensitive.
func (t Term) Pattern() string {
	s, _ := t.Value.(string)
	return regexp.QuoteMeta(s)
}

type Direction int

const (
	Asc  Direction = 1
	Desc Direction = -1
)

type SortKey struct {
	Field     string
	Direction Direction
}

// Query is the translated form of Params. Terms are ordered by field name
// and combine conjunctively.
type Query struct {
	Terms []Term
	Sort  []SortKey
	Page  int
	Size  int
}

// Skip is the number of records before the requested page.
func (q Query) Skip() int { return q.Size * (q.Page - 1) }

// Limit is the page size.
func (q Query) Limit() int { return q.Size }

// Translate validates p against schema and builds the query. It fails with
// ErrInvalidParam on unknown fields, malformed ids, malformed dates or
// values of the wrong type.
func Translate(schema Schema, p Params) (Query, error) {
	q := Query{
		Page: NormalizePage(p.Page),
		Size: NormalizeSize(p.Size),
	}

	order := p.Order
	if order == "" {
		order = DefaultOrder
	}
	keys, err := ParseOrder(schema, order)
	if err != nil {
		return Query{}, err
	}
	q.Sort = keys

	names := make([]string, 0, len(p.Filters))
	for name := range p.Filters {
		names = append(names, name)
	}
	sort.Strings(names)

	byField := make(map[string]*Term)
	for _, name := range names {
		value := p.Filters[name]
		if value == nil {
			continue
		}
		term, skip, err := buildTerm(schema, name, value)
		if err != nil {
			return Query{}, err
		}
		if skip {
			continue
		}
		if prev, ok := byField[term.Field]; ok && prev.Op == OpRange && term.Op == OpRange {
			if term.After != nil {
				prev.After = term.After
			}
			if term.Before != nil {
				prev.Before = term.Before
			}
			continue
		}
		t := term
		byField[term.Field] = &t
	}

	fields := make([]string, 0, len(byField))
	for f := range byField {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		q.Terms = append(q.Terms, *byField[f])
	}

	return q, nil
}

func buildTerm(schema Schema, name string, value interface{}) (Term, bool, error) {
	if base, bound, ok := cutRangeSuffix(name); ok {
		kind, known := schema.Lookup(base)
		if !known || kind != KindTime {
			return Term{}, false, invalid(name, value, "date range on non-date field")
		}
		at, err := parseTime(name, value)
		if err != nil {
			return Term{}, false, err
		}
		term := Term{Field: base, Kind: KindTime, Op: OpRange}
		if bound == SuffixAfter {
			term.After = &at
		} else {
			term.Before = &at
		}
		return term, false, nil
	}

	kind, known := schema.Lookup(name)
	if !known {
		return Term{}, false, invalid(name, value, "unknown field")
	}

	switch kind {
	case KindID:
		s, ok := value.(string)
		if !ok {
			return Term{}, false, invalid(name, value, "identifier must be a string")
		}
		if s == "" {
			return Term{}, true, nil
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return Term{}, false, invalid(name, value, "malformed identifier")
		}
		return Term{Field: name, Kind: kind, Op: OpExactID, Value: id.String()}, false, nil

	case KindString, KindList:
		s, ok := value.(string)
		if !ok {
			return Term{}, false, invalid(name, value, "expected a string")
		}
		if s == "" {
			return Term{}, true, nil
		}
		return Term{Field: name, Kind: kind, Op: OpSubstring, Value: s}, false, nil

	case KindBool:
		b, ok := value.(bool)
		if !ok {
			return Term{}, false, invalid(name, value, "expected a boolean")
		}
		return Term{Field: name, Kind: kind, Op: OpEquals, Value: b}, false, nil

	case KindInt:
		n, ok := value.(int)
		if !ok {
			return Term{}, false, invalid(name, value, "expected an integer")
		}
		return Term{Field: name, Kind: kind, Op: OpEquals, Value: n}, false, nil

	case KindObject:
		switch v := value.(type) {
		case string:
			if v == "" {
				return Term{}, true, nil
			}
			return Term{Field: name, Kind: kind, Op: OpSubstring, Value: v}, false, nil
		case bool, int:
			return Term{Field: name, Kind: kind, Op: OpEquals, Value: v}, false, nil
		default:
			return Term{}, false, invalid(name, value, "unsupported value type")
		}

	case KindTime:
		return Term{}, false, invalid(name, value, "date fields filter with %s or %s", SuffixAfter, SuffixBefore)

	default:
		return Term{}, false, invalid(name, value, "unsupported field kind")
	}
}

func cutRangeSuffix(name string) (string, string, bool) {
	for _, suffix := range []string{SuffixAfter, SuffixBefore} {
		if base, ok := strings.CutSuffix(name, suffix); ok && base != "" {
			return base, suffix, true
		}
	}
	return "", "", false
}

func parseTime(name string, value interface{}) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v.UTC(), nil
	case string:
		at, err := time.ParseInLocation(TimeLayout, v, time.UTC)
		if err != nil {
			return time.Time{}, invalid(name, value, "expected YYYY-MM-DD HH:MM:SS")
		}
		return at, nil
	default:
		return time.Time{}, invalid(name, value, "expected YYYY-MM-DD HH:MM:SS")
	}
}

// ParseOrder reads "-name,+target,status" into sort keys. A "-" prefix
// sorts descending, "+" or no prefix ascending. Blank entries are skipped;
// an order with no entries falls back to newest first.
func ParseOrder(schema Schema, order string) ([]SortKey, error) {
	var keys []SortKey
	for _, raw := range strings.Split(order, ",") {
		field := strings.TrimSpace(raw)
		dir := Asc
		switch {
		case strings.HasPrefix(field, "-"):
			field, dir = strings.TrimSpace(field[1:]), Desc
		case strings.HasPrefix(field, "+"):
			field = strings.TrimSpace(field[1:])
		}
		if field == "" {
			continue
		}
		if _, ok := schema.Lookup(field); !ok {
			return nil, invalid("order", order, "cannot sort on %q", field)
		}
		keys = append(keys, SortKey{Field: field, Direction: dir})
	}
	if len(keys) == 0 {
		keys = []SortKey{{Field: IDField, Direction: Desc}}
	}
	return keys, nil
}

// NormalizePage floors page at 1 and caps it at MaxPage.
func NormalizePage(page int) int {
	switch {
	case page <= 0:
		return DefaultPage
	case page > MaxPage:
		return MaxPage
	default:
		return page
	}
}

// NormalizeSize maps size <= 0 to the default and caps it at MaxSize.
func NormalizeSize(size int) int {
	switch {
	case size <= 0:
		return DefaultSize
	case size >= MaxSize:
		return MaxSize
	default:
		return size
	}
}

// Echo renders the effective filter for responses and logs.
func (q Query) Echo() map[string]interface{} {
	out := make(map[string]interface{}, len(q.Terms))
	for _, t := range q.Terms {
		switch t.Op {
		case OpExactID, OpEquals:
			out[t.Field] = t.Value
		case OpSubstring:
			out[t.Field] = map[string]interface{}{"$regex": t.Pattern(), "$options": "i"}
		case OpRange:
			bounds := make(map[string]interface{}, 2)
			if t.After != nil {
				bounds["$gt"] = t.After.Format(TimeLayout)
			}
			if t.Before != nil {
				bounds["$lt"] = t.Before.Format(TimeLayout)
			}
			out[t.Field] = bounds
		}
	}
	return out
}
