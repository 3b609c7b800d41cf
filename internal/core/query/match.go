package query

import (
	"fmt"
	"regexp"
	"time"
)

// Match reports whether a record satisfies every term. get returns the
// record's value for a field; a missing field fails the term.
func (q Query) Match(get func(field string) (interface{}, bool)) bool {
	for _, t := range q.Terms {
		v, ok := get(t.Field)
		if !ok || !t.Match(v) {
			return false
		}
	}
	return true
}

// Match evaluates the term against a single value in memory.
func (t Term) Match(v interface{}) bool {
	switch t.Op {
	case OpExactID:
		return fmt.Sprint(v) == fmt.Sprint(t.Value)
	case OpEquals:
		return fmt.Sprint(v) == fmt.Sprint(t.Value)
	case OpSubstring:
		re, err := regexp.Compile("(?i)" + t.Pattern())
		if err != nil {
			return false
		}
		switch s := v.(type) {
		case string:
			return re.MatchString(s)
		case []string:
			for _, e := range s {
				if re.MatchString(e) {
					return true
				}
			}
			return false
		default:
			return re.MatchString(fmt.Sprint(v))
		}
	case OpRange:
		var at time.Time
		switch tv := v.(type) {
		case time.Time:
			at = tv
		case *time.Time:
			if tv == nil {
				return false
			}
			at = *tv
		default:
			return false
		}
		if t.After != nil && !at.After(*t.After) {
			return false
		}
		if t.Before != nil && !at.Before(*t.Before) {
			return false
		}
		return true
	default:
		return false
	}
}
