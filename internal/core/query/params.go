package query

import (
	"strconv"
	"strings"
)

// Reserved control parameter names.
const (
	ParamPage  = "page"
	ParamSize  = "size"
	ParamOrder = "order"
)

// ParseValues types raw string parameters (a query string) against schema.
// Unknown parameters are ignored, known ones must parse as their kind.
func ParseValues(schema Schema, raw map[string]string) (Params, error) {
	p := Params{Filters: make(map[string]interface{})}

	for name, value := range raw {
		switch name {
		case ParamPage, ParamSize:
			if value == "" {
				continue
			}
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return Params{}, invalid(name, value, "expected an integer")
			}
			if name == ParamPage {
				p.Page = n
			} else {
				p.Size = n
			}
			continue
		case ParamOrder:
			p.Order = value
			continue
		}

		if base, _, ok := cutRangeSuffix(name); ok {
			if kind, known := schema.Lookup(base); known && kind == KindTime && value != "" {
				p.Filters[name] = value
			}
			continue
		}

		kind, known := schema.Lookup(name)
		if !known || value == "" {
			continue
		}

		switch kind {
		case KindString, KindList, KindID:
			p.Filters[name] = value
		case KindBool:
			b, err := strconv.ParseBool(value)
			if err != nil {
				return Params{}, invalid(name, value, "expected a boolean")
			}
			p.Filters[name] = b
		case KindInt:
			n, err := strconv.Atoi(value)
			if err != nil {
				return Params{}, invalid(name, value, "expected an integer")
			}
			p.Filters[name] = n
		case KindObject:
			switch strings.ToLower(value) {
			case "true":
				p.Filters[name] = true
			case "false":
				p.Filters[name] = false
			default:
				p.Filters[name] = value
			}
		case KindTime:
			// only filterable through range suffixes
		}
	}

	return p, nil
}
