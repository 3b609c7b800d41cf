package db

import (
	"fmt"

	"github.com/lighthouse/backend/internal/core/query"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// column maps a query field to the column or JSON path that stores it.
// Sub-field names are validated by the schema before they get here.
func column(field string) clause.Column {
	if field == query.IDField {
		return clause.Column{Name: "id"}
	}
	if parent, sub, ok := query.SplitSubField(field); ok {
		return clause.Column{Name: fmt.Sprintf("%q->>'%s'", parent, sub), Raw: true}
	}
	return clause.Column{Name: field}
}

func isSubField(field string) bool {
	_, _, ok := query.SplitSubField(field)
	return ok
}

// termExpr renders one term. Substring terms use a case-insensitive POSIX
// match on the escaped pattern.
func termExpr(t query.Term) clause.Expression {
	col := column(t.Field)
	switch t.Op {
	case query.OpExactID:
		return clause.Eq{Column: col, Value: t.Value}

	case query.OpEquals:
		if isSubField(t.Field) {
			return clause.Eq{Column: col, Value: fmt.Sprint(t.Value)}
		}
		return clause.Eq{Column: col, Value: t.Value}

	case query.OpSubstring:
		switch {
		case t.Kind == query.KindList:
			return clause.Expr{
				SQL:  "EXISTS (SELECT 1 FROM jsonb_array_elements_text(?) AS elem WHERE elem ~* ?)",
				Vars: []interface{}{col, t.Pattern()},
			}
		case t.Kind == query.KindObject && !isSubField(t.Field):
			return clause.Expr{SQL: "?::text ~* ?", Vars: []interface{}{col, t.Pattern()}}
		default:
			return clause.Expr{SQL: "? ~* ?", Vars: []interface{}{col, t.Pattern()}}
		}

	case query.OpRange:
		var exprs []clause.Expression
		if t.After != nil {
			exprs = append(exprs, clause.Gt{Column: col, Value: *t.After})
		}
		if t.Before != nil {
			exprs = append(exprs, clause.Lt{Column: col, Value: *t.Before})
		}
		return clause.And(exprs...)
	}
	return clause.Expr{SQL: "FALSE"}
}

func orderBy(sort []query.SortKey) clause.OrderBy {
	cols := make([]clause.OrderByColumn, 0, len(sort))
	for _, k := range sort {
		cols = append(cols, clause.OrderByColumn{Column: column(k.Field), Desc: k.Direction == query.Desc})
	}
	return clause.OrderBy{Columns: cols}
}

// filtered applies the terms of q to tx.
func filtered(tx *gorm.DB, q query.Query) *gorm.DB {
	for _, t := range q.Terms {
		tx = tx.Where(termExpr(t))
	}
	return tx
}

// findPage counts the matches of q, then loads the requested window into dest.
func findPage(tx *gorm.DB, q query.Query, dest interface{}) (int64, error) {
	var total int64
	if err := filtered(tx.Session(&gorm.Session{}), q).Count(&total).Error; err != nil {
		return 0, err
	}
	err := filtered(tx.Session(&gorm.Session{}), q).
		Clauses(orderBy(q.Sort)).
		Offset(q.Skip()).
		Limit(q.Limit()).
		Find(dest).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}
