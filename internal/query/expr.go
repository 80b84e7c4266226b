package query

import (
	"strings"

	"github.com/Knetic/govaluate"
	"github.com/rotisserie/eris"

	"boqview/internal/model"
)

// Expr is a govaluate expression evaluated per row, e.g.
//
//	amount > 10000 && unit == 'm2'
type Expr struct {
	src string
	ev  *govaluate.EvaluableExpression
}

// CompileExpr parses src. Blank input yields a nil expression; names other
// than the row fields are rejected.
func CompileExpr(src string) (*Expr, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, nil
	}
	ev, err := govaluate.NewEvaluableExpression(src)
	if err != nil {
		return nil, eris.Wrapf(ErrInvalidExpression, "parse %q: %v", src, err)
	}
	known := rowParams(model.Row{})
	for _, name := range ev.Vars() {
		if _, ok := known[name]; !ok {
			return nil, eris.Wrapf(ErrInvalidExpression, "unknown field %q in %q", name, src)
		}
	}
	return &Expr{src: src, ev: ev}, nil
}

func (e *Expr) String() string { return e.src }

// Match evaluates the expression for r. Evaluation errors and non-bool results reject the row.
func (e *Expr) Match(r model.Row) bool {
	result, err := e.ev.Evaluate(rowParams(r))
	if err != nil {
		return false
	}
	b, ok := result.(bool)
	return ok && b
}

func rowParams(r model.Row) map[string]any {
	return map[string]any{
		"wbs1":        r.WBS1,
		"wbs2":        r.WBS2,
		"wbs3":        r.WBS3,
		"wbs4":        r.WBS4,
		"description": r.Description,
		"unit":        model.NormalizeUnit(r.Unit),
		"qty":         r.Qty,
		"material":    r.Material,
		"labor":       r.Labor,
		"amount":      r.Amount,
	}
}
