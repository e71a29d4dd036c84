// Package agg collects values from the control records of a built tree
// into a table, one row per combination.
package agg

import (
	"fmt"
	"strings"

	"github.com/ohler55/ojg/jp"
)

// Column selects one value from each control record.
type Column struct {
	Name string
	Expr string
	x    jp.Expr
}

// ParseColumn parses "name=expr" or a bare "expr". An expression that does
// not start with '$' or '@' is taken as a top-level key, so "number" is
// shorthand for the child "number" of the root.
func ParseColumn(spec string) (Column, error) {
	name, expr, named := strings.Cut(spec, "=")
	if !named {
		expr = spec
	}
	expr = strings.TrimSpace(expr)
	name = strings.TrimSpace(name)
	if expr == "" {
		return Column{}, fmt.Errorf("empty column expression in %q", spec)
	}

	var x jp.Expr
	if strings.HasPrefix(expr, "$") || strings.HasPrefix(expr, "@") {
		var err error
		if x, err = jp.ParseString(expr); err != nil {
			return Column{}, fmt.Errorf("invalid jsonpath '%s': %w", expr, err)
		}
	} else {
		x = jp.R().C(expr)
	}
	if !named {
		name = expr
	}
	return Column{Name: name, Expr: expr, x: x}, nil
}

// ParseColumns parses every spec.
func ParseColumns(specs []string) ([]Column, error) {
	cols := make([]Column, 0, len(specs))
	for _, s := range specs {
		c, err := ParseColumn(s)
		if err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return cols, nil
}

// Eval returns the first match of the column in record, or nil.
func (c Column) Eval(record any) any {
	results := c.x.Get(record)
	if len(results) == 0 {
		return nil
	}
	return results[0]
}
