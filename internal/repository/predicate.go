package repository

import (
	"fmt"
	"strings"
)

// Predicate is a composable SQL boolean expression rendered with positional $n placeholders.
// Column names are always supplied by code, never by callers, so only values become arguments.
type Predicate interface {
	render(args *argList) string
}

type argList struct {
	values []interface{}
	offset int
}

func (a *argList) add(v interface{}) string {
	a.values = append(a.values, v)
	return fmt.Sprintf("$%d", a.offset+len(a.values))
}

// Build renders p. Placeholders start after the given number of arguments already bound.
func Build(p Predicate, bound int) (string, []interface{}) {
	args := &argList{offset: bound}
	if p == nil {
		return "TRUE", nil
	}
	return p.render(args), args.values
}

type comparison struct {
	column string
	op     string
	value  interface{}
}

func (c comparison) render(args *argList) string {
	return c.column + " " + c.op + " " + args.add(c.value)
}

// Eq matches column = value.
func Eq(column string, value interface{}) Predicate {
	return comparison{column: column, op: "=", value: value}
}

// Lt matches column < value.
func Lt(column string, value interface{}) Predicate {
	return comparison{column: column, op: "<", value: value}
}

// Gt matches column > value.
func Gt(column string, value interface{}) Predicate {
	return comparison{column: column, op: ">", value: value}
}

// Contains matches a case-insensitive substring; LIKE wildcards in value are escaped.
func Contains(column, value string) Predicate {
	return comparison{column: column, op: "ILIKE", value: "%" + escapeLike(value) + "%"}
}

type junction struct {
	op    string
	parts []Predicate
	empty string
}

func (j junction) render(args *argList) string {
	switch len(j.parts) {
	case 0:
		return j.empty
	case 1:
		return j.parts[0].render(args)
	}
	rendered := make([]string, len(j.parts))
	for i, p := range j.parts {
		rendered[i] = p.render(args)
	}
	return "(" + strings.Join(rendered, " "+j.op+" ") + ")"
}

// And joins predicates with AND. Nil entries are skipped; an empty And is TRUE.
func And(preds ...Predicate) Predicate {
	return junction{op: "AND", parts: compact(preds), empty: "TRUE"}
}

// Or joins predicates with OR. Nil entries are skipped; an empty Or is FALSE.
func Or(preds ...Predicate) Predicate {
	return junction{op: "OR", parts: compact(preds), empty: "FALSE"}
}

// AnyTokenIn builds one Contains clause per (token, field) pair and ORs them together.
// It returns nil when there are no tokens so callers can drop the filter entirely.
func AnyTokenIn(fields []string, tokens []string) Predicate {
	var clauses []Predicate
	for _, token := range tokens {
		if token == "" {
			continue
		}
		for _, field := range fields {
			clauses = append(clauses, Contains(field, token))
		}
	}
	if len(clauses) == 0 {
		return nil
	}
	return Or(clauses...)
}

// Tokens splits a free-text query on whitespace.
func Tokens(query string) []string {
	return strings.Fields(query)
}

func compact(preds []Predicate) []Predicate {
	out := make([]Predicate, 0, len(preds))
	for _, p := range preds {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(v string) string {
	return likeEscaper.Replace(v)
}
