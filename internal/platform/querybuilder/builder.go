package querybuilder

import (
	"fmt"
	"strconv"
	"strings"
)

// writer accumulates SQL text and positional ($n) arguments.
type writer struct {
	buf  strings.Builder
	args []any
}

func (w *writer) bind(v any) {
	w.args = append(w.args, v)
	w.buf.WriteString("$" + strconv.Itoa(len(w.args)))
}

// expr writes a fragment whose ? markers are bound in order.
func (w *writer) expr(fragment string, args []any) {
	next := 0
	for i := 0; i < len(fragment); i++ {
		if fragment[i] == '?' && next < len(args) {
			w.bind(args[next])
			next++
			continue
		}
		w.buf.WriteByte(fragment[i])
	}
}

func (w *writer) where(conditions []Condition) {
	for i, c := range conditions {
		if i == 0 {
			w.buf.WriteString(" WHERE ")
		} else {
			w.buf.WriteString(" AND ")
		}
		c.write(w)
	}
}

type Condition interface {
	write(w *writer)
}

type eqCondition struct {
	column string
	value  any
}

func Eq(column string, value any) Condition {
	return eqCondition{column: column, value: value}
}

func (c eqCondition) write(w *writer) {
	w.buf.WriteString(c.column + " = ")
	w.bind(c.value)
}

type inCondition struct {
	column string
	values []any
}

// In matches nothing when values is empty.
func In(column string, values []any) Condition {
	return inCondition{column: column, values: values}
}

func (c inCondition) write(w *writer) {
	if len(c.values) == 0 {
		w.buf.WriteString("1=0")
		return
	}
	w.buf.WriteString(c.column + " IN (")
	for i, v := range c.values {
		if i > 0 {
			w.buf.WriteString(", ")
		}
		w.bind(v)
	}
	w.buf.WriteString(")")
}

type exprCondition struct {
	fragment string
	args     []any
}

// Expr is a raw condition with ? markers, e.g. Expr("members @> ?", payload).
func Expr(fragment string, args ...any) Condition {
	return exprCondition{fragment: fragment, args: args}
}

func (c exprCondition) write(w *writer) {
	w.expr(c.fragment, c.args)
}

type SelectBuilder struct {
	columns []string
	table   string
	where   []Condition
	orderBy []string
	limit   int
	lock    string
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

func (b *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, parts...)
	return b
}

func (b *SelectBuilder) Limit(limit int) *SelectBuilder {
	b.limit = limit
	return b
}

// ForUpdate locks the selected rows until the surrounding transaction ends.
func (b *SelectBuilder) ForUpdate() *SelectBuilder {
	b.lock = "FOR UPDATE"
	return b
}

// ForShare blocks writers of the selected rows but lets other readers and
// foreign-key checks through.
func (b *SelectBuilder) ForShare() *SelectBuilder {
	b.lock = "FOR SHARE"
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("select columns are required")
	}
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("select table is required")
	}

	var w writer
	w.buf.WriteString("SELECT " + strings.Join(b.columns, ", ") + " FROM " + b.table)
	w.where(b.where)
	if len(b.orderBy) > 0 {
		w.buf.WriteString(" ORDER BY " + strings.Join(b.orderBy, ", "))
	}
	if b.limit > 0 {
		w.buf.WriteString(" LIMIT " + strconv.Itoa(b.limit))
	}
	if b.lock != "" {
		w.buf.WriteString(" " + b.lock)
	}
	return w.buf.String(), w.args, nil
}

type InsertBuilder struct {
	table   string
	columns []string
	rows    [][]any
	suffix  string
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append([]string(nil), columns...)
	return b
}

func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.rows = append(b.rows, append([]any(nil), values...))
	return b
}

// Suffix appends a trailing clause such as ON CONFLICT.
func (b *InsertBuilder) Suffix(sql string) *InsertBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("insert table is required")
	}
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("insert columns are required")
	}
	if len(b.rows) == 0 {
		return "", nil, fmt.Errorf("insert values are required")
	}

	var w writer
	w.buf.WriteString("INSERT INTO " + b.table + " (" + strings.Join(b.columns, ", ") + ") VALUES ")
	for rowIdx, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, fmt.Errorf("insert row %d has %d values, expected %d", rowIdx, len(row), len(b.columns))
		}
		if rowIdx > 0 {
			w.buf.WriteString(", ")
		}
		w.buf.WriteString("(")
		for colIdx, v := range row {
			if colIdx > 0 {
				w.buf.WriteString(", ")
			}
			w.bind(v)
		}
		w.buf.WriteString(")")
	}
	if b.suffix != "" {
		w.buf.WriteString(" " + b.suffix)
	}
	return w.buf.String(), w.args, nil
}

type setClause struct {
	column string
	value  any
	expr   *exprCondition
}

type UpdateBuilder struct {
	table string
	sets  []setClause
	where []Condition
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.sets = append(b.sets, setClause{column: column, value: value})
	return b
}

// SetExpr assigns a raw expression, e.g. SetExpr("version", "version + 1").
func (b *UpdateBuilder) SetExpr(column, fragment string, args ...any) *UpdateBuilder {
	b.sets = append(b.sets, setClause{column: column, expr: &exprCondition{fragment: fragment, args: args}})
	return b
}

func (b *UpdateBuilder) Where(conditions ...Condition) *UpdateBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *UpdateBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("update table is required")
	}
	if len(b.sets) == 0 {
		return "", nil, fmt.Errorf("update sets are required")
	}

	var w writer
	w.buf.WriteString("UPDATE " + b.table + " SET ")
	for i, s := range b.sets {
		if i > 0 {
			w.buf.WriteString(", ")
		}
		w.buf.WriteString(s.column + " = ")
		if s.expr != nil {
			s.expr.write(&w)
			continue
		}
		w.bind(s.value)
	}
	w.where(b.where)
	return w.buf.String(), w.args, nil
}

type DeleteBuilder struct {
	table string
	where []Condition
}

func DeleteFrom(table string) *DeleteBuilder {
	return &DeleteBuilder{table: table}
}

func (b *DeleteBuilder) Where(conditions ...Condition) *DeleteBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *DeleteBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("delete table is required")
	}
	if len(b.where) == 0 {
		return "", nil, fmt.Errorf("delete without conditions is not allowed")
	}

	var w writer
	w.buf.WriteString("DELETE FROM " + b.table)
	w.where(b.where)
	return w.buf.String(), w.args, nil
}
