package builder

import (
	"fmt"
	"strings"
)

// SQLBuilder helps construct SQL queries dynamically.
// Conditions are written with "?" markers which Build rewrites to
// numbered "$n" placeholders, accepted by both lib/pq and go-sqlite3.
type SQLBuilder struct {
	table     string
	columns   []string
	values    []interface{}
	setCols   []string
	setArgs   []interface{}
	where     []string
	whereArgs []interface{}
	joins     []string
	orderBy   []string
	returning []string
	limit     int
	offset    int
	statement statementKind
}

type statementKind int

const (
	stmtSelect statementKind = iota
	stmtInsert
	stmtUpdate
	stmtDelete
)

// NewSQLBuilder creates a new instance of SQLBuilder.
func NewSQLBuilder() *SQLBuilder {
	return &SQLBuilder{}
}

// Select specifies the columns to retrieve.
func (b *SQLBuilder) Select(cols ...string) *SQLBuilder {
	b.statement = stmtSelect
	b.columns = cols
	return b
}

// Insert specifies the table and columns for insertion.
func (b *SQLBuilder) Insert(table string, cols ...string) *SQLBuilder {
	b.statement = stmtInsert
	b.table = table
	b.columns = cols
	return b
}

// Update specifies the table to update.
func (b *SQLBuilder) Update(table string) *SQLBuilder {
	b.statement = stmtUpdate
	b.table = table
	return b
}

// Delete specifies the table to delete from.
func (b *SQLBuilder) Delete(table string) *SQLBuilder {
	b.statement = stmtDelete
	b.table = table
	return b
}

// From specifies the table to select from.
func (b *SQLBuilder) From(table string) *SQLBuilder {
	b.table = table
	return b
}

// Set adds a column assignment to an UPDATE.
func (b *SQLBuilder) Set(col string, val interface{}) *SQLBuilder {
	b.setCols = append(b.setCols, col)
	b.setArgs = append(b.setArgs, val)
	return b
}

// Values specifies the values for insertion.
func (b *SQLBuilder) Values(vals ...interface{}) *SQLBuilder {
	b.values = vals
	return b
}

// Where adds a condition; multiple conditions are joined with AND.
func (b *SQLBuilder) Where(condition string, args ...interface{}) *SQLBuilder {
	b.where = append(b.where, condition)
	b.whereArgs = append(b.whereArgs, args...)
	return b
}

// Join adds a JOIN clause.
func (b *SQLBuilder) Join(joinType, table, on string) *SQLBuilder {
	b.joins = append(b.joins, fmt.Sprintf("%s JOIN %s ON %s", joinType, table, on))
	return b
}

// OrderBy adds an ORDER BY clause.
func (b *SQLBuilder) OrderBy(order string) *SQLBuilder {
	b.orderBy = append(b.orderBy, order)
	return b
}

// Limit adds a LIMIT clause.
func (b *SQLBuilder) Limit(limit int) *SQLBuilder {
	b.limit = limit
	return b
}

// Offset adds an OFFSET clause.
func (b *SQLBuilder) Offset(offset int) *SQLBuilder {
	b.offset = offset
	return b
}

// Returning adds a RETURNING clause to INSERT, UPDATE or DELETE.
func (b *SQLBuilder) Returning(cols ...string) *SQLBuilder {
	b.returning = cols
	return b
}

// Build constructs the final SQL string and arguments.
func (b *SQLBuilder) Build() (string, []interface{}) {
	var sb strings.Builder
	var args []interface{}
	next := 1

	switch b.statement {
	case stmtSelect:
		sb.WriteString("SELECT ")
		sb.WriteString(strings.Join(b.columns, ", "))
		sb.WriteString(" FROM ")
		sb.WriteString(b.table)
		for _, join := range b.joins {
			sb.WriteString(" ")
			sb.WriteString(join)
		}
	case stmtInsert:
		sb.WriteString("INSERT INTO ")
		sb.WriteString(b.table)
		sb.WriteString(" (")
		sb.WriteString(strings.Join(b.columns, ", "))
		sb.WriteString(") VALUES (")
		placeholders := make([]string, len(b.values))
		for i := range b.values {
			placeholders[i] = fmt.Sprintf("$%d", next)
			next++
		}
		sb.WriteString(strings.Join(placeholders, ", "))
		sb.WriteString(")")
		args = append(args, b.values...)
	case stmtUpdate:
		sb.WriteString("UPDATE ")
		sb.WriteString(b.table)
		sb.WriteString(" SET ")
		setClauses := make([]string, len(b.setCols))
		for i, col := range b.setCols {
			setClauses[i] = fmt.Sprintf("%s = $%d", col, next)
			next++
		}
		sb.WriteString(strings.Join(setClauses, ", "))
		args = append(args, b.setArgs...)
	case stmtDelete:
		sb.WriteString("DELETE FROM ")
		sb.WriteString(b.table)
	}

	if len(b.where) > 0 && b.statement != stmtInsert {
		sb.WriteString(" WHERE ")
		sb.WriteString(numberPlaceholders(strings.Join(b.where, " AND "), &next))
		args = append(args, b.whereArgs...)
	}

	if b.statement == stmtSelect {
		if len(b.orderBy) > 0 {
			sb.WriteString(" ORDER BY ")
			sb.WriteString(strings.Join(b.orderBy, ", "))
		}
		if b.limit > 0 {
			sb.WriteString(fmt.Sprintf(" LIMIT %d", b.limit))
		}
		if b.offset > 0 {
			sb.WriteString(fmt.Sprintf(" OFFSET %d", b.offset))
		}
	}

	if len(b.returning) > 0 && b.statement != stmtSelect {
		sb.WriteString(" RETURNING ")
		sb.WriteString(strings.Join(b.returning, ", "))
	}

	return sb.String(), args
}

// numberPlaceholders rewrites each "?" to the next "$n".
func numberPlaceholders(clause string, next *int) string {
	parts := strings.Split(clause, "?")
	var sb strings.Builder
	for i, part := range parts {
		sb.WriteString(part)
		if i < len(parts)-1 {
			sb.WriteString(fmt.Sprintf("$%d", *next))
			*next++
		}
	}
	return sb.String()
}
