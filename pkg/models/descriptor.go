package models

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ColumnType is the destination type a selected value is converted to.
type ColumnType string

const (
	TypeInt   ColumnType = "int"
	TypeFloat ColumnType = "float"
	TypeText  ColumnType = "text"
	TypeBytes ColumnType = "bytes"
)

func (t ColumnType) valid() bool {
	switch t {
	case TypeInt, TypeFloat, TypeText, TypeBytes:
		return true
	}
	return false
}

var identRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Column is one resolved (source column, destination column, type) triple.
// Source is the label selected from the source store. When Expr is set the
// label is produced by that SQL expression.
type Column struct {
	Source string     `json:"source"`
	Expr   string     `json:"expr,omitempty"`
	Target string     `json:"target,omitempty"`
	Type   ColumnType `json:"type"`
}

// Destination returns the destination column name.
func (c Column) Destination() string {
	if c.Target == "" {
		return c.Source
	}
	return c.Target
}

func (c Column) selectExpr() string {
	if c.Expr == "" {
		return c.Source
	}
	return c.Expr + " AS " + c.Source
}

// QueryDescriptor describes a selection over the metrics table: projection,
// optional predicate and optional ordering.
type QueryDescriptor struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
	Where   string   `json:"where,omitempty"`
	OrderBy string   `json:"orderBy,omitempty"`
}

// Validate checks that the descriptor resolves to a usable column list.
func (d QueryDescriptor) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("query descriptor has no name")
	}
	if len(d.Columns) == 0 {
		return fmt.Errorf("query %q selects no columns", d.Name)
	}
	sources := make(map[string]bool, len(d.Columns))
	targets := make(map[string]bool, len(d.Columns))
	for i, c := range d.Columns {
		if !identRe.MatchString(c.Source) {
			return fmt.Errorf("query %q: column %d: invalid source name %q", d.Name, i, c.Source)
		}
		if !identRe.MatchString(c.Destination()) {
			return fmt.Errorf("query %q: column %d: invalid target name %q", d.Name, i, c.Destination())
		}
		if !c.Type.valid() {
			return fmt.Errorf("query %q: column %s: unknown type %q", d.Name, c.Source, c.Type)
		}
		if sources[c.Source] {
			return fmt.Errorf("query %q: duplicate source column %s", d.Name, c.Source)
		}
		if targets[c.Destination()] {
			return fmt.Errorf("query %q: duplicate target column %s", d.Name, c.Destination())
		}
		sources[c.Source] = true
		targets[c.Destination()] = true
	}
	return nil
}

// Sources returns the selected labels in select order.
func (d QueryDescriptor) Sources() []string {
	out := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		out[i] = c.Source
	}
	return out
}

// Targets returns the destination columns, positionally aligned with Sources.
func (d QueryDescriptor) Targets() []string {
	out := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		out[i] = c.Destination()
	}
	return out
}

// HasTarget reports whether the destination column is written by d.
func (d QueryDescriptor) HasTarget(name string) bool {
	for _, c := range d.Columns {
		if c.Destination() == name {
			return true
		}
	}
	return false
}

// Query renders the SELECT statement over the metrics table.
func (d QueryDescriptor) Query() string {
	exprs := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		exprs[i] = c.selectExpr()
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(exprs, ", "))
	b.WriteString(" FROM ")
	b.WriteString(MetricsTable)
	if d.Where != "" {
		b.WriteString(" WHERE ")
		b.WriteString(d.Where)
	}
	if d.OrderBy != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(d.OrderBy)
	}
	return b.String()
}

// LoadDescriptors parses a JSON array of query descriptors and validates
// each of them.
func LoadDescriptors(data []byte) ([]QueryDescriptor, error) {
	var ds []QueryDescriptor
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, err
	}
	for _, d := range ds {
		if err := d.Validate(); err != nil {
			return nil, err
		}
	}
	return ds, nil
}
