package defra

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// idPattern accepts DefraDB document IDs (bae-<uuid>) and other plain
// identifiers. Anything else never reaches a mutation string.
var idPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,500}$`)

// ValidateID reports whether id is safe to splice into a GraphQL document.
func ValidateID(id string) error {
	switch {
	case id == "":
		return errors.New("empty ID")
	case len(id) > 500:
		return fmt.Errorf("ID too long: %d characters", len(id))
	case !idPattern.MatchString(id):
		return errors.New("invalid ID format: contains unsafe characters")
	}
	return nil
}

// Order is a sort direction.
type Order string

const (
	Asc  Order = "ASC"
	Desc Order = "DESC"
)

// QueryBuilder builds a read query over one collection. Filter values are
// always sent as variables.
type QueryBuilder struct {
	collection string
	where      []condition
	fields     []string
	orderField string
	order      Order
	limit      int
}

type condition struct {
	field string
	op    string // _eq or _in
	typ   string // GraphQL variable type
	value any
}

// NewQuery starts a query on collection selecting only _docID.
func NewQuery(collection string) *QueryBuilder {
	return &QueryBuilder{collection: collection, fields: []string{"_docID"}}
}

// Filter matches documents whose field equals value.
func (q *QueryBuilder) Filter(field string, value any) *QueryBuilder {
	typ := scalarType(value)
	if field == "_docID" {
		typ = "ID"
	}
	q.where = append(q.where, condition{field: field, op: "_eq", typ: typ, value: value})
	return q
}

// FilterIn matches documents whose field is one of values.
func (q *QueryBuilder) FilterIn(field string, values []string) *QueryBuilder {
	typ := "[String!]"
	if field == "_docID" {
		typ = "[ID!]"
	}
	q.where = append(q.where, condition{field: field, op: "_in", typ: typ, value: values})
	return q
}

// Fields replaces the selection set.
func (q *QueryBuilder) Fields(fields ...string) *QueryBuilder {
	q.fields = fields
	return q
}

// OrderBy sorts results by field.
func (q *QueryBuilder) OrderBy(field string, dir Order) *QueryBuilder {
	q.orderField, q.order = field, dir
	return q
}

// Limit caps the number of results; zero means no cap.
func (q *QueryBuilder) Limit(n int) *QueryBuilder {
	q.limit = n
	return q
}

// Build returns the query document and its variables.
func (q *QueryBuilder) Build() (string, map[string]any) {
	vars := make(map[string]any, len(q.where))
	decls := make([]string, len(q.where))
	filters := make([]string, len(q.where))
	for i, c := range q.where {
		name := fmt.Sprintf("v%d", i)
		vars[name] = c.value
		decls[i] = fmt.Sprintf("$%s: %s", name, c.typ)
		filters[i] = fmt.Sprintf("%s: {%s: $%s}", c.field, c.op, name)
	}

	var args []string
	if len(filters) > 0 {
		args = append(args, "filter: {"+strings.Join(filters, ", ")+"}")
	}
	if q.orderField != "" {
		args = append(args, fmt.Sprintf("order: {%s: %s}", q.orderField, q.order))
	}
	if q.limit > 0 {
		args = append(args, fmt.Sprintf("limit: %d", q.limit))
	}

	var b strings.Builder
	if len(decls) > 0 {
		b.WriteString("query(" + strings.Join(decls, ", ") + ") ")
	}
	b.WriteString("{ " + q.collection)
	if len(args) > 0 {
		b.WriteString("(" + strings.Join(args, ", ") + ")")
	}
	b.WriteString(" { " + strings.Join(q.fields, " ") + " } }")
	return b.String(), vars
}

// Execute runs the query and turns GraphQL errors into a Go error.
func (q *QueryBuilder) Execute(ctx context.Context, client *Client) (*GQLResponse, error) {
	query, vars := q.Build()
	resp, err := client.Execute(ctx, query, vars)
	if err != nil {
		return nil, err
	}
	if msg := resp.Error(); msg != "" {
		return nil, fmt.Errorf("query %s: %s", q.collection, msg)
	}
	return resp, nil
}

// Count returns the number of documents in collection.
func Count(ctx context.Context, client *Client, collection string) (int, error) {
	resp, err := client.Execute(ctx, fmt.Sprintf("{ _count(%s: {}) }", collection), nil)
	if err != nil {
		return 0, err
	}
	if msg := resp.Error(); msg != "" {
		return 0, fmt.Errorf("count %s: %s", collection, msg)
	}
	n, ok := resp.Data["_count"].(float64)
	if !ok {
		return 0, fmt.Errorf("unexpected count response: %v", resp.Data)
	}
	return int(n), nil
}

func scalarType(v any) string {
	switch v.(type) {
	case int, int32, int64:
		return "Int"
	case float32, float64:
		return "Float"
	case bool:
		return "Boolean"
	default:
		return "String"
	}
}
