package gaql

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidQuery is returned for queries that cannot be built or parsed.
var ErrInvalidQuery = errors.New("invalid GAQL query")

// CampaignsQuery lists the id, name and status of every campaign.
const CampaignsQuery = "SELECT campaign.id, campaign.name, campaign.status FROM campaign"

var (
	fieldPattern    = regexp.MustCompile(`^[a-z_][a-z0-9_]*(\.[a-z_][a-z0-9_]*)*$`)
	resourcePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)
	selectPattern   = regexp.MustCompile(`(?is)^\s*SELECT\s+(.+?)\s+FROM\s+([A-Za-z_][A-Za-z0-9_]*)`)
)

// Query holds the clauses of a GAQL statement.
type Query struct {
	Fields     []string // selected attribute paths, e.g. "campaign.id"
	Resource   string   // FROM resource, e.g. "campaign"
	Conditions []string // joined with AND
	Orderings  []string // e.g. "metrics.clicks DESC"
	Limit      int      // 0 means no LIMIT clause
}

// Validate checks the query clauses.
func (q Query) Validate() error {
	if len(q.Fields) == 0 {
		return fmt.Errorf("%w: at least one field is required", ErrInvalidQuery)
	}
	for _, f := range q.Fields {
		if !fieldPattern.MatchString(strings.TrimSpace(f)) {
			return fmt.Errorf("%w: invalid field %q", ErrInvalidQuery, f)
		}
	}
	if !resourcePattern.MatchString(strings.TrimSpace(q.Resource)) {
		return fmt.Errorf("%w: invalid resource %q", ErrInvalidQuery, q.Resource)
	}
	if q.Limit < 0 {
		return fmt.Errorf("%w: limit must not be negative, got %d", ErrInvalidQuery, q.Limit)
	}
	return nil
}

// Build renders the query as
// SELECT f1, f2 FROM resource [WHERE c1 AND c2] [ORDER BY o1, o2] [LIMIT n].
func (q Query) Build() (string, error) {
	if err := q.Validate(); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(trimAll(q.Fields), ", "))
	b.WriteString(" FROM ")
	b.WriteString(strings.TrimSpace(q.Resource))

	if conditions := trimAll(q.Conditions); len(conditions) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conditions, " AND "))
	}
	if orderings := trimAll(q.Orderings); len(orderings) > 0 {
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(orderings, ", "))
	}
	if q.Limit > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(q.Limit))
	}
	return b.String(), nil
}

// AttributeFields returns the trimmed field list in request order.
func (q Query) AttributeFields() []string {
	return trimAll(q.Fields)
}

// SelectFields returns the SELECT list of a raw GAQL statement.
func SelectFields(query string) ([]string, error) {
	m := selectPattern.FindStringSubmatch(query)
	if m == nil {
		return nil, fmt.Errorf("%w: expected SELECT <fields> FROM <resource>", ErrInvalidQuery)
	}

	fields := trimAll(strings.Split(m[1], ","))
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty SELECT list", ErrInvalidQuery)
	}
	for _, f := range fields {
		if !fieldPattern.MatchString(f) {
			return nil, fmt.Errorf("%w: invalid field %q", ErrInvalidQuery, f)
		}
	}
	return fields, nil
}

// FromResource returns the FROM resource of a raw GAQL statement.
func FromResource(query string) (string, error) {
	m := selectPattern.FindStringSubmatch(query)
	if m == nil {
		return "", fmt.Errorf("%w: expected SELECT <fields> FROM <resource>", ErrInvalidQuery)
	}
	return strings.ToLower(m[2]), nil
}

func trimAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}
