package normalize

import (
	"encoding/json"
	"log/slog"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/teemow/adsmcp/internal/logging"
)

// NotAvailable marks a top-level field that could not be read while
// building a degraded row.
const NotAvailable = "N/A"

// Row is a Normalized Row: attribute path to normalized value, in the
// order the attributes were requested.
type Row struct {
	values   *orderedmap.OrderedMap[string, any]
	degraded bool
}

// Get returns the value stored for attribute.
func (r *Row) Get(attribute string) (any, bool) {
	return r.values.Get(attribute)
}

// Keys returns the attribute paths in order.
func (r *Row) Keys() []string {
	keys := make([]string, 0, r.values.Len())
	for pair := r.values.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Len returns the number of attributes in the row.
func (r *Row) Len() int {
	return r.values.Len()
}

// Degraded reports whether the row was rebuilt from top-level string
// representations after the trial encode failed.
func (r *Row) Degraded() bool {
	return r.degraded
}

// MarshalJSON encodes the row as a JSON object with keys in request order.
func (r Row) MarshalJSON() ([]byte, error) {
	if r.values == nil {
		return []byte("{}"), nil
	}
	return r.values.MarshalJSON()
}

// Row resolves every attribute against row and normalizes the results.
//
// A path that cannot be resolved is stored as "Error: <reason>" and does
// not affect other attributes. If the assembled row cannot be encoded as
// JSON, it is replaced by a degraded row holding the string representation
// of each attribute's top-level field (or NotAvailable).
func (n *Normalizer) Row(row any, attributes []string) *Row {
	values := orderedmap.New[string, any]()

	for _, attr := range attributes {
		raw, err := Resolve(row, attr)
		if err != nil {
			n.logger.Warn("failed to resolve attribute",
				logging.Attribute(attr),
				logging.Err(err),
			)
			values.Set(attr, "Error: "+err.Error())
			continue
		}
		values.Set(attr, n.Value(raw))
	}

	if _, err := json.Marshal(values); err != nil {
		n.logger.Error("normalized row is not JSON-encodable, using top-level string values",
			slog.Any("attributes", attributes),
			logging.ValueType(row),
			logging.Err(err),
		)
		return n.fallbackRow(row, attributes)
	}

	return &Row{values: values}
}

func (n *Normalizer) fallbackRow(row any, attributes []string) *Row {
	values := orderedmap.New[string, any]()
	for _, attr := range attributes {
		top, _, _ := strings.Cut(attr, ".")
		values.Set(attr, n.topLevelString(row, top))
	}
	return &Row{values: values, degraded: true}
}

func (n *Normalizer) topLevelString(row any, name string) (s string) {
	defer func() {
		if r := recover(); r != nil {
			s = NotAvailable
		}
	}()

	if name == "" {
		return NotAvailable
	}
	v, err := lookup(row, name)
	if err != nil {
		return NotAvailable
	}
	str, err := defaultString(v)
	if err != nil {
		return NotAvailable
	}
	return str
}
