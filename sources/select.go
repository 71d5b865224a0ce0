package sources

import (
	"fmt"
	"strings"

	"github.com/molnia/dbatch/core"
)

// buildSelect renders the base select statement for a query. Paging
// conditions are appended by the paging stream.
func buildSelect(q *core.Query) string {
	var b strings.Builder

	b.WriteString("SELECT ")
	if len(q.Columns) > 0 {
		b.WriteString(strings.Join(q.Columns, ", "))
	} else {
		b.WriteString("*")
	}
	b.WriteString(" FROM ")
	b.WriteString(q.Table)

	if q.Where != "" {
		fmt.Fprintf(&b, " WHERE %s", q.Where)
	}
	if q.OrderBy != "" {
		fmt.Fprintf(&b, " ORDER BY %s", q.OrderBy)
	}

	return b.String()
}

// buildPageSelect renders a bounded keyset page of the query. afterKey
// tells whether the statement carries a "key > placeholder" condition for
// the last seen ordering key.
func buildPageSelect(q *core.Query, connector Connector, afterKey bool) string {
	var b strings.Builder

	b.WriteString("SELECT ")
	if len(q.Columns) > 0 {
		b.WriteString(strings.Join(q.Columns, ", "))
	} else {
		b.WriteString("*")
	}
	b.WriteString(" FROM ")
	b.WriteString(q.Table)

	var conditions []string
	if q.Where != "" {
		conditions = append(conditions, fmt.Sprintf("(%s)", q.Where))
	}
	if afterKey {
		conditions = append(conditions, fmt.Sprintf("%s > %s", q.OrderBy, connector.Placeholder(1)))
	}
	if len(conditions) > 0 {
		fmt.Fprintf(&b, " WHERE %s", strings.Join(conditions, " AND "))
	}

	fmt.Fprintf(&b, " ORDER BY %s LIMIT %d", q.OrderBy, q.PageSize)

	return b.String()
}
