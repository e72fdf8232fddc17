// internal/filter/apply.go
package filter

import (
	"strings"

	"github.com/solatis/bulkmsg/internal/types"
)

/*
 * Result set pipeline.
 *
 * Apply runs three stages over the customer snapshot, in order:
 *   1. Search: case-insensitive substring over name, email and phone
 *   2. Predicate: the compiled filter program
 *   3. View: restrict to the selected ids when SelectedOnly is set
 *
 * Input order is preserved. A stage with no criteria passes everything.
 */

// Query holds the non-predicate stages of Apply.
type Query struct {
	Search       string          // substring over name, email, phone; "" disables
	SelectedOnly bool            // restrict to SelectedIDs
	SelectedIDs  map[string]bool // consulted only when SelectedOnly is set
}

// Apply returns the customers passing search, predicate and selection, in
// input order. Each stage is the identity when it has no criteria. A nil
// program is an empty filter. Elements are copied into a fresh slice.
func Apply(customers []types.Customer, prog *Program, q Query) []types.Customer {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]types.Customer, 0, len(customers))

	for i := range customers {
		c := &customers[i]
		if search != "" && !MatchesSearch(c, search) {
			continue
		}
		if prog != nil && !prog.Matches(c) {
			continue
		}
		if q.SelectedOnly && !q.SelectedIDs[c.ID] {
			continue
		}
		out = append(out, *c)
	}
	return out
}

// MatchesSearch reports whether the lowercased query is a substring of the
// customer's name, email or phone.
func MatchesSearch(c *types.Customer, lowered string) bool {
	return strings.Contains(strings.ToLower(c.Name), lowered) ||
		strings.Contains(strings.ToLower(c.Email), lowered) ||
		strings.Contains(strings.ToLower(c.Phone), lowered)
}

// IDs returns the ids of customers in order.
func IDs(customers []types.Customer) []string {
	ids := make([]string, len(customers))
	for i := range customers {
		ids[i] = customers[i].ID
	}
	return ids
}
