package types

// ListType separates seeded standing segments from user-created lists.
type ListType string

const (
	ListSystem ListType = "System"
	ListCustom ListType = "Custom"
)

// CustomerList is a named customer segment.
//
// Count is a snapshot taken at save time and is never recomputed. Filter,
// Search and MemberIDs record how the list was derived so membership can be
// restored exactly; entries persisted before those fields existed carry
// neither. A non-nil MemberIDs, even empty, is the membership; nil means
// the list is derived from Filter.
type CustomerList struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Count       int      `json:"count"`
	Type        ListType `json:"type"`
	LastUpdated string   `json:"lastUpdated"`
	Description string   `json:"description,omitempty"`
	Filter      *Node    `json:"filter,omitempty"`
	Search      string   `json:"search,omitempty"`
	MemberIDs   []string `json:"memberIds"`
}

// IsSystem reports whether l is a seeded, non-deletable list.
func (l CustomerList) IsSystem() bool {
	return l.Type == ListSystem
}
