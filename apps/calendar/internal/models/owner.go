package models

// OwnerFilter selects events by owner. A nil OwnerID selects every event,
// Shared adds the events that have no owner.
type OwnerFilter struct {
	OwnerID *string
	Shared  bool
}

// OwnedBy selects only the events of ownerID.
func OwnedBy(ownerID string) OwnerFilter {
	return OwnerFilter{OwnerID: &ownerID, Shared: false}
}

// VisibleTo selects the events of ownerID and the shared ones.
func VisibleTo(ownerID string) OwnerFilter {
	return OwnerFilter{OwnerID: &ownerID, Shared: true}
}

func (filter OwnerFilter) Matches(ownerID *string) bool {
	switch {
	case filter.OwnerID == nil:
		return true
	case ownerID == nil:
		return filter.Shared
	default:
		return *ownerID == *filter.OwnerID
	}
}
