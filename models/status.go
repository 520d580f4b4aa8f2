package models

// IncidentStatus is the lifecycle state of an incident report.
type IncidentStatus string

const (
	StatusReported    IncidentStatus = "reported"
	StatusUnderReview IncidentStatus = "under_review"
	StatusResolved    IncidentStatus = "resolved"
	StatusDismissed   IncidentStatus = "dismissed"
	StatusFake        IncidentStatus = "fake"
)

// reachable lists the statuses an incident may move to from each state.
// Terminal states have no outgoing edges.
var reachable = map[IncidentStatus][]IncidentStatus{
	StatusReported:    {StatusUnderReview, StatusResolved, StatusDismissed, StatusFake},
	StatusUnderReview: {StatusResolved, StatusDismissed, StatusFake},
	StatusResolved:    {},
	StatusDismissed:   {},
	StatusFake:        {},
}

// transitionRoles names the roles allowed to trigger a move INTO each status.
var transitionRoles = map[IncidentStatus][]string{
	StatusUnderReview: {RoleAuthority, RoleAdmin},
	StatusResolved:    {RoleAuthority, RoleAdmin},
	StatusDismissed:   {RoleAuthority, RoleAdmin},
	StatusFake:        {RoleAdmin},
}

// IsValidStatus reports whether s is a known lifecycle status.
func IsValidStatus(s IncidentStatus) bool {
	_, ok := reachable[s]
	return ok
}

// IsTerminal reports whether no further transition is permitted from s.
func (s IncidentStatus) IsTerminal() bool {
	edges, ok := reachable[s]
	return ok && len(edges) == 0
}

// CanReach reports whether to is in the reachable set of from.
func CanReach(from, to IncidentStatus) bool {
	for _, next := range reachable[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanTransition is the single authorization policy for lifecycle moves:
// the role must be allowed to trigger the target status AND the edge must
// exist in the state machine. Every mutation path consults this before
// touching the database.
func CanTransition(roleName string, from, to IncidentStatus) bool {
	if !CanReach(from, to) {
		return false
	}
	for _, r := range transitionRoles[to] {
		if r == roleName {
			return true
		}
	}
	return false
}
