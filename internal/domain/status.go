package domain

// ApplicationStatus is the lifecycle state of an onboarding application.
type ApplicationStatus string

const (
	ApplicationStatusNeverSubmitted ApplicationStatus = "never_submitted"
	ApplicationStatusPending        ApplicationStatus = "pending"
	ApplicationStatusApproved       ApplicationStatus = "approved"
	ApplicationStatusRejected       ApplicationStatus = "rejected"
)

// approved is terminal; rejected loops back to pending on re-submission.
var allowedTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationStatusNeverSubmitted: {ApplicationStatusPending},
	ApplicationStatusPending:        {ApplicationStatusApproved, ApplicationStatusRejected},
	ApplicationStatusRejected:       {ApplicationStatusPending},
	ApplicationStatusApproved:       {},
}

// AllowedNext returns the statuses reachable from current. Unknown statuses have none.
func AllowedNext(current ApplicationStatus) []ApplicationStatus {
	next := allowedTransitions[current]
	out := make([]ApplicationStatus, len(next))
	copy(out, next)
	return out
}

// CanTransition reports whether to is in AllowedNext(from).
func CanTransition(from, to ApplicationStatus) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s ApplicationStatus) IsTerminal() bool {
	next, ok := allowedTransitions[s]
	return ok && len(next) == 0
}

func (s ApplicationStatus) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}
