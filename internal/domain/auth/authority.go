package auth

import "time"

// Actor is the authenticated caller as seen by the domain services.
type Actor struct {
	ID   string
	Role string
}

// CanActOn reports whether the actor may approve or reject records belonging
// to the subject. Administrators have unconditional authority; managers only
// over their direct reports. subjectManagerID must be looked up fresh for
// every decision, since the org hierarchy can change between request creation
// and approval.
//
// The administrator bypass of the hierarchy check mirrors the product's
// current policy and is intentionally not unified with the manager path.
func CanActOn(actor Actor, subjectManagerID string) bool {
	switch actor.Role {
	case RoleAdministrator:
		return true
	case RoleManager:
		return subjectManagerID != "" && subjectManagerID == actor.ID
	}
	return false
}

// CanBackdate reports whether the actor may log attendance for the given
// date. Managers may only backdate strictly past dates; administrators may
// log any date. Dates are compared at day granularity.
func CanBackdate(actor Actor, date, today time.Time) bool {
	switch actor.Role {
	case RoleAdministrator:
		return true
	case RoleManager:
		y1, m1, d1 := date.Date()
		y2, m2, d2 := today.Date()
		dateDay := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
		todayDay := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
		return dateDay.Before(todayDay)
	}
	return false
}
