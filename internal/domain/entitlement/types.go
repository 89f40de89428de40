package entitlement

// Ledger buckets. Leave requests reference these names on the wire.
const (
	TypeCasual  = "CasualLeave"
	TypeEarned  = "EarnedLeave"
	TypeCompOff = "CompensatoryOff"
)

func ValidType(leaveType string) bool {
	switch leaveType {
	case TypeCasual, TypeEarned, TypeCompOff:
		return true
	}
	return false
}
