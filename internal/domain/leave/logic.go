package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

// TotalDays counts calendar days in [start, end], inclusive. Weekends and
// holidays inside the range are counted; that is deliberate product policy.
func TotalDays(start, end time.Time) decimal.Decimal {
	days := int64(end.Sub(start).Hours()/24) + 1
	return decimal.NewFromInt(days)
}

// Overlaps reports whether [aStart, aEnd] and [bStart, bEnd] share any day.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !bStart.After(aEnd)
}
