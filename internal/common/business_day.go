package common

import "time"

// BusinessZone is the fixed UTC+5:30 offset all restaurants bill in.
// It has no DST, so a fixed zone is exact.
var BusinessZone = time.FixedZone("IST", 5*60*60+30*60)

// TodayStartUTC returns local midnight of now's business day, expressed in UTC.
func TodayStartUTC(now time.Time) time.Time {
	local := now.In(BusinessZone)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, BusinessZone)
	return midnight.UTC()
}

// YesterdayStartUTC returns local midnight of the previous business day in UTC.
func YesterdayStartUTC(now time.Time) time.Time {
	return TodayStartUTC(now).Add(-24 * time.Hour)
}

// BusinessDate formats now's business day as YYYY-MM-DD.
func BusinessDate(now time.Time) string {
	return now.In(BusinessZone).Format("2006-01-02")
}

// IsToday reports whether t falls on now's business day. The lower bound is inclusive.
func IsToday(t, now time.Time) bool {
	return !t.Before(TodayStartUTC(now))
}
