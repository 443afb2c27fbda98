package earnings

import "sort"

// Aggregate partitions records into dated groups and an unavailable tail.
//
// Dated records sort by calendar date, then date-only before timed, then time
// of day. Equal keys keep arrival order. Unavailable records keep arrival
// order.
func Aggregate(records []Record) *Report {
	dated := make([]Record, 0, len(records))
	report := &Report{}

	for _, rec := range records {
		if rec.HasDate() {
			dated = append(dated, rec)
		} else {
			report.Unavailable = append(report.Unavailable, rec)
		}
	}

	sort.SliceStable(dated, func(i, j int) bool {
		return lessByDate(dated[i], dated[j])
	})

	for _, rec := range dated {
		date := rec.Earnings.Date()
		if n := len(report.Groups); n > 0 && report.Groups[n-1].Date == date {
			report.Groups[n-1].Records = append(report.Groups[n-1].Records, rec)
			continue
		}
		report.Groups = append(report.Groups, DateGroup{Date: date, Records: []Record{rec}})
	}

	return report
}

func lessByDate(a, b Record) bool {
	da, db := a.Earnings.Date(), b.Earnings.Date()
	if da != db {
		return da < db
	}
	if a.Earnings.HasTime != b.Earnings.HasTime {
		return !a.Earnings.HasTime
	}
	return a.Earnings.Time.Before(b.Earnings.Time)
}
