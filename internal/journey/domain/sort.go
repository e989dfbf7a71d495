package domain

import "sort"

func urgencyRank(p Prospect) int {
	switch {
	case p.IsStalled && p.Actionable():
		return 0
	case p.Actionable():
		return 1
	default:
		return 2
	}
}

// SortByUrgency orders prospects in place: stalled and actionable first, then
// actionable, then by days in pipeline descending. Equal items keep their order.
func SortByUrgency(prospects []Prospect) {
	sort.SliceStable(prospects, func(i, j int) bool {
		ri, rj := urgencyRank(prospects[i]), urgencyRank(prospects[j])
		if ri != rj {
			return ri < rj
		}
		return prospects[i].DaysInPipeline > prospects[j].DaysInPipeline
	})
}
