package common

// TimeRange maps a human label to a day count.
type TimeRange struct {
	Label string `json:"label"`
	Days  int    `json:"days"`
}

// TimeRanges is static for the process lifetime, in display order.
var TimeRanges = []TimeRange{
	{Label: "1 Hari", Days: 1},
	{Label: "3 Hari", Days: 3},
	{Label: "7 Hari", Days: 7},
	{Label: "1 Bulan", Days: 30},
	{Label: "3 Bulan", Days: 90},
	{Label: "6 Bulan", Days: 180},
	{Label: "1 Tahun", Days: 365},
}

// TimeRangeByLabel looks up a range by its exact label.
func TimeRangeByLabel(label string) (TimeRange, bool) {
	for _, r := range TimeRanges {
		if r.Label == label {
			return r, true
		}
	}
	return TimeRange{}, false
}

// TimeRangeLabels returns the labels in display order.
func TimeRangeLabels() []string {
	res := make([]string, 0, len(TimeRanges))
	for _, r := range TimeRanges {
		res = append(res, r.Label)
	}
	return res
}
