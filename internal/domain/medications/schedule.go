package medications

import (
	"sort"
	"strings"
	"time"
)

// ScheduleEntry is one dose slot in a patient's daily plan.
type ScheduleEntry struct {
	Time              string  `json:"time"`
	Name              string  `json:"name"`
	Dosage            string  `json:"dosage"`
	Purpose           *string `json:"purpose,omitempty"`
	PrescribingDoctor *string `json:"prescribing_doctor,omitempty"`
}

// AsNeededSlot marks doses taken on demand rather than at a clock time.
// It always sorts after every timed slot.
const AsNeededSlot = "As needed"

// frequencySlots maps frequency phrases to dose times. Order matters:
// the first phrase contained in the frequency text wins.
var frequencySlots = []struct {
	phrase string
	times  []string
}{
	{"once daily", []string{"08:00"}},
	{"twice daily", []string{"08:00", "20:00"}},
	{"three times daily", []string{"08:00", "14:00", "20:00"}},
	{"four times daily", []string{"08:00", "12:00", "16:00", "20:00"}},
	{"with breakfast", []string{"08:00"}},
	{"with dinner", []string{"19:00"}},
	{"before bed", []string{"22:00"}},
	{"as needed", []string{AsNeededSlot}},
}

// DoseTimes maps a free-text frequency onto clock slots. Matching is a
// case-insensitive substring check; unrecognized text defaults to a
// single morning dose.
func DoseTimes(frequency string) []string {
	f := strings.ToLower(frequency)
	for _, e := range frequencySlots {
		if strings.Contains(f, e.phrase) {
			return e.times
		}
	}
	return []string{"08:00"}
}

// BuildSchedule flattens medications into one entry per dose slot, sorted
// by time of day. Entries sharing a slot keep their input order.
func BuildSchedule(meds []*Medication) []ScheduleEntry {
	entries := []ScheduleEntry{}
	for _, m := range meds {
		for _, slot := range DoseTimes(m.Frequency) {
			entries = append(entries, ScheduleEntry{
				Time:              slot,
				Name:              m.Name,
				Dosage:            m.Dosage,
				Purpose:           m.Purpose,
				PrescribingDoctor: m.PrescribingDoctor,
			})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return slotMinutes(entries[i].Time) < slotMinutes(entries[j].Time)
	})
	return entries
}

func slotMinutes(slot string) int {
	if slot == AsNeededSlot {
		return 24 * 60
	}
	t, err := time.Parse("15:04", slot)
	if err != nil {
		return 24 * 60
	}
	return t.Hour()*60 + t.Minute()
}
