package attendance

import (
	"strconv"
	"strings"
	"time"

	"absensi-backend/internal/platform/db"
)

// Slot is one kiosk scan window, inclusive on both bounds, expressed as
// minutes of the day in the business timezone.
type Slot struct {
	Label       string `json:"label"`
	StartMinute int    `json:"-"`
	EndMinute   int    `json:"-"`
	Start       string `json:"start"` // "07:00"
	End         string `json:"end"`   // "07:10"
}

// Schedule is the fixed, ordered slot table. Admission is decided here and
// nowhere else; no ledger write happens outside a slot.
type Schedule struct {
	slots []Slot
}

// DefaultSchedule mirrors the deployed kiosk's ten windows.
func DefaultSchedule() Schedule {
	mk := func(label, start, end string) Slot {
		return Slot{
			Label:       label,
			Start:       start,
			End:         end,
			StartMinute: hmToMinutes(start),
			EndMinute:   hmToMinutes(end),
		}
	}
	return Schedule{slots: []Slot{
		mk("Jadwal 1", "07:00", "07:10"),
		mk("Jadwal 2", "07:30", "07:40"),
		mk("Jadwal 3", "08:00", "08:10"),
		mk("Jadwal 4", "08:30", "08:40"),
		mk("Jadwal 5", "09:00", "09:10"),
		mk("Jadwal 6", "09:30", "09:40"),
		mk("Jadwal 7", "10:00", "10:10"),
		mk("Jadwal 8", "10:30", "10:40"),
		mk("Jadwal 9", "11:00", "11:10"),
		mk("Jadwal 10", "21:30", "23:40"),
	}}
}

// ScheduleFromConfig builds the slot table from config, falling back to the
// default table when the config section is empty.
func ScheduleFromConfig(slots []db.SlotConfig) Schedule {
	if len(slots) == 0 {
		return DefaultSchedule()
	}
	out := make([]Slot, 0, len(slots))
	for _, sc := range slots {
		out = append(out, Slot{
			Label:       sc.Label,
			Start:       sc.Start,
			End:         sc.End,
			StartMinute: hmToMinutes(sc.Start),
			EndMinute:   hmToMinutes(sc.End),
		})
	}
	return Schedule{slots: out}
}

func (s Schedule) Slots() []Slot { return s.slots }

// Admit returns the first slot whose [start, end] window contains now's
// minute of day. Pure function of the clock value; callers pass a time
// already shifted into the business timezone.
func (s Schedule) Admit(now time.Time) (Slot, bool) {
	min := now.Hour()*60 + now.Minute()
	for _, slot := range s.slots {
		if min >= slot.StartMinute && min <= slot.EndMinute {
			return slot, true
		}
	}
	return Slot{}, false
}

func hmToMinutes(hm string) int {
	parts := strings.SplitN(hm, ":", 2)
	if len(parts) != 2 {
		return 0
	}
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	return h*60 + m
}
