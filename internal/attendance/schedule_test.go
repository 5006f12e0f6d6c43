package attendance

import (
	"testing"
	"time"

	"absensi-backend/internal/platform/db"
)

func TestScheduleAdmit(t *testing.T) {
	sched := ScheduleFromConfig([]db.SlotConfig{
		{Label: "Jadwal 1", Start: "07:00", End: "07:10"},
		{Label: "Jadwal 2", Start: "07:30", End: "07:40"},
	})

	at := func(hh, mm int) time.Time {
		return time.Date(2024, 1, 15, hh, mm, 30, 0, time.UTC)
	}

	tests := []struct {
		name     string
		now      time.Time
		admitted bool
		slot     string
	}{
		{name: "inside first window", now: at(7, 5), admitted: true, slot: "Jadwal 1"},
		{name: "start bound inclusive", now: at(7, 0), admitted: true, slot: "Jadwal 1"},
		{name: "end bound inclusive", now: at(7, 10), admitted: true, slot: "Jadwal 1"},
		{name: "between windows", now: at(7, 15), admitted: false},
		{name: "inside second window", now: at(7, 33), admitted: true, slot: "Jadwal 2"},
		{name: "before all windows", now: at(6, 59), admitted: false},
		{name: "after all windows", now: at(22, 0), admitted: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot, ok := sched.Admit(tt.now)
			if ok != tt.admitted {
				t.Fatalf("Admit() admitted = %v, want %v", ok, tt.admitted)
			}
			if tt.admitted && slot.Label != tt.slot {
				t.Errorf("Admit() slot = %q, want %q", slot.Label, tt.slot)
			}
		})
	}
}

func TestScheduleFromConfigDefaults(t *testing.T) {
	sched := ScheduleFromConfig(nil)
	slots := sched.Slots()
	if len(slots) != 10 {
		t.Fatalf("default schedule has %d slots, want 10", len(slots))
	}
	if slots[0].Label != "Jadwal 1" || slots[0].Start != "07:00" {
		t.Errorf("unexpected first slot: %+v", slots[0])
	}
	// the late window spans into the evening
	last := slots[len(slots)-1]
	if last.StartMinute != 21*60+30 || last.EndMinute != 23*60+40 {
		t.Errorf("unexpected last slot minutes: %+v", last)
	}
}
