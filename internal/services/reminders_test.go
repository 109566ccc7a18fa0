package services

import (
	"errors"
	"testing"
	"time"

	"hamanets/internal/core"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 9, 0, 0, 0, time.UTC)
}

func TestDailyStrategy_Next(t *testing.T) {
	anchor := day(2024, 1, 1)
	tests := []struct {
		name string
		from time.Time
		want time.Time
	}{
		{"anchor in the future", day(2023, 12, 1), anchor},
		{"same instant", anchor, anchor},
		{"start of later day", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), day(2024, 1, 15)},
		{"after today's occurrence", time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC), day(2024, 1, 16)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (DailyStrategy{}).Next(anchor, tt.from); !got.Equal(tt.want) {
				t.Errorf("DailyStrategy.Next() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWeeklyStrategy_Next(t *testing.T) {
	anchor := day(2024, 1, 1)
	tests := []struct {
		name string
		from time.Time
		want time.Time
	}{
		{"three days later", time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC), day(2024, 1, 8)},
		{"exactly a week later", time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), day(2024, 1, 8)},
		{"ten weeks later", time.Date(2024, 3, 11, 12, 0, 0, 0, time.UTC), day(2024, 3, 18)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (WeeklyStrategy{}).Next(anchor, tt.from); !got.Equal(tt.want) {
				t.Errorf("WeeklyStrategy.Next() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMonthlyStrategy_Next(t *testing.T) {
	tests := []struct {
		name   string
		anchor time.Time
		from   time.Time
		want   time.Time
	}{
		{"same month before day", day(2024, 1, 10), time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), day(2024, 3, 10)},
		{"same month after day", day(2024, 1, 10), time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), day(2024, 4, 10)},
		{"31st clamps in february", day(2024, 1, 31), time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), day(2024, 2, 29)},
		{"31st clamps in common year", day(2023, 1, 31), time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC), day(2023, 2, 28)},
		{"clamping does not drift", day(2024, 1, 31), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), day(2024, 3, 31)},
		{"30th in april", day(2024, 1, 31), time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC), day(2024, 4, 30)},
		{"year boundary", day(2024, 11, 15), time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC), day(2025, 2, 15)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (MonthlyStrategy{}).Next(tt.anchor, tt.from); !got.Equal(tt.want) {
				t.Errorf("MonthlyStrategy.Next() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestYearlyStrategy_Next(t *testing.T) {
	tests := []struct {
		name   string
		anchor time.Time
		from   time.Time
		want   time.Time
	}{
		{"before anniversary", day(2020, 6, 1), time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), day(2024, 6, 1)},
		{"after anniversary", day(2020, 6, 1), time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC), day(2025, 6, 1)},
		{"leap day in common year", day(2024, 2, 29), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), day(2025, 2, 28)},
		{"leap day in leap year", day(2024, 2, 29), time.Date(2028, 1, 1, 0, 0, 0, 0, time.UTC), day(2028, 2, 29)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (YearlyStrategy{}).Next(tt.anchor, tt.from); !got.Equal(tt.want) {
				t.Errorf("YearlyStrategy.Next() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetDuenessStrategy(t *testing.T) {
	for _, i := range []core.Interval{core.Daily, core.Weekly, core.Monthly, core.Yearly} {
		if _, err := GetDuenessStrategy(i); err != nil {
			t.Errorf("GetDuenessStrategy(%q) error = %v", i, err)
		}
	}
	_, err := GetDuenessStrategy("hourly")
	if !errors.Is(err, core.ErrInvalidInterval) {
		t.Errorf("expected ErrInvalidInterval, got %v", err)
	}
}

func TestNextDueDoesNotMutate(t *testing.T) {
	r := core.Reminder{ID: "r", DueDate: day(2024, 1, 10), IsRecurring: true, RecurringInterval: core.Monthly, IsActive: true}
	now := time.Date(2024, 5, 20, 15, 0, 0, 0, time.UTC)

	got := NextDue(r, now)
	if !got.Equal(day(2024, 6, 10)) {
		t.Errorf("NextDue() = %v, want 2024-06-10", got)
	}
	if !r.DueDate.Equal(day(2024, 1, 10)) {
		t.Error("NextDue must not change the stored due date")
	}

	oneOff := core.Reminder{DueDate: day(2024, 1, 10)}
	if got := NextDue(oneOff, now); !got.Equal(oneOff.DueDate) {
		t.Errorf("one-off NextDue() = %v, want stored date", got)
	}
	unknown := core.Reminder{DueDate: day(2024, 1, 10), IsRecurring: true, RecurringInterval: "hourly"}
	if got := NextDue(unknown, now); !got.Equal(unknown.DueDate) {
		t.Errorf("unknown interval NextDue() = %v, want stored date", got)
	}
}

func TestNextDueTodayCountsAsDue(t *testing.T) {
	r := core.Reminder{DueDate: day(2024, 1, 10), IsRecurring: true, RecurringInterval: core.Monthly}
	now := time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC)
	if got := NextDue(r, now); !got.Equal(day(2024, 3, 10)) {
		t.Errorf("NextDue() = %v, want today's occurrence", got)
	}
}

func TestUpcoming(t *testing.T) {
	now := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)
	reminders := []core.Reminder{
		{ID: "rent", DueDate: day(2024, 1, 25), IsRecurring: true, RecurringInterval: core.Monthly, IsActive: true},
		{ID: "gym", DueDate: day(2024, 5, 21), IsActive: true},
		{ID: "far", DueDate: day(2024, 7, 1), IsActive: true},
		{ID: "off", DueDate: day(2024, 5, 22), IsActive: false},
		{ID: "late", DueDate: day(2024, 5, 1), IsActive: true},
	}

	got := Upcoming(reminders, now, 7)
	ids := make([]string, len(got))
	for i, r := range got {
		ids[i] = r.ID
	}
	want := []string{"late", "gym", "rent"}
	if len(ids) != len(want) {
		t.Fatalf("Upcoming() ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("Upcoming() ids = %v, want %v", ids, want)
		}
	}
	if !got[0].Overdue || got[1].Overdue {
		t.Errorf("overdue flags = %v, %v", got[0].Overdue, got[1].Overdue)
	}
	if !got[2].NextDue.Equal(day(2024, 5, 25)) {
		t.Errorf("rent NextDue = %v", got[2].NextDue)
	}
}

func TestActive(t *testing.T) {
	got := Active([]core.Reminder{{ID: "a", IsActive: true}, {ID: "b"}, {ID: "c", IsActive: true}})
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Errorf("Active() = %v", got)
	}
}
