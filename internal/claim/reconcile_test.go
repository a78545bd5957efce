package claim

import (
	"errors"
	"testing"
	"time"
)

func TestCanonicalInstant(t *testing.T) {
	t.Parallel()

	mondaySchedule := Schedule{
		ID:            "schedule-1",
		SessionTypeID: "T1",
		Weekdays:      []time.Weekday{time.Monday},
		Hour:          18,
		Minute:        0,
	}

	t.Run("rejects a date outside the weekday set", func(t *testing.T) {
		t.Parallel()

		// 2024-03-05 is a Tuesday.
		tuesday := time.Date(2024, time.March, 5, 10, 30, 0, 0, time.UTC)
		if _, err := CanonicalInstant(mondaySchedule, tuesday); !errors.Is(err, ErrWeekdayNotScheduled) {
			t.Fatalf("expected ErrWeekdayNotScheduled, got %v", err)
		}
	})

	t.Run("overlays schedule time on the target date", func(t *testing.T) {
		t.Parallel()

		// 2024-03-04 is a Monday; caller-supplied time-of-day is ignored.
		monday := time.Date(2024, time.March, 4, 3, 17, 44, 123456, time.UTC)
		instant, err := CanonicalInstant(mondaySchedule, monday)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := time.Date(2024, time.March, 4, 18, 0, 0, 0, time.UTC)
		if !instant.Equal(want) {
			t.Fatalf("expected %v, got %v", want, instant)
		}
		if instant.Second() != 0 || instant.Nanosecond() != 0 {
			t.Fatalf("expected zeroed seconds and nanoseconds, got %v", instant)
		}
	})

	t.Run("evaluates the weekday in UTC", func(t *testing.T) {
		t.Parallel()

		// Monday 01:00 JST is still Sunday in UTC; the offset is informational only.
		jst := time.FixedZone("JST", 9*60*60)
		mondayInJST := time.Date(2024, time.March, 4, 1, 0, 0, 0, jst)
		if _, err := CanonicalInstant(mondaySchedule, mondayInJST); !errors.Is(err, ErrWeekdayNotScheduled) {
			t.Fatalf("expected ErrWeekdayNotScheduled for UTC Sunday, got %v", err)
		}
	})

	t.Run("is deterministic for repeated resolutions", func(t *testing.T) {
		t.Parallel()

		monday := time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)
		first, err := CanonicalInstant(mondaySchedule, monday)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := CanonicalInstant(mondaySchedule, monday.Add(4*time.Hour))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !first.Equal(second) {
			t.Fatalf("expected identical instants, got %v and %v", first, second)
		}
	})

	t.Run("supports multiple weekdays", func(t *testing.T) {
		t.Parallel()

		schedule := Schedule{
			ID:            "schedule-2",
			SessionTypeID: "T2",
			Weekdays:      []time.Weekday{time.Wednesday, time.Saturday},
			Hour:          7,
			Minute:        45,
		}

		// 2024-03-09 is a Saturday.
		saturday := time.Date(2024, time.March, 9, 23, 59, 0, 0, time.UTC)
		instant, err := CanonicalInstant(schedule, saturday)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := time.Date(2024, time.March, 9, 7, 45, 0, 0, time.UTC)
		if !instant.Equal(want) {
			t.Fatalf("expected %v, got %v", want, instant)
		}
	})
}

func TestValidateSchedule(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		schedule Schedule
		wantErr  bool
	}{
		{
			name:     "valid single weekday",
			schedule: Schedule{Weekdays: []time.Weekday{time.Monday}, Hour: 18, Minute: 0},
		},
		{
			name:     "valid edge values",
			schedule: Schedule{Weekdays: []time.Weekday{time.Sunday, time.Saturday}, Hour: 23, Minute: 59},
		},
		{
			name:     "empty weekday set",
			schedule: Schedule{Hour: 12, Minute: 0},
			wantErr:  true,
		},
		{
			name:     "hour out of range",
			schedule: Schedule{Weekdays: []time.Weekday{time.Friday}, Hour: 24, Minute: 0},
			wantErr:  true,
		},
		{
			name:     "negative hour",
			schedule: Schedule{Weekdays: []time.Weekday{time.Friday}, Hour: -1, Minute: 0},
			wantErr:  true,
		},
		{
			name:     "minute out of range",
			schedule: Schedule{Weekdays: []time.Weekday{time.Friday}, Hour: 12, Minute: 60},
			wantErr:  true,
		},
		{
			name:     "weekday out of range",
			schedule: Schedule{Weekdays: []time.Weekday{time.Weekday(7)}, Hour: 12, Minute: 0},
			wantErr:  true,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateSchedule(tc.schedule)
			if tc.wantErr && !errors.Is(err, ErrInvalidSchedule) {
				t.Fatalf("expected ErrInvalidSchedule, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
