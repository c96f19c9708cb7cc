package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustClock(t *testing.T, s string) *ClockTime {
	t.Helper()
	c, err := ParseClock(s)
	require.NoError(t, err)
	return &c
}

func TestValidateRejectsMismatchedFields(t *testing.T) {
	nine := mustClock(t, "09:00")
	five := mustClock(t, "17:00")

	cases := []struct {
		name  string
		spec  RecurrenceSpec
		field string
	}{
		{
			"every_n_days without n_days",
			RecurrenceSpec{Kind: RecurDaily, Daily: &DailyRecurrence{
				Mode: DailyEveryNDays, WindowFrom: nine, WindowTo: five,
			}},
			"daily.n_days",
		},
		{
			"every_n_days with stale time_of_day",
			RecurrenceSpec{Kind: RecurDaily, Daily: &DailyRecurrence{
				Mode: DailyEveryNDays, NDays: 2, WindowFrom: nine, WindowTo: five, TimeOfDay: nine,
			}},
			"daily.time_of_day",
		},
		{
			"once_per_day with window",
			RecurrenceSpec{Kind: RecurDaily, Daily: &DailyRecurrence{
				Mode: DailyOncePerDay, TimeOfDay: nine, WindowFrom: nine,
			}},
			"daily.window_from",
		},
		{
			"weekly with empty day set",
			RecurrenceSpec{Kind: RecurWeekly, Weekly: &WeeklyRecurrence{
				Mode: WeeklyWindow, WindowFrom: nine, WindowTo: five,
			}},
			"weekly.days",
		},
		{
			"kind mismatch leaves stale struct",
			RecurrenceSpec{Kind: RecurOnce,
				Once:  &OnceRecurrence{Date: NewDate(2025, time.May, 1)},
				Daily: &DailyRecurrence{Mode: DailyOncePerDay, TimeOfDay: nine},
			},
			"daily",
		},
		{
			"missing kind struct",
			RecurrenceSpec{Kind: RecurAnnual},
			"annual",
		},
		{
			"unknown kind",
			RecurrenceSpec{Kind: RecurrenceKind("hourly")},
			"kind",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.spec.Validate()
			require.Error(t, err)
			var fieldErr *FieldError
			require.ErrorAs(t, err, &fieldErr)
			assert.Equal(t, tc.field, fieldErr.Field)
		})
	}
}

func TestValidateAcceptsWellFormedSpecs(t *testing.T) {
	nine := mustClock(t, "09:00")
	five := mustClock(t, "17:00")

	specs := []RecurrenceSpec{
		{Kind: RecurOnce, Once: &OnceRecurrence{Date: NewDate(2025, time.May, 1)}},
		{Kind: RecurDaily, Daily: &DailyRecurrence{Mode: DailyEveryNDays, NDays: 3, WindowFrom: nine, WindowTo: five}},
		{Kind: RecurDaily, Daily: &DailyRecurrence{Mode: DailyWeekdaysOnly, WindowFrom: nine, WindowTo: five}},
		{Kind: RecurDaily, Daily: &DailyRecurrence{Mode: DailyOncePerDay, TimeOfDay: nine}},
		{Kind: RecurWeekly, Weekly: &WeeklyRecurrence{Mode: WeeklyWindow, Days: NewWeekdaySet(time.Monday), WindowFrom: nine, WindowTo: five}},
		{Kind: RecurWeekly, Weekly: &WeeklyRecurrence{Mode: WeeklyOncePerDay, Days: NewWeekdaySet(time.Friday, time.Saturday), TimeOfDay: nine}},
		{Kind: RecurAnnual, Annual: &AnnualRecurrence{MonthDay: MonthDay{Month: time.February, Day: 29}, TimeOfDay: *nine}},
	}
	for i, spec := range specs {
		assert.NoError(t, spec.Validate(), "spec %d", i)
	}
}

func TestParseMonthDay(t *testing.T) {
	md, err := ParseMonthDay("02-29")
	require.NoError(t, err)
	assert.Equal(t, time.February, md.Month)
	assert.Equal(t, 29, md.Day)
	assert.Equal(t, "02-29", md.String())

	_, err = ParseMonthDay("02-30")
	assert.Error(t, err)
	_, err = ParseMonthDay("13-01")
	assert.Error(t, err)
	_, err = ParseMonthDay("junk")
	assert.Error(t, err)
}

func TestParseClock(t *testing.T) {
	c, err := ParseClock("14:30")
	require.NoError(t, err)
	assert.Equal(t, 14, c.Hour())
	assert.Equal(t, 30, c.Minute())
	assert.Equal(t, "14:30", c.String())

	_, err = ParseClock("24:00")
	assert.Error(t, err)
	_, err = ParseClock("09:60")
	assert.Error(t, err)
}

func TestClockWindow(t *testing.T) {
	nine, _ := ParseClock("09:00")
	five, _ := ParseClock("17:00")
	noon, _ := ParseClock("12:00")
	night, _ := ParseClock("23:00")

	assert.True(t, noon.InWindow(nine, five))
	assert.False(t, night.InWindow(nine, five))

	// wrapping window 22:00-02:00
	ten, _ := ParseClock("22:00")
	two, _ := ParseClock("02:00")
	one, _ := ParseClock("01:00")
	assert.True(t, night.InWindow(ten, two))
	assert.True(t, one.InWindow(ten, two))
	assert.False(t, noon.InWindow(ten, two))

	// from == to means the whole day
	assert.True(t, noon.InWindow(nine, nine))
}

func TestWeekdaySetJSON(t *testing.T) {
	s := NewWeekdaySet(time.Monday, time.Wednesday)
	raw, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `["monday","wednesday"]`, string(raw))

	var back WeekdaySet
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, s, back)

	var dup WeekdaySet
	err = json.Unmarshal([]byte(`["monday","monday"]`), &dup)
	assert.Error(t, err)

	var unknown WeekdaySet
	err = json.Unmarshal([]byte(`["funday"]`), &unknown)
	assert.Error(t, err)
}

func TestRecurrenceSpecRoundTrip(t *testing.T) {
	nine := mustClock(t, "09:00")
	spec := RecurrenceSpec{
		Kind: RecurWeekly,
		Weekly: &WeeklyRecurrence{
			Mode:      WeeklyOncePerDay,
			Days:      NewWeekdaySet(time.Tuesday, time.Thursday),
			TimeOfDay: nine,
		},
	}

	value, err := spec.Value()
	require.NoError(t, err)

	var back RecurrenceSpec
	require.NoError(t, back.Scan(value))
	assert.Equal(t, spec, back)
	assert.NoError(t, back.Validate())
}

func TestDateJSON(t *testing.T) {
	d, err := ParseDate("2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", d.String())

	raw, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2025-03-10"`, string(raw))

	var back Date
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, back.Equal(d.Time))

	_, err = ParseDate("10/03/2025")
	assert.Error(t, err)
}
