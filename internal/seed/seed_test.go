package seed

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestion-humana/portal/backend/internal/calendar"
	"github.com/gestion-humana/portal/backend/internal/domain"
	"github.com/gestion-humana/portal/backend/internal/utils"
)

func TestNewLeaveRequestCountsDays(t *testing.T) {
	user := &domain.User{ID: 7}

	dr, err := calendar.ParseRange("2025-10-13", "2025-10-29")
	require.NoError(t, err)

	lr, ok, err := newLeaveRequest(user, dr, calendar.SundayRest)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(7), lr.UserID)
	assert.Equal(t, 15, lr.BusinessDays)
	assert.Equal(t, 17, lr.CalendarDays)

	sunday, err := calendar.ParseRange("2025-10-19", "2025-10-19")
	require.NoError(t, err)
	_, ok, err = newLeaveRequest(user, sunday, calendar.SundayRest)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBundledHolidaysFile(t *testing.T) {
	file, err := os.Open("data/holidays.csv")
	require.NoError(t, err)
	defer file.Close()

	holidays, err := utils.ParseHolidaysCSV(file)
	require.NoError(t, err)
	require.NotEmpty(t, holidays)

	specs := make([]calendar.HolidaySpec, 0, len(holidays))
	for _, h := range holidays {
		specs = append(specs, h.Spec())
	}
	policy := calendar.AnyOf(calendar.SundayRest, calendar.HolidayRest(calendar.NewHolidayCalendar(specs...)))

	// 2025-10-13 is a bank holiday Monday
	b, err := calendar.CountBusinessDaysBetween("2025-10-13", "2025-10-29", policy)
	require.NoError(t, err)
	assert.Equal(t, 14, b.Count)

	// recurring holidays carry over to the next year
	assert.True(t, policy(calendar.MustParseDate("2026-12-25")))
	assert.False(t, policy(calendar.MustParseDate("2026-10-13")))
}
