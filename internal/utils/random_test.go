package utils

import (
	"regexp"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestion-humana/portal/backend/internal/calendar"
	"github.com/gestion-humana/portal/backend/internal/domain"
)

func TestGenerateUsernameFromName(t *testing.T) {
	username := GenerateUsernameFromName("José Pérez Díaz")
	assert.Regexp(t, regexp.MustCompile(`^joseperez[0-9]{1,3}$`), username)
}

func TestGenerateRandomUser(t *testing.T) {
	u, err := GenerateRandomUser("cambiar123", "empresa.com", domain.RoleEmployee)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[a-z]+[0-9]{1,3}@empresa\.com$`), u.Email)
	assert.Equal(t, domain.RoleEmployee, u.Role)
	assert.NotEmpty(t, u.Department)
	assert.NotEqual(t, "cambiar123", u.PasswordHash)
}

func TestGenerateRandomOTPAndPassword(t *testing.T) {
	for i := 0; i < 100; i++ {
		assert.Regexp(t, regexp.MustCompile(`^[0-9]{6}$`), GenerateRandomOTP())
	}
	assert.Equal(t, 12, utf8.RuneCountInString(GenerateRandomPassword(12)))
}

func TestGenerateRandomLeaveRange(t *testing.T) {
	from := calendar.MustParseDate("2025-10-13")
	for i := 0; i < 200; i++ {
		r := GenerateRandomLeaveRange(from, 30)
		require.NoError(t, r.Validate())
		assert.False(t, r.Start.Before(from))
		assert.LessOrEqual(t, from.DaysUntil(r.Start), 30)
		assert.LessOrEqual(t, calendar.TotalCalendarDays(r), 15)
	}
}
