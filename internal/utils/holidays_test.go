package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestion-humana/portal/backend/internal/calendar"
)

func TestParseHolidaysCSV(t *testing.T) {
	in := "nombre,fecha,recurrente\n" +
		"Año Nuevo,2025-01-01,sí\n" +
		"Día del Trabajo,2025-05-01,true\n" +
		"Puente festivo,2025-10-13,\n"

	holidays, err := ParseHolidaysCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, holidays, 3)

	assert.Equal(t, "Año Nuevo", holidays[0].Name)
	assert.True(t, holidays[0].Recurring)
	assert.True(t, holidays[1].Recurring)
	assert.Equal(t, calendar.MustParseDate("2025-10-13"), holidays[2].Date)
	assert.False(t, holidays[2].Recurring)
}

func TestParseHolidaysCSVErrors(t *testing.T) {
	tests := map[string]string{
		"bad date":       "nombre,fecha,recurrente\nNavidad,2025-12-32,no\n",
		"missing name":   "nombre,fecha,recurrente\n,2025-12-25,no\n",
		"duplicate date": "nombre,fecha,recurrente\nNavidad,2025-12-25,si\nOtra,2025-12-25,no\n",
		"bad recurrence": "nombre,fecha,recurrente\nNavidad,2025-12-25,quizá\n",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseHolidaysCSV(strings.NewReader(in))
			assert.Error(t, err)
		})
	}

	_, err := ParseHolidaysCSV(strings.NewReader("nombre,fecha,recurrente\nNavidad,25/12/2025,si\n"))
	assert.ErrorIs(t, err, calendar.ErrInvalidDateFormat)
	assert.Contains(t, err.Error(), "línea 2")
}
