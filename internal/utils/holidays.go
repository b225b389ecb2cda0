package utils

import (
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/gestion-humana/portal/backend/internal/calendar"
	"github.com/gestion-humana/portal/backend/internal/domain"
)

type holidayRecord struct {
	Name      string `csv:"nombre"`
	Date      string `csv:"fecha"`
	Recurring string `csv:"recurrente"`
}

// ParseHolidaysCSV reads a holiday list with the columns nombre, fecha
// (YYYY-MM-DD) and recurrente (si/no, true/false, empty means no).
func ParseHolidaysCSV(in io.Reader) ([]*domain.Holiday, error) {
	records := []*holidayRecord{}
	if err := gocsv.Unmarshal(in, &records); err != nil {
		return nil, err
	}

	holidays := make([]*domain.Holiday, 0, len(records))
	seen := make(map[calendar.CalendarDate]int, len(records))
	for i, rec := range records {
		line := i + 2 // header is line 1

		name := strings.TrimSpace(rec.Name)
		if name == "" {
			return nil, fmt.Errorf("línea %d: falta el nombre", line)
		}

		date, err := calendar.ParseDate(strings.TrimSpace(rec.Date))
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		if prev, ok := seen[date]; ok {
			return nil, fmt.Errorf("línea %d: la fecha %s ya aparece en la línea %d", line, date, prev)
		}
		seen[date] = line

		recurring, err := parseYesNo(rec.Recurring)
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}

		holidays = append(holidays, &domain.Holiday{Name: name, Date: date, Recurring: recurring})
	}

	return holidays, nil
}

func parseYesNo(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "no", "n", "false", "0":
		return false, nil
	case "si", "sí", "s", "true", "1":
		return true, nil
	}
	return false, fmt.Errorf("valor de recurrente desconocido %q", v)
}
