// Package seed fills a development database with holidays, users and leave
// requests.
package seed

import (
	"errors"
	"log/slog"
	"math/rand"
	"os"

	"github.com/gestion-humana/portal/backend/internal/calendar"
	"github.com/gestion-humana/portal/backend/internal/config"
	"github.com/gestion-humana/portal/backend/internal/domain"
	"github.com/gestion-humana/portal/backend/internal/repository"
	"github.com/gestion-humana/portal/backend/internal/utils"
)

const DefaultHolidaysFile = "./internal/seed/data/holidays.csv"

// SeedHolidays imports a holiday CSV, see utils.ParseHolidaysCSV for the format.
func SeedHolidays(r *repository.Repository, path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	holidays, err := utils.ParseHolidaysCSV(file)
	if err != nil {
		return 0, err
	}

	if err := r.UpsertHolidays(holidays); err != nil {
		return 0, err
	}

	return len(holidays), nil
}

// SeedUsers creates n employees spread over one supervisor per eight employees.
func SeedUsers(r *repository.Repository, cfg *config.Config, n int) int {
	created := 0

	supervisors := make([]*domain.User, 0, n/8+1)
	for i := 0; i < n/8+1; i++ {
		user, err := utils.GenerateRandomUser(cfg.Seed.User.Password, cfg.Email.UserDomain, domain.RoleSupervisor)
		if err != nil {
			slog.Error("no se pudo generar el supervisor", slog.String("error", err.Error()))
			continue
		}
		user.Position = "Coordinador"
		if err := r.CreateUser(user); err != nil {
			slog.Error("no se pudo insertar el supervisor", slog.String("error", err.Error()))
			continue
		}
		supervisors = append(supervisors, user)
		created++
	}

	for i := 0; i < n; i++ {
		user, err := utils.GenerateRandomUser(cfg.Seed.User.Password, cfg.Email.UserDomain, domain.RoleEmployee)
		if err != nil {
			slog.Error("no se pudo generar el empleado", slog.String("error", err.Error()))
			continue
		}
		user.Position = "Analista"
		if len(supervisors) > 0 {
			boss := supervisors[rand.Intn(len(supervisors))]
			user.SupervisorID = &boss.ID
			user.Department = boss.Department
		}
		if err := r.CreateUser(user); err != nil {
			slog.Error("no se pudo insertar el empleado", slog.String("error", err.Error()))
			continue
		}
		created++
	}

	return created
}

// newLeaveRequest builds a pending request for the range with its days
// counted under policy. It reports false when the range has no business day.
func newLeaveRequest(user *domain.User, dr calendar.DateRange, policy calendar.RestDayPolicy) (*domain.LeaveRequest, bool, error) {
	b, err := calendar.CountBusinessDays(dr, policy)
	if err != nil {
		return nil, false, err
	}
	if b.Count == 0 {
		return nil, false, nil
	}

	return &domain.LeaveRequest{
		UserID:       user.ID,
		Type:         utils.GenerateRandomLeaveType(),
		StartDate:    dr.Start,
		EndDate:      dr.End,
		BusinessDays: b.Count,
		CalendarDays: calendar.TotalCalendarDays(dr),
		Reason:       "Solicitud generada para pruebas",
	}, true, nil
}

// SeedLeaveRequests creates up to n requests for active employees starting
// within the next ninety days of today, and resolves about a third of them.
func SeedLeaveRequests(r *repository.Repository, policy calendar.RestDayPolicy, today calendar.CalendarDate, n int) (int, error) {
	users, err := r.GetActiveUsers()
	if err != nil {
		return 0, err
	}

	employees := make([]*domain.User, 0, len(users))
	for _, u := range users {
		if u.Role == domain.RoleEmployee {
			employees = append(employees, u)
		}
	}
	if len(employees) == 0 {
		return 0, errors.New("no hay empleados activos")
	}

	created := 0
	for i := 0; i < n; i++ {
		user := employees[rand.Intn(len(employees))]

		lr, ok, err := newLeaveRequest(user, utils.GenerateRandomLeaveRange(today, 90), policy)
		if err != nil {
			return created, err
		}
		if !ok {
			continue
		}

		if err := r.CreateLeaveRequest(lr); err != nil {
			if errors.Is(err, repository.ErrLeaveOverlap) {
				continue
			}
			slog.Error("no se pudo insertar la solicitud", slog.String("error", err.Error()))
			continue
		}
		created++

		if user.SupervisorID == nil || rand.Intn(3) != 0 {
			continue
		}

		lr.Status = domain.LeaveStatusApproved
		if rand.Intn(2) == 0 {
			lr.Status = domain.LeaveStatusRejected
			lr.ResolverNote = "Coincide con el cierre de mes"
		}
		lr.ResolvedBy = user.SupervisorID
		if err := r.ResolveLeaveRequest(lr); err != nil {
			slog.Error("no se pudo resolver la solicitud", slog.String("error", err.Error()))
		}
	}

	return created, nil
}
