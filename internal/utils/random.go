package utils

import (
	crand "crypto/rand"
	"fmt"
	"math/big"
	"math/rand"
	"strings"

	"github.com/gosimple/slug"
	"golang.org/x/crypto/bcrypt"

	"github.com/gestion-humana/portal/backend/internal/calendar"
	"github.com/gestion-humana/portal/backend/internal/domain"
)

var commonFirstNames = []string{
	"María", "José", "Luis", "Ana", "Carlos", "Lucía", "Jorge", "Camila", "Andrés", "Valentina",
	"Juan", "Sofía", "Diego", "Daniela", "Felipe", "Paula", "Ricardo", "Natalia", "Sebastián", "Isabel",
}

var commonSurnames = []string{
	"García", "Rodríguez", "Martínez", "López", "González", "Pérez", "Sánchez", "Ramírez", "Torres", "Flores",
	"Rivera", "Gómez", "Díaz", "Cruz", "Morales", "Ortiz", "Gutiérrez", "Chávez", "Ramos", "Núñez",
}

var departments = []string{"Operaciones", "Finanzas", "Tecnología", "Ventas", "Gestión Humana"}

func GenerateRandomSpanishName() string {
	first := commonFirstNames[rand.Intn(len(commonFirstNames))]
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	second := commonSurnames[rand.Intn(len(commonSurnames))]
	return first + " " + surname + " " + second
}

var digits = "0123456789"

// GenerateUsernameFromName keeps the ASCII transliteration of the first name
// and first surname plus a few digits, e.g. "José Pérez Díaz" -> "joseperez42".
func GenerateUsernameFromName(fullName string) string {
	parts := strings.Fields(fullName)
	if len(parts) > 2 {
		parts = parts[:2]
	}
	username := strings.ReplaceAll(slug.Make(strings.Join(parts, " ")), "-", "")

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

func GenerateRandomUser(password string, emailDomainName string, role domain.Role) (*domain.User, error) {
	fullName := GenerateRandomSpanishName()
	username := GenerateUsernameFromName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Role:         role,
		Department:   departments[rand.Intn(len(departments))],
	}

	return user, nil
}

func randomIndex(n int) int {
	v, err := crand.Int(crand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(err)
	}
	return int(v.Int64())
}

// GenerateRandomOTP returns six digits drawn from crypto/rand.
func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", randomIndex(1000000))
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	randomPassword := make([]rune, length)
	for i := range randomPassword {
		randomPassword[i] = letters[randomIndex(len(letters))]
	}
	return string(randomPassword)
}

var leaveTypes = []domain.LeaveType{
	domain.LeaveTypeVacation,
	domain.LeaveTypeVacation,
	domain.LeaveTypePersonal,
	domain.LeaveTypeSick,
	domain.LeaveTypeUnpaid,
}

// GenerateRandomLeaveRange picks a range of one to fifteen calendar days
// starting within daysAhead days of from.
func GenerateRandomLeaveRange(from calendar.CalendarDate, daysAhead int) calendar.DateRange {
	start := from.AddDays(rand.Intn(daysAhead + 1))
	end := start.AddDays(rand.Intn(15))
	return calendar.DateRange{Start: start, End: end}
}

func GenerateRandomLeaveType() domain.LeaveType {
	return leaveTypes[rand.Intn(len(leaveTypes))]
}
