package mailer

import (
	"bytes"
	"encoding/json"
	"mime"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"

	"github.com/gestion-humana/portal/backend/internal/domain"
)

// the real templates live at the repository root
const templateDir = "../../templates"

func encode(t *testing.T, mm domain.MailMessage) []byte {
	t.Helper()
	b, err := json.Marshal(mm)
	require.NoError(t, err)
	return b
}

func render(t *testing.T, m *mail.Msg) string {
	t.Helper()
	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	return buf.String()
}

// subject returns the decoded Subject header; go-mail keeps it MIME encoded.
func subject(t *testing.T, m *mail.Msg) string {
	t.Helper()
	values := m.GetGenHeader(mail.HeaderSubject)
	require.Len(t, values, 1)
	decoded, err := new(mime.WordDecoder).DecodeHeader(values[0])
	require.NoError(t, err)
	return decoded
}

func TestComposeEveryType(t *testing.T) {
	c, err := NewComposer("rrhh@empresa.com", templateDir)
	require.NoError(t, err)

	messages := []domain.MailMessage{
		{Type: domain.MailCreateUser, To: "ana@empresa.com", Data: domain.CreateUserMailData{FullName: "Ana", Username: "ana01", Password: "x7Kp2mQz"}},
		{Type: domain.MailResetPassword, To: "ana@empresa.com", Data: domain.ResetPasswordMailData{FullName: "Ana", OTP: "123456", Expiration: 15}},
		{Type: domain.MailChangeEmail, To: "ana@empresa.com", Data: domain.ChangeEmailMailData{FullName: "Ana", OTP: "654321", Expiration: 15}},
		{Type: domain.MailLeaveRequested, To: "luis@empresa.com", Data: domain.LeaveRequestedMailData{ApproverName: "Luis", RequesterName: "Ana", LeaveType: "vacaciones", StartDate: "2025-10-13", EndDate: "2025-10-29", BusinessDays: 15, CalendarDays: 17}},
		{Type: domain.MailLeaveResolved, To: "ana@empresa.com", Data: domain.LeaveResolvedMailData{FullName: "Ana", Status: "aprobada", StartDate: "2025-10-13", EndDate: "2025-10-29", BusinessDays: 15, ResolverName: "Luis"}},
		{Type: domain.MailLeavePendingReminder, To: "luis@empresa.com", Data: domain.LeavePendingReminderMailData{ApproverName: "Luis", Pending: 2, Requesters: []string{"Ana", "Pedro"}}},
		{Type: domain.MailAnnouncementPublished, To: "ana@empresa.com", Data: domain.AnnouncementPublishedMailData{FullName: "Ana", Title: "Cierre anual", Slug: "cierre-anual"}},
	}
	require.Len(t, messages, len(subjects))

	for _, mm := range messages {
		t.Run(mm.Type, func(t *testing.T) {
			m, err := c.Compose(encode(t, mm))
			require.NoError(t, err)
			assert.Equal(t, subjects[mm.Type], subject(t, m))
			assert.Contains(t, render(t, m), mm.To)
		})
	}
}

func TestComposeRendersData(t *testing.T) {
	c, err := NewComposer("rrhh@empresa.com", templateDir)
	require.NoError(t, err)

	m, err := c.Compose(encode(t, domain.MailMessage{
		Type: domain.MailLeaveRequested,
		To:   "luis@empresa.com",
		Data: domain.LeaveRequestedMailData{RequesterName: "Ana", StartDate: "2025-10-13", EndDate: "2025-10-29", BusinessDays: 15, CalendarDays: 17},
	}))
	require.NoError(t, err)

	out := render(t, m)
	assert.Contains(t, out, "2025-10-13")
	assert.Contains(t, out, "2025-10-29")
	assert.Contains(t, out, "15")
}

func TestComposeRejectsBadMessages(t *testing.T) {
	c, err := NewComposer("rrhh@empresa.com", templateDir)
	require.NoError(t, err)

	_, err = c.Compose([]byte("{no es json"))
	assert.Error(t, err)

	_, err = c.Compose(encode(t, domain.MailMessage{Type: "birthday", To: "ana@empresa.com"}))
	assert.ErrorIs(t, err, ErrUnknownType)

	_, err = c.Compose(encode(t, domain.MailMessage{Type: domain.MailCreateUser, To: "no-es-un-correo"}))
	assert.Error(t, err)
}

func TestNewComposerNeedsEveryTemplate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, domain.MailCreateUser+".html"), []byte("<p>{{.fullName}}</p>"), 0o644))

	_, err := NewComposer("rrhh@empresa.com", dir)
	assert.Error(t, err)
}

func TestNewComposerChecksSender(t *testing.T) {
	_, err := NewComposer("", templateDir)
	assert.Error(t, err)
}
