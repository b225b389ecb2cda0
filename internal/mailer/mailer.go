// Package mailer turns queued mail messages into go-mail messages rendered
// from the HTML templates directory.
package mailer

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"path/filepath"

	"github.com/wneessen/go-mail"

	"github.com/gestion-humana/portal/backend/internal/domain"
)

var ErrUnknownType = errors.New("unknown mail type")

// subjects maps every mail type to its subject. The body lives in <type>.html.
var subjects = map[string]string{
	domain.MailCreateUser:            "Gestión Humana - Datos de tu cuenta",
	domain.MailResetPassword:         "Gestión Humana - Restablecer contraseña",
	domain.MailChangeEmail:           "Gestión Humana - Cambio de correo",
	domain.MailLeaveRequested:        "Gestión Humana - Nueva solicitud de ausencia",
	domain.MailLeaveResolved:         "Gestión Humana - Tu solicitud fue resuelta",
	domain.MailLeavePendingReminder:  "Gestión Humana - Solicitudes pendientes",
	domain.MailAnnouncementPublished: "Gestión Humana - Nuevo comunicado",
}

type Composer struct {
	from      string
	templates map[string]*template.Template
}

// NewComposer parses the template of every mail type once, so a missing file
// stops the worker at startup instead of failing message by message.
func NewComposer(from, dir string) (*Composer, error) {
	if err := mail.NewMsg().From(from); err != nil {
		return nil, fmt.Errorf("sender address: %w", err)
	}

	templates := make(map[string]*template.Template, len(subjects))
	for typ := range subjects {
		tmpl, err := template.ParseFiles(filepath.Join(dir, typ+".html"))
		if err != nil {
			return nil, err
		}
		templates[typ] = tmpl
	}
	return &Composer{from: from, templates: templates}, nil
}

// Compose decodes a queued message and renders it. Errors are permanent: the
// same body will never compose.
func (c *Composer) Compose(body []byte) (*mail.Msg, error) {
	var mm domain.MailMessage
	if err := json.Unmarshal(body, &mm); err != nil {
		return nil, err
	}

	tmpl, ok := c.templates[mm.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, mm.Type)
	}

	m := mail.NewMsg()
	if err := m.From(c.from); err != nil {
		return nil, err
	}
	if err := m.To(mm.To); err != nil {
		return nil, err
	}
	m.Subject(subjects[mm.Type])
	if err := m.SetBodyHTMLTemplate(tmpl, mm.Data); err != nil {
		return nil, err
	}

	return m, nil
}
