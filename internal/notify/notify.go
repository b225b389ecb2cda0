// Package notify fans out portal events as in-app notifications and as mail
// messages published to the mail queue consumed by cmd/mail.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/gestion-humana/portal/backend/internal/config"
	"github.com/gestion-humana/portal/backend/internal/domain"
)

// Publisher is the subset of *amqp.Channel used to enqueue mail.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Store persists in-app notifications.
type Store interface {
	InsertNotifications(notifications []*domain.Notification) error
}

type Dispatcher struct {
	queue          string
	publishTimeout time.Duration
	publisher      Publisher
	store          Store
}

func New(cfg *config.Config, publisher Publisher, store Store) *Dispatcher {
	return &Dispatcher{
		queue:          cfg.RabbitMQ.Queue,
		publishTimeout: time.Duration(cfg.RabbitMQ.PublishTimeout) * time.Second,
		publisher:      publisher,
		store:          store,
	}
}

// SendMail publishes one mail message to the queue.
func (d *Dispatcher) SendMail(ctx context.Context, msg domain.MailMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, d.publishTimeout)
	defer cancel()

	return d.publisher.PublishWithContext(
		ctx,
		"",
		d.queue,
		true,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Type:         msg.Type,
			Body:         body,
		},
	)
}

func leaveLink(id int64) string {
	return fmt.Sprintf("/leave-requests/%d", id)
}

// LeaveRequested tells every approver that a new request is waiting.
func (d *Dispatcher) LeaveRequested(ctx context.Context, lr *domain.LeaveRequest, requester *domain.User, approvers []*domain.User) error {
	notifications := make([]*domain.Notification, 0, len(approvers))
	for _, approver := range approvers {
		notifications = append(notifications, &domain.Notification{
			UserID: approver.ID,
			Kind:   domain.NotificationLeaveRequested,
			Title:  fmt.Sprintf("%s solicitó %s (%d días hábiles)", requester.FullName, LeaveTypeLabel(lr.Type), lr.BusinessDays),
			Link:   leaveLink(lr.ID),
		})
	}
	if err := d.store.InsertNotifications(notifications); err != nil {
		return err
	}

	var errs []error
	for _, approver := range approvers {
		errs = append(errs, d.SendMail(ctx, domain.MailMessage{
			Type: domain.MailLeaveRequested,
			To:   approver.Email,
			Data: domain.LeaveRequestedMailData{
				ApproverName:  approver.FullName,
				RequesterName: requester.FullName,
				LeaveType:     LeaveTypeLabel(lr.Type),
				StartDate:     lr.StartDate.String(),
				EndDate:       lr.EndDate.String(),
				BusinessDays:  lr.BusinessDays,
				CalendarDays:  lr.CalendarDays,
				Reason:        lr.Reason,
			},
		}))
	}
	return errors.Join(errs...)
}

// LeaveResolved tells the requester the outcome of the request.
func (d *Dispatcher) LeaveResolved(ctx context.Context, lr *domain.LeaveRequest, requester, resolver *domain.User) error {
	n := &domain.Notification{
		UserID: requester.ID,
		Kind:   domain.NotificationLeaveResolved,
		Title:  fmt.Sprintf("Tu solicitud del %s al %s fue %s", lr.StartDate, lr.EndDate, StatusLabel(lr.Status)),
		Link:   leaveLink(lr.ID),
	}
	if err := d.store.InsertNotifications([]*domain.Notification{n}); err != nil {
		return err
	}

	return d.SendMail(ctx, domain.MailMessage{
		Type: domain.MailLeaveResolved,
		To:   requester.Email,
		Data: domain.LeaveResolvedMailData{
			FullName:     requester.FullName,
			Status:       StatusLabel(lr.Status),
			StartDate:    lr.StartDate.String(),
			EndDate:      lr.EndDate.String(),
			BusinessDays: lr.BusinessDays,
			ResolverName: resolver.FullName,
			Note:         lr.ResolverNote,
		},
	})
}

// PendingReminder reminds an approver of the requests still waiting for them.
func (d *Dispatcher) PendingReminder(ctx context.Context, approver *domain.User, pending []*domain.LeaveRequest) error {
	if len(pending) == 0 {
		return nil
	}

	requesters := make([]string, 0, len(pending))
	for _, lr := range pending {
		requesters = append(requesters, fmt.Sprintf("%s (%s a %s)", lr.RequesterName, lr.StartDate, lr.EndDate))
	}

	n := &domain.Notification{
		UserID: approver.ID,
		Kind:   domain.NotificationLeavePendingReminder,
		Title:  fmt.Sprintf("Tienes %d solicitudes pendientes de aprobación", len(pending)),
		Link:   "/leave-requests?status=pending",
	}
	if err := d.store.InsertNotifications([]*domain.Notification{n}); err != nil {
		return err
	}

	return d.SendMail(ctx, domain.MailMessage{
		Type: domain.MailLeavePendingReminder,
		To:   approver.Email,
		Data: domain.LeavePendingReminderMailData{
			ApproverName: approver.FullName,
			Pending:      len(pending),
			Requesters:   requesters,
		},
	})
}

// AnnouncementPublished notifies every recipient in-app and by mail.
func (d *Dispatcher) AnnouncementPublished(ctx context.Context, a *domain.Announcement, recipients []*domain.User) error {
	notifications := make([]*domain.Notification, 0, len(recipients))
	for _, u := range recipients {
		notifications = append(notifications, &domain.Notification{
			UserID: u.ID,
			Kind:   domain.NotificationAnnouncementPublished,
			Title:  a.Title,
			Link:   "/announcements/" + a.Slug,
		})
	}
	if err := d.store.InsertNotifications(notifications); err != nil {
		return err
	}

	var errs []error
	for _, u := range recipients {
		errs = append(errs, d.SendMail(ctx, domain.MailMessage{
			Type: domain.MailAnnouncementPublished,
			To:   u.Email,
			Data: domain.AnnouncementPublishedMailData{FullName: u.FullName, Title: a.Title, Slug: a.Slug},
		}))
	}
	return errors.Join(errs...)
}

func LeaveTypeLabel(t domain.LeaveType) string {
	switch t {
	case domain.LeaveTypeVacation:
		return "vacaciones"
	case domain.LeaveTypePersonal:
		return "permiso personal"
	case domain.LeaveTypeSick:
		return "incapacidad"
	case domain.LeaveTypeUnpaid:
		return "licencia no remunerada"
	}
	return string(t)
}

func StatusLabel(s domain.LeaveStatus) string {
	switch s {
	case domain.LeaveStatusPending:
		return "pendiente"
	case domain.LeaveStatusApproved:
		return "aprobada"
	case domain.LeaveStatusRejected:
		return "rechazada"
	case domain.LeaveStatusCancelled:
		return "cancelada"
	}
	return string(s)
}
