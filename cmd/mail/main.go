package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wneessen/go-mail"

	"github.com/gestion-humana/portal/backend/internal/config"
	"github.com/gestion-humana/portal/backend/internal/mailer"
)

func main() {
	/**********************************************
	 * logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * configuration
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("no se pudo cargar la configuración", slog.String("error", err.Error()))
		return
	}

	composer, err := mailer.NewComposer(cfg.Email.SMTP.Username, cfg.Email.TemplateDir)
	if err != nil {
		logger.Error("no se pudieron cargar las plantillas", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * smtp client
	 **********************************************/
	client, err := mail.NewClient(cfg.Email.SMTP.Host,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.Email.SMTP.Port),
		mail.WithUsername(cfg.Email.SMTP.Username),
		mail.WithPassword(cfg.Email.SMTP.Password),
	)
	if err != nil {
		logger.Error("no se pudo crear el cliente de correo", slog.String("error", err.Error()))
		return
	}
	defer client.Close()

	dialCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Email.SMTP.DialTimeout)*time.Second)
	defer cancel()
	if err := client.DialWithContext(dialCtx); err != nil {
		logger.Error("no se pudo conectar al servidor de correo", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * rabbitmq
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("no se pudo conectar a rabbitmq", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("no se pudo abrir el canal", slog.String("error", err.Error()))
		return
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		cfg.RabbitMQ.Queue,
		true,  // durable
		false, // keep the queue when no consumer is attached
		false, // shared with other workers
		false,
		nil,
	)
	if err != nil {
		logger.Error("no se pudo declarar la cola", slog.String("error", err.Error()))
		return
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	msgs, err := ch.Consume(
		q.Name,
		"",    // broker assigned consumer tag
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		logger.Error("no se pudo consumir la cola", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Error("el canal de mensajes se cerró")
					return
				}
				logger.Info("mensaje recibido", slog.String("type", msg.Type), slog.Int("size", len(msg.Body)))

				m, err := composer.Compose(msg.Body)
				if err != nil {
					// it will never compose, do not requeue
					logger.Error("mensaje inválido", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				if err := client.DialAndSend(m); err != nil {
					attempts := mailer.Attempts(msg.Headers) + 1
					logger.Error("no se pudo enviar el correo", slog.String("error", err.Error()), slog.Int("attempt", attempts))
					if attempts >= cfg.Email.MaxAttempts {
						logger.Error("correo descartado tras varios intentos", slog.String("type", msg.Type))
						_ = msg.Nack(false, false)
						continue
					}

					delay := mailer.RetryDelay(
						time.Duration(cfg.Email.RetryDelay)*time.Second,
						time.Duration(cfg.Email.MaxRetryDelay)*time.Second,
						attempts-1,
					)
					select {
					case <-ctx.Done():
						_ = msg.Nack(false, true)
						return
					case <-time.After(delay):
					}

					pubCtx, pubCancel := context.WithTimeout(ctx, time.Duration(cfg.RabbitMQ.PublishTimeout)*time.Second)
					err := ch.PublishWithContext(pubCtx, "", q.Name, false, false, mailer.RetryPublishing(msg))
					pubCancel()
					if err != nil {
						logger.Error("no se pudo reencolar el correo", slog.String("error", err.Error()))
						_ = msg.Nack(false, true)
						continue
					}
					_ = msg.Ack(false)
					continue
				}

				_ = msg.Ack(false)
			}
		}
	}()

	logger.Info("esperando mensajes... (CTRL+C para salir)")
	<-sigChan

	logger.Info("cerrando mail worker...")
	cancel()
	wg.Wait()
	logger.Info("mail worker cerrado")
}
