package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rahulxcodes/Demo-Webinars-sub000/internal/models"
	"github.com/rahulxcodes/Demo-Webinars-sub000/pkg/mailer"
	"github.com/rahulxcodes/Demo-Webinars-sub000/pkg/queue"
)

// LogStore records notification delivery outcomes.
type LogStore interface {
	Create(ctx context.Context, el *models.EmailLog) error
	MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
}

// EmailProcessor consumes registration notification jobs, delivers them
// through the mailer, and records the outcome in email_logs.
type EmailProcessor struct {
	logs   LogStore
	sender mailer.Sender
	queue  *queue.Queue
	logger *zap.Logger
}

// NewEmailProcessor creates a notification processor.
func NewEmailProcessor(logs LogStore, sender mailer.Sender, q *queue.Queue, logger *zap.Logger) *EmailProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailProcessor{logs: logs, sender: sender, queue: q, logger: logger}
}

// Process executes one email job.
func (p *EmailProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeEmail {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.EmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	msg := buildMessage(payload)
	regID := payload.RegistrationID
	entry := &models.EmailLog{
		WebinarID:      payload.WebinarID,
		RegistrationID: &regID,
		EmailType:      payload.EmailType,
		RecipientEmail: payload.RecipientEmail,
		Subject:        msg.Subject,
		Status:         models.EmailLogStatusPending,
	}
	if err := p.logs.Create(ctx, entry); err != nil {
		return fmt.Errorf("create email log: %w", err)
	}

	if err := p.sender.Send(msg); err != nil {
		if logErr := p.logs.MarkFailed(ctx, entry.ID, err.Error()); logErr != nil {
			p.logger.Warn("mark email failed", zap.Error(logErr), zap.String("email_log_id", entry.ID.String()))
		}
		return fmt.Errorf("send: %w", err)
	}
	if err := p.logs.MarkSent(ctx, entry.ID, time.Now()); err != nil {
		p.logger.Warn("mark email sent", zap.Error(err), zap.String("email_log_id", entry.ID.String()))
	}

	p.logger.Info("notification sent",
		zap.String("email_type", payload.EmailType),
		zap.String("recipient", payload.RecipientEmail),
		zap.String("webinar_id", payload.WebinarID.String()))
	return nil
}

func buildMessage(p queue.EmailPayload) mailer.Message {
	when := p.StartsAt.Format("Mon, 2 Jan 2006 15:04 MST")
	msg := mailer.Message{
		ToName:    p.RecipientName,
		ToAddress: p.RecipientEmail,
	}
	switch p.EmailType {
	case models.EmailTypeRegistrationConfirmed, models.EmailTypeRegistrationApproved:
		msg.Subject = "You're registered: " + p.WebinarTitle
		msg.TextBody = fmt.Sprintf("Hi %s,\n\nYour registration for %q is confirmed. It starts %s.\nYour join link token: %s\n",
			p.RecipientName, p.WebinarTitle, when, p.JoinToken)
	default:
		msg.Subject = "Registration received: " + p.WebinarTitle
		msg.TextBody = fmt.Sprintf("Hi %s,\n\nWe received your registration for %q (starts %s). You'll get a confirmation once the organizer approves it.\n",
			p.RecipientName, p.WebinarTitle, when)
	}
	msg.HTMLBody = "<p>" + msg.TextBody + "</p>"
	return msg
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *EmailProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("email worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
		}
	}
}
