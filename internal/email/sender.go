package email

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"gopkg.in/gomail.v2"

	"go.uber.org/zap"

	"github.com/studioware/backoffice/internal/billing"
	"github.com/studioware/backoffice/internal/domain/lifecycle"
	"github.com/studioware/backoffice/internal/repository"
)

// Attachment is a file carried by an outgoing message.
type Attachment struct {
	Filename string
	Content  []byte
}

// Message is one outgoing email.
type Message struct {
	To          string
	Subject     string
	HTML        string
	Attachments []Attachment
}

// Transport delivers a message. Implemented by the SMTP transport in
// production and by a stub in tests.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig holds transport credentials.
type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromName    string
	FromAddress string
}

// SMTPTransport delivers messages over SMTP.
type SMTPTransport struct {
	cfg SMTPConfig
}

// NewSMTPTransport creates the production transport.
func NewSMTPTransport(cfg SMTPConfig) *SMTPTransport {
	return &SMTPTransport{cfg: cfg}
}

// Send delivers one message. Delivery is synchronous; the dialer reports
// success or failure back to the caller.
func (t *SMTPTransport) Send(ctx context.Context, msg Message) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", t.cfg.FromAddress, t.cfg.FromName)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)
	for _, att := range msg.Attachments {
		content := att.Content
		m.Attach(att.Filename, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := io.Copy(w, bytes.NewReader(content))
			return err
		}))
	}

	dialer := gomail.NewDialer(t.cfg.Host, t.cfg.Port, t.cfg.Username, t.cfg.Password)
	if err := dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// AuditLog records every send attempt. Satisfied by
// repository.EmailLogRepository.
type AuditLog interface {
	Create(ctx context.Context, entry *repository.EmailLog) error
}

// Sender delivers document emails, records every attempt in the audit log,
// and advances a draft document to sent on successful delivery.
type Sender struct {
	transport Transport
	renderer  *Renderer
	audit     AuditLog
	logger    *zap.Logger
}

// NewSender creates a sender.
func NewSender(transport Transport, renderer *Renderer, audit AuditLog, logger *zap.Logger) *Sender {
	return &Sender{
		transport: transport,
		renderer:  renderer,
		audit:     audit,
		logger:    logger,
	}
}

// SendDocument renders and delivers the document to the recipient. On
// success, a document still in draft is advanced to sent; any other status is
// left unchanged. On failure the status is never advanced and the error is
// returned after the failed attempt is logged.
func (s *Sender) SendDocument(ctx context.Context, doc *billing.Document, recipient string, attachments ...Attachment) error {
	if recipient == "" {
		recipient = doc.Customer.Email
	}

	html, err := s.renderer.Render(doc)
	if err != nil {
		return err
	}
	subject := s.renderer.Subject(doc)

	s.logger.Info("Sending document email",
		zap.String("document_id", doc.ID),
		zap.String("number", doc.Number),
		zap.String("recipient", recipient))

	sendErr := s.transport.Send(ctx, Message{
		To:          recipient,
		Subject:     subject,
		HTML:        html,
		Attachments: attachments,
	})

	entry := &repository.EmailLog{
		DocumentID: doc.ID,
		Recipient:  recipient,
		Subject:    subject,
		Content:    html,
		Status:     "sent",
		SentAt:     time.Now().UTC(),
	}
	if sendErr != nil {
		entry.Status = "failed"
		entry.Error = sendErr.Error()
	}
	if err := s.audit.Create(ctx, entry); err != nil {
		// The audit write must not mask the send result.
		s.logger.Error("Failed to record email audit entry", zap.Error(err))
	}

	if sendErr != nil {
		s.logger.Error("Failed to send document email",
			zap.String("document_id", doc.ID),
			zap.Error(sendErr))
		return sendErr
	}

	if doc.Status == lifecycle.StateDraft {
		machine, err := doc.Machine()
		if err == nil && machine.CanFire(lifecycle.TriggerSend) {
			if err := machine.Fire(lifecycle.TriggerSend); err == nil {
				doc.Status = machine.State()
			}
		}
	}

	s.logger.Info("Document email sent",
		zap.String("document_id", doc.ID),
		zap.String("number", doc.Number),
		zap.String("status", string(doc.Status)))
	return nil
}
