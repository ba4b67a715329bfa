package services

import (
	"context"
	"engsupply-erp/config"
	"engsupply-erp/models"
	"engsupply-erp/repositories"
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
	"gorm.io/gorm"
)

type ApprovalEventKind string

const (
	EventAwaitingApproval ApprovalEventKind = "awaiting_approval"
	EventFinalized        ApprovalEventKind = "finalized"
	EventOverdue          ApprovalEventKind = "overdue"
)

// ApprovalEvent is emitted after a transition has committed.
type ApprovalEvent struct {
	Kind    ApprovalEventKind
	Request models.ApprovalRequest
	Level   *models.ApprovalLevel
	Comment string
}

// ErrNoRecipients: event valid, tapi tidak ada alamat email yang bisa dikirimi.
var ErrNoRecipients = errors.New("no notification recipients")

type Notifier interface {
	Notify(ctx context.Context, event ApprovalEvent) error
}

type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, ApprovalEvent) error { return nil }

type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailNotifier mengirim email ke pemegang role approver (level berikutnya)
// atau ke requester (status final).
type EmailNotifier struct {
	users  *repositories.UserRepository
	sender mailSender
	from   string
	log    *zap.Logger
}

// NewEmailNotifier returns NopNotifier when SMTP is not configured.
func NewEmailNotifier(db *gorm.DB, cfg config.MailConfig, log *zap.Logger) Notifier {
	if cfg.Host == "" {
		return NopNotifier{}
	}
	return &EmailNotifier{
		users:  repositories.NewUserRepository(db),
		sender: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
		log:    log,
	}
}

func (n *EmailNotifier) Notify(ctx context.Context, event ApprovalEvent) error {
	users := n.users.WithTx(n.users.DB.WithContext(ctx))

	var recipients []string
	switch event.Kind {
	case EventAwaitingApproval, EventOverdue:
		if event.Level == nil {
			return ErrNoRecipients
		}
		approvers, err := users.UsersInRole(event.Level.ApproverRoleID)
		if err != nil {
			return err
		}
		for _, u := range approvers {
			if u.Email != "" {
				recipients = append(recipients, u.Email)
			}
		}
	case EventFinalized:
		requester, err := users.GetByID(event.Request.RequestedBy)
		if err != nil {
			return err
		}
		if requester.Email != "" {
			recipients = append(recipients, requester.Email)
		}
	}
	if len(recipients) == 0 {
		return ErrNoRecipients
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", recipients...)
	m.SetHeader("Subject", approvalSubject(event))
	m.SetBody("text/plain", approvalBody(event))

	if err := n.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("send approval mail: %w", err)
	}
	n.log.Info("approval mail sent",
		zap.String("request_number", event.Request.RequestNumber),
		zap.String("event", string(event.Kind)),
		zap.Int("recipients", len(recipients)))
	return nil
}

func approvalSubject(event ApprovalEvent) string {
	switch event.Kind {
	case EventFinalized:
		return fmt.Sprintf("[%s] Request %s", strings.ToUpper(string(event.Request.Status)), event.Request.RequestNumber)
	case EventOverdue:
		return fmt.Sprintf("Reminder, approval overdue: %s", event.Request.RequestNumber)
	}
	return fmt.Sprintf("Approval needed: %s", event.Request.RequestNumber)
}

func approvalBody(event ApprovalEvent) string {
	req := event.Request
	var b strings.Builder
	fmt.Fprintf(&b, "Request number : %s\n", req.RequestNumber)
	fmt.Fprintf(&b, "Document       : %s\n", req.Document)
	if req.Amount.Valid {
		f, _ := req.Amount.Decimal.Float64()
		fmt.Fprintf(&b, "Amount         : %s\n", humanize.CommafWithDigits(f, 3))
	}
	fmt.Fprintf(&b, "Status         : %s\n", req.Status)
	if event.Level != nil {
		fmt.Fprintf(&b, "Level          : %d - %s\n", event.Level.LevelOrder, event.Level.Name)
		fmt.Fprintf(&b, "Respond within : %d hours\n", event.Level.ExpectedResponseHours)
	}
	if event.Comment != "" {
		fmt.Fprintf(&b, "Comment        : %s\n", event.Comment)
	}
	if req.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", req.Description)
	}
	return b.String()
}
