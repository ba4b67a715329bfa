package services

import (
	"context"
	"engsupply-erp/config"
	"engsupply-erp/database/dbtest"
	"engsupply-erp/models"
	"engsupply-erp/repositories"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gopkg.in/gomail.v2"
)

type fakeSender struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeSender) DialAndSend(m ...*gomail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m...)
	return nil
}

func TestEmailNotifierRecipients(t *testing.T) {
	env := newTestEnv(t)
	cid := env.company.ID
	role := dbtest.Role(t, env.db, cid, "APPROVERS")
	a := dbtest.User(t, env.db, cid, "alice", role)
	b := dbtest.User(t, env.db, cid, "bob", role)
	dbtest.User(t, env.db, cid, "nomail", role)
	requester := dbtest.User(t, env.db, cid, "req")
	require.NoError(t, env.db.Model(a).Update("email", "alice@example.com").Error)
	require.NoError(t, env.db.Model(b).Update("email", "bob@example.com").Error)
	require.NoError(t, env.db.Model(requester).Update("email", "req@example.com").Error)

	sender := &fakeSender{}
	n := &EmailNotifier{
		users:  repositories.NewUserRepository(env.db),
		sender: sender,
		from:   "erp@example.com",
		log:    zaptest.NewLogger(t),
	}
	req := models.ApprovalRequest{
		RequestNumber: "APR/2025/000007",
		RequestedBy:   requester.ID,
		Status:        models.StatusInProgress,
		Amount:        amount("1234567.5"),
		Document:      models.DocumentRef{Kind: models.KindAssetLease, RecordID: 9},
	}
	level := &models.ApprovalLevel{LevelOrder: 1, Name: "Review", ApproverRoleID: role.ID, ExpectedResponseHours: 24}

	require.NoError(t, n.Notify(context.Background(), ApprovalEvent{Kind: EventAwaitingApproval, Request: req, Level: level}))
	require.Len(t, sender.sent, 1)
	assert.ElementsMatch(t, []string{"alice@example.com", "bob@example.com"}, sender.sent[0].GetHeader("To"))
	assert.Equal(t, []string{"Approval needed: APR/2025/000007"}, sender.sent[0].GetHeader("Subject"))

	req.Status = models.StatusApproved
	require.NoError(t, n.Notify(context.Background(), ApprovalEvent{Kind: EventFinalized, Request: req}))
	require.Len(t, sender.sent, 2)
	assert.Equal(t, []string{"req@example.com"}, sender.sent[1].GetHeader("To"))
	assert.Equal(t, []string{"[APPROVED] Request APR/2025/000007"}, sender.sent[1].GetHeader("Subject"))

	nobody := dbtest.Role(t, env.db, cid, "NOBODY")
	empty := &models.ApprovalLevel{LevelOrder: 2, Name: "Empty", ApproverRoleID: nobody.ID}
	err := n.Notify(context.Background(), ApprovalEvent{Kind: EventOverdue, Request: req, Level: empty})
	assert.ErrorIs(t, err, ErrNoRecipients)
	assert.Len(t, sender.sent, 2)

	sender.err = errors.New("smtp down")
	assert.Error(t, n.Notify(context.Background(), ApprovalEvent{Kind: EventOverdue, Request: req, Level: level}))
}

func TestApprovalBodyFormatsAmount(t *testing.T) {
	body := approvalBody(ApprovalEvent{
		Kind: EventAwaitingApproval,
		Request: models.ApprovalRequest{
			RequestNumber: "APR/2025/000001",
			Amount:        amount("1234567.5"),
			Status:        models.StatusInProgress,
		},
		Level: &models.ApprovalLevel{LevelOrder: 2, Name: "Manager", ExpectedResponseHours: 48},
	})
	assert.Contains(t, body, "1,234,567.5")
	assert.Contains(t, body, "2 - Manager")
	assert.Contains(t, body, "48 hours")
}

func TestEmailNotifierDisabledWithoutHost(t *testing.T) {
	env := newTestEnv(t)
	n := NewEmailNotifier(env.db, config.MailConfig{Port: 587}, zaptest.NewLogger(t))
	assert.IsType(t, NopNotifier{}, n)
}
