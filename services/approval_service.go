package services

import (
	"context"
	"engsupply-erp/apperrors"
	"engsupply-erp/database"
	"engsupply-erp/models"
	"engsupply-erp/repositories"
	"engsupply-erp/types"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	approvalRequestPrefix    = "APR"
	defaultExpectedResponseH = 24
)

type LevelInput struct {
	LevelOrder            int                 `json:"level_order" validate:"required,gte=1"`
	Name                  string              `json:"name" validate:"required,max=100"`
	ApproverRoleID        types.SnowflakeID   `json:"approver_role_id" validate:"required"`
	AmountFrom            decimal.NullDecimal `json:"amount_from"`
	AmountTo              decimal.NullDecimal `json:"amount_to"`
	IsRequired            *bool               `json:"is_required"`
	ExpectedResponseHours int                 `json:"expected_response_hours" validate:"gte=0"`
}

type WorkflowInput struct {
	Code         string              `json:"code" validate:"required,max=50"`
	Name         string              `json:"name" validate:"required,max=200"`
	DocumentType models.DocumentKind `json:"document_type" validate:"required"`
	Description  string              `json:"description"`
	IsSequential *bool               `json:"is_sequential"`
	Levels       []LevelInput        `json:"levels" validate:"dive"`
}

type RequestInput struct {
	WorkflowID  types.SnowflakeID   `json:"workflow_id" validate:"required"`
	Document    models.DocumentRef  `json:"document"`
	Amount      decimal.NullDecimal `json:"amount"`
	Description string              `json:"description"`
	Notes       string              `json:"notes"`
}

// OverdueRequest is an in-progress request whose current level waited past its expected response time.
type OverdueRequest struct {
	Request      models.ApprovalRequest `json:"request"`
	WaitingSince time.Time              `json:"waiting_since"`
	DueAt        time.Time              `json:"due_at"`
	HoursOverdue float64                `json:"hours_overdue"`
}

type ApprovalService struct {
	db         *gorm.DB
	repo       *repositories.ApprovalRepository
	users      *repositories.UserRepository
	numbering  *NumberingService
	authorizer Authorizer
	notifier   Notifier
	log        *zap.Logger
	now        func() time.Time
}

func NewApprovalService(db *gorm.DB, numbering *NumberingService, authorizer Authorizer, notifier Notifier, log *zap.Logger) *ApprovalService {
	if authorizer == nil {
		authorizer = RoleMembershipAuthorizer{}
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &ApprovalService{
		db:         db,
		repo:       repositories.NewApprovalRepository(db),
		users:      repositories.NewUserRepository(db),
		numbering:  numbering,
		authorizer: authorizer,
		notifier:   notifier,
		log:        log,
		now:        time.Now,
	}
}

// Workflow configuration

func (s *ApprovalService) CreateWorkflow(ctx context.Context, companyID, actor types.SnowflakeID, in WorkflowInput) (*models.ApprovalWorkflow, error) {
	in.Code = strings.TrimSpace(in.Code)
	in.Name = strings.TrimSpace(in.Name)
	if in.Code == "" || in.Name == "" {
		return nil, apperrors.Validation("workflow code and name are required")
	}
	if !in.DocumentType.Valid() {
		return nil, apperrors.Validation("unknown document type %q", in.DocumentType)
	}

	wf := models.ApprovalWorkflow{
		CompanyID:    companyID,
		Code:         in.Code,
		Name:         in.Name,
		DocumentType: in.DocumentType,
		Description:  in.Description,
		IsSequential: true,
		IsActive:     true,
	}
	if in.IsSequential != nil {
		wf.IsSequential = *in.IsSequential
	}
	wf.Stamp(actor)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateWorkflow(&wf); err != nil {
			if database.IsDuplicateKey(err) {
				return apperrors.Conflict("workflow %s already exists", in.Code)
			}
			return err
		}

		seen := map[int]bool{}
		for _, li := range in.Levels {
			if seen[li.LevelOrder] {
				return apperrors.Validation("duplicate level order %d", li.LevelOrder)
			}
			seen[li.LevelOrder] = true
			if _, err := s.addLevel(tx, companyID, wf.ID, actor, li); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("approval workflow created",
		zap.String("workflow_id", wf.ID.String()),
		zap.String("code", wf.Code),
		zap.Int("levels", len(in.Levels)))
	return s.GetWorkflow(ctx, companyID, wf.ID)
}

func (s *ApprovalService) AddLevel(ctx context.Context, companyID, workflowID, actor types.SnowflakeID, in LevelInput) (*models.ApprovalLevel, error) {
	var level *models.ApprovalLevel
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.findWorkflow(tx, companyID, workflowID); err != nil {
			return err
		}
		var err error
		level, err = s.addLevel(tx, companyID, workflowID, actor, in)
		return err
	})
	return level, err
}

func (s *ApprovalService) addLevel(tx *gorm.DB, companyID, workflowID, actor types.SnowflakeID, in LevelInput) (*models.ApprovalLevel, error) {
	if in.LevelOrder < 1 {
		return nil, apperrors.Validation("level order must be at least 1")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperrors.Validation("level name is required")
	}
	if in.AmountFrom.Valid && in.AmountFrom.Decimal.IsNegative() ||
		in.AmountTo.Valid && in.AmountTo.Decimal.IsNegative() {
		return nil, apperrors.Validation("amount bounds cannot be negative")
	}
	if in.AmountFrom.Valid && in.AmountTo.Valid && in.AmountFrom.Decimal.GreaterThan(in.AmountTo.Decimal) {
		return nil, apperrors.Validation("amount_from must not exceed amount_to")
	}
	hours := in.ExpectedResponseHours
	if hours == 0 {
		hours = defaultExpectedResponseH
	}
	if hours < 1 {
		return nil, apperrors.Validation("expected response hours must be at least 1")
	}
	if _, err := s.users.WithTx(tx).GetRole(companyID, in.ApproverRoleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("role", in.ApproverRoleID)
		}
		return nil, err
	}

	level := models.ApprovalLevel{
		WorkflowID:            workflowID,
		LevelOrder:            in.LevelOrder,
		Name:                  strings.TrimSpace(in.Name),
		ApproverRoleID:        in.ApproverRoleID,
		AmountFrom:            in.AmountFrom,
		AmountTo:              in.AmountTo,
		IsRequired:            true,
		ExpectedResponseHours: hours,
	}
	if in.IsRequired != nil {
		level.IsRequired = *in.IsRequired
	}
	level.Stamp(actor)

	if err := s.repo.WithTx(tx).CreateLevel(&level); err != nil {
		if database.IsDuplicateKey(err) {
			return nil, apperrors.Conflict("level order %d already exists in this workflow", in.LevelOrder)
		}
		return nil, err
	}
	return &level, nil
}

func (s *ApprovalService) GetWorkflow(ctx context.Context, companyID, id types.SnowflakeID) (*models.ApprovalWorkflow, error) {
	return s.findWorkflow(s.db.WithContext(ctx), companyID, id)
}

func (s *ApprovalService) findWorkflow(tx *gorm.DB, companyID, id types.SnowflakeID) (*models.ApprovalWorkflow, error) {
	wf, err := s.repo.WithTx(tx).GetWorkflow(companyID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("approval workflow", id)
	}
	return wf, err
}

func (s *ApprovalService) ListWorkflows(ctx context.Context, companyID types.SnowflakeID, docType models.DocumentKind) ([]models.ApprovalWorkflow, error) {
	return s.repo.WithTx(s.db.WithContext(ctx)).ListWorkflows(companyID, docType)
}

func (s *ApprovalService) DeactivateWorkflow(ctx context.Context, companyID, id types.SnowflakeID) error {
	wf, err := s.GetWorkflow(ctx, companyID, id)
	if err != nil {
		return err
	}
	return s.repo.WithTx(s.db.WithContext(ctx)).SetWorkflowActive(wf, false)
}

// Requests

func (s *ApprovalService) CreateRequest(ctx context.Context, companyID, requester types.SnowflakeID, in RequestInput) (*models.ApprovalRequest, error) {
	if err := in.Document.Validate(); err != nil {
		return nil, apperrors.Validation("%s", err.Error())
	}
	if in.Amount.Valid && in.Amount.Decimal.IsNegative() {
		return nil, apperrors.Validation("amount cannot be negative")
	}

	var req models.ApprovalRequest
	err := s.numbering.RunWithRetry(ctx, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			wf, err := s.findWorkflow(tx, companyID, in.WorkflowID)
			if err != nil {
				return err
			}
			if !wf.IsActive {
				return apperrors.Validation("workflow %s is inactive", wf.Code)
			}
			if wf.DocumentType != in.Document.Kind {
				return apperrors.Validation("workflow %s handles %s documents, not %s", wf.Code, wf.DocumentType, in.Document.Kind)
			}

			if _, err := s.numbering.EnsureSequence(tx, companyID, models.DocApprovalRequest, approvalRequestPrefix, requester); err != nil {
				return err
			}
			number, err := s.numbering.NextInTx(tx, companyID, models.DocApprovalRequest)
			if err != nil {
				return err
			}

			req = models.ApprovalRequest{
				CompanyID:     companyID,
				RequestNumber: number,
				WorkflowID:    wf.ID,
				Document:      in.Document,
				Amount:        in.Amount,
				Status:        models.StatusPending,
				RequestedBy:   requester,
				RequestedAt:   s.now(),
				Description:   in.Description,
				Notes:         in.Notes,
			}
			req.Stamp(requester)
			return s.repo.WithTx(tx).CreateRequest(&req)
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("approval request created",
		zap.String("request_number", req.RequestNumber),
		zap.String("document", req.Document.String()))
	return &req, nil
}

// transition runs fn against the locked request inside one transaction and
// sends the collected events once the transaction has committed.
func (s *ApprovalService) transition(ctx context.Context, companyID, requestID types.SnowflakeID, fn func(tx *gorm.DB, req *models.ApprovalRequest, wf *models.ApprovalWorkflow) ([]ApprovalEvent, error)) (*models.ApprovalRequest, error) {
	var events []ApprovalEvent
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		req, err := repo.LockRequest(companyID, requestID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("approval request", requestID)
		}
		if err != nil {
			return err
		}
		wf, err := s.findWorkflow(tx, companyID, req.WorkflowID)
		if err != nil {
			return err
		}
		events, err = fn(tx, req, wf)
		return err
	})
	if err != nil {
		return nil, err
	}

	for _, ev := range events {
		nerr := s.notifier.Notify(ctx, ev)
		if errors.Is(nerr, ErrNoRecipients) {
			s.log.Warn("approval notification has no recipients",
				zap.String("request_number", ev.Request.RequestNumber),
				zap.String("event", string(ev.Kind)))
			continue
		}
		if nerr != nil {
			s.log.Error("approval notification failed",
				zap.String("request_number", ev.Request.RequestNumber),
				zap.String("event", string(ev.Kind)),
				zap.Error(nerr))
		}
	}
	return s.GetRequest(ctx, companyID, requestID)
}

func (s *ApprovalService) StartApprovalProcess(ctx context.Context, companyID, requestID, actor types.SnowflakeID) (*models.ApprovalRequest, error) {
	return s.transition(ctx, companyID, requestID, func(tx *gorm.DB, req *models.ApprovalRequest, wf *models.ApprovalWorkflow) ([]ApprovalEvent, error) {
		if req.Status != models.StatusPending {
			return nil, apperrors.Validation("request not pending")
		}
		repo := s.repo.WithTx(tx)
		now := s.now()
		required := requiredLevels(wf.Levels)

		if len(required) == 0 {
			req.Status = models.StatusApproved
			req.CurrentLevelID = nil
			req.CompletedAt = &now
			req.UpdatedBy = actor
			if err := repo.SaveTransition(req); err != nil {
				return nil, err
			}
			if err := s.appendHistory(tx, req, nil, nil, models.ActionCreated, "approved automatically: workflow has no required levels"); err != nil {
				return nil, err
			}
			s.log.Info("approval request auto-approved", zap.String("request_number", req.RequestNumber))
			return []ApprovalEvent{{Kind: EventFinalized, Request: *req}}, nil
		}

		var first *models.ApprovalLevel
		if wf.IsSequential {
			first = firstLevelFor(req, required)
		} else {
			first = firstPending(openLevels(req, required), nil)
		}
		if first == nil {
			return nil, apperrors.Validation("no suitable approval level")
		}

		req.Status = models.StatusInProgress
		req.CurrentLevelID = &first.ID
		req.UpdatedBy = actor
		if err := repo.SaveTransition(req); err != nil {
			return nil, err
		}
		if err := s.appendHistory(tx, req, first, nil, models.ActionCreated, "approval process started"); err != nil {
			return nil, err
		}

		s.log.Info("approval process started",
			zap.String("request_number", req.RequestNumber),
			zap.Int("level_order", first.LevelOrder))
		return s.awaitingEvents(req, wf, first, nil), nil
	})
}

func (s *ApprovalService) ApproveCurrentLevel(ctx context.Context, companyID, requestID, userID types.SnowflakeID, comments string) (*models.ApprovalRequest, error) {
	return s.transition(ctx, companyID, requestID, func(tx *gorm.DB, req *models.ApprovalRequest, wf *models.ApprovalWorkflow) ([]ApprovalEvent, error) {
		if !req.Status.Open() {
			return nil, apperrors.Validation("request is %s and can no longer be approved", req.Status)
		}
		if req.CurrentLevelID == nil {
			return nil, apperrors.Validation("request has no current approval level")
		}
		required := requiredLevels(wf.Levels)

		var acted, next *models.ApprovalLevel
		var err error
		if wf.IsSequential {
			acted = levelByID(wf.Levels, *req.CurrentLevelID)
			if acted == nil {
				return nil, apperrors.NotFound("approval level", *req.CurrentLevelID)
			}
			ok, err := s.authorizer.CanApprove(tx, userID, acted)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, apperrors.Forbidden("no permission to approve at this level")
			}
			next = nextLevelFor(req, required, acted.LevelOrder)
		} else {
			acted, next, err = s.parallelApproval(tx, req, required, userID)
			if err != nil {
				return nil, err
			}
		}

		if err := s.appendHistory(tx, req, acted, &userID, models.ActionApproved, comments); err != nil {
			return nil, err
		}

		req.UpdatedBy = userID
		if next != nil {
			req.Status = models.StatusInProgress
			req.CurrentLevelID = &next.ID
		} else {
			now := s.now()
			req.Status = models.StatusApproved
			req.CurrentLevelID = nil
			req.CompletedAt = &now
		}
		if err := s.repo.WithTx(tx).SaveTransition(req); err != nil {
			return nil, err
		}

		s.log.Info("approval level approved",
			zap.String("request_number", req.RequestNumber),
			zap.Int("level_order", acted.LevelOrder),
			zap.String("approver_id", userID.String()),
			zap.String("status", string(req.Status)))

		if next == nil {
			return []ApprovalEvent{{Kind: EventFinalized, Request: *req, Comment: comments}}, nil
		}
		return s.awaitingEvents(req, wf, next, acted), nil
	})
}

// parallelApproval picks the first still-open level the user may approve and
// the level the request waits on afterwards (nil when it was the last one).
func (s *ApprovalService) parallelApproval(tx *gorm.DB, req *models.ApprovalRequest, required []*models.ApprovalLevel, userID types.SnowflakeID) (acted, next *models.ApprovalLevel, err error) {
	approved, err := s.repo.WithTx(tx).ApprovedLevelIDs(req.ID)
	if err != nil {
		return nil, nil, err
	}
	pending := pendingLevels(openLevels(req, required), approved)
	for _, level := range pending {
		ok, err := s.authorizer.CanApprove(tx, userID, level)
		if err != nil {
			return nil, nil, err
		}
		if ok {
			acted = level
			break
		}
	}
	if acted == nil {
		return nil, nil, apperrors.Forbidden("no permission to approve at this level")
	}
	approved[acted.ID] = true
	return acted, firstPending(pending, approved), nil
}

func (s *ApprovalService) Reject(ctx context.Context, companyID, requestID, userID types.SnowflakeID, reason string) (*models.ApprovalRequest, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.Validation("a rejection reason is required")
	}
	return s.transition(ctx, companyID, requestID, func(tx *gorm.DB, req *models.ApprovalRequest, wf *models.ApprovalWorkflow) ([]ApprovalEvent, error) {
		if !req.Status.Open() {
			return nil, apperrors.Validation("request is %s and can no longer be rejected", req.Status)
		}

		level, err := s.rejectingLevel(tx, req, wf, userID)
		if err != nil {
			return nil, err
		}

		if err := s.appendHistory(tx, req, level, &userID, models.ActionRejected, reason); err != nil {
			return nil, err
		}
		now := s.now()
		req.Status = models.StatusRejected
		req.CompletedAt = &now
		req.UpdatedBy = userID
		if err := s.repo.WithTx(tx).SaveTransition(req); err != nil {
			return nil, err
		}

		s.log.Info("approval request rejected",
			zap.String("request_number", req.RequestNumber),
			zap.String("user_id", userID.String()))
		return []ApprovalEvent{{Kind: EventFinalized, Request: *req, Comment: reason}}, nil
	})
}

// rejectingLevel returns the level userID rejects at: the current level for
// sequential workflows, any still-open level the user holds for parallel ones.
// A request that was never started is judged against the level(s) start would open.
func (s *ApprovalService) rejectingLevel(tx *gorm.DB, req *models.ApprovalRequest, wf *models.ApprovalWorkflow, userID types.SnowflakeID) (*models.ApprovalLevel, error) {
	required := requiredLevels(wf.Levels)
	var candidates []*models.ApprovalLevel
	switch {
	case !wf.IsSequential:
		approved, err := s.repo.WithTx(tx).ApprovedLevelIDs(req.ID)
		if err != nil {
			return nil, err
		}
		candidates = pendingLevels(openLevels(req, required), approved)
	case req.CurrentLevelID != nil:
		candidates = []*models.ApprovalLevel{levelByID(wf.Levels, *req.CurrentLevelID)}
	default:
		candidates = []*models.ApprovalLevel{firstLevelFor(req, required)}
	}
	for _, level := range candidates {
		if level == nil {
			continue
		}
		ok, err := s.authorizer.CanApprove(tx, userID, level)
		if err != nil {
			return nil, err
		}
		if ok {
			return level, nil
		}
	}
	return nil, apperrors.Forbidden("no permission to reject at this level")
}

func (s *ApprovalService) Cancel(ctx context.Context, companyID, requestID, userID types.SnowflakeID, reason string) (*models.ApprovalRequest, error) {
	return s.transition(ctx, companyID, requestID, func(tx *gorm.DB, req *models.ApprovalRequest, wf *models.ApprovalWorkflow) ([]ApprovalEvent, error) {
		if !req.Status.Open() {
			return nil, apperrors.Validation("request is %s and can no longer be cancelled", req.Status)
		}
		if req.RequestedBy != userID {
			return nil, apperrors.Forbidden("only the requester can cancel this request")
		}

		if err := s.appendHistory(tx, req, nil, &userID, models.ActionCancelled, strings.TrimSpace(reason)); err != nil {
			return nil, err
		}
		now := s.now()
		req.Status = models.StatusCancelled
		req.CurrentLevelID = nil
		req.CompletedAt = &now
		req.UpdatedBy = userID
		if err := s.repo.WithTx(tx).SaveTransition(req); err != nil {
			return nil, err
		}
		s.log.Info("approval request cancelled", zap.String("request_number", req.RequestNumber))
		return nil, nil
	})
}

func (s *ApprovalService) appendHistory(tx *gorm.DB, req *models.ApprovalRequest, level *models.ApprovalLevel, approver *types.SnowflakeID, action models.ApprovalAction, comments string) error {
	h := models.ApprovalHistory{
		RequestID:  req.ID,
		ApproverID: approver,
		Action:     action,
		ActionAt:   s.now(),
		Comments:   comments,
	}
	if level != nil {
		id := level.ID
		h.LevelID = &id
	}
	return s.repo.WithTx(tx).AppendHistory(&h)
}

func (s *ApprovalService) awaitingEvents(req *models.ApprovalRequest, wf *models.ApprovalWorkflow, level, previous *models.ApprovalLevel) []ApprovalEvent {
	// Parallel levels are all notified at start; later approvals open nothing new.
	if !wf.IsSequential && previous != nil {
		return nil
	}
	if wf.IsSequential {
		return []ApprovalEvent{{Kind: EventAwaitingApproval, Request: *req, Level: level}}
	}
	var events []ApprovalEvent
	for _, l := range openLevels(req, requiredLevels(wf.Levels)) {
		events = append(events, ApprovalEvent{Kind: EventAwaitingApproval, Request: *req, Level: l})
	}
	return events
}

// Queries

func (s *ApprovalService) GetRequest(ctx context.Context, companyID, id types.SnowflakeID) (*models.ApprovalRequest, error) {
	req, err := s.repo.WithTx(s.db.WithContext(ctx)).GetRequest(companyID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("approval request", id)
	}
	return req, err
}

func (s *ApprovalService) ListRequests(ctx context.Context, companyID types.SnowflakeID, status models.ApprovalStatus) ([]models.ApprovalRequest, error) {
	return s.repo.WithTx(s.db.WithContext(ctx)).ListRequests(companyID, status)
}

func (s *ApprovalService) History(ctx context.Context, companyID, requestID types.SnowflakeID) ([]models.ApprovalHistory, error) {
	if _, err := s.GetRequest(ctx, companyID, requestID); err != nil {
		return nil, err
	}
	return s.repo.WithTx(s.db.WithContext(ctx)).History(requestID)
}

// PendingForUser: request in_progress yang current level-nya dipegang salah satu role user.
func (s *ApprovalService) PendingForUser(ctx context.Context, companyID, userID types.SnowflakeID) ([]models.ApprovalRequest, error) {
	db := s.db.WithContext(ctx)
	roleIDs, err := s.users.WithTx(db).RoleIDs(userID)
	if err != nil {
		return nil, err
	}
	return s.repo.WithTx(db).InProgressForRoles(companyID, roleIDs)
}

// OverdueRequests lists in-progress requests whose current level has waited longer
// than its expected response hours. Nothing enforces the deadline.
func (s *ApprovalService) OverdueRequests(ctx context.Context, companyID types.SnowflakeID, now time.Time) ([]OverdueRequest, error) {
	repo := s.repo.WithTx(s.db.WithContext(ctx))
	requests, err := repo.InProgress(companyID)
	if err != nil {
		return nil, err
	}
	ids := make([]types.SnowflakeID, 0, len(requests))
	for _, r := range requests {
		ids = append(ids, r.ID)
	}
	lastAction, err := repo.LastActionAt(ids)
	if err != nil {
		return nil, err
	}

	var overdue []OverdueRequest
	for _, r := range requests {
		if r.CurrentLevel == nil {
			continue
		}
		since, ok := lastAction[r.ID]
		if !ok {
			since = r.RequestedAt
		}
		due := since.Add(time.Duration(r.CurrentLevel.ExpectedResponseHours) * time.Hour)
		if now.After(due) {
			overdue = append(overdue, OverdueRequest{
				Request:      r,
				WaitingSince: since,
				DueAt:        due,
				HoursOverdue: now.Sub(due).Hours(),
			})
		}
	}
	return overdue, nil
}

// RemindOverdue sends an overdue event for every overdue request of the company
// and returns how many were sent. A failed notification, or one nobody could
// receive, is logged and not counted.
func (s *ApprovalService) RemindOverdue(ctx context.Context, companyID types.SnowflakeID, now time.Time) (int, error) {
	overdue, err := s.OverdueRequests(ctx, companyID, now)
	if err != nil {
		return 0, err
	}
	sent := 0
	for _, o := range overdue {
		ev := ApprovalEvent{
			Kind:    EventOverdue,
			Request: o.Request,
			Level:   o.Request.CurrentLevel,
			Comment: fmt.Sprintf("waiting since %s, %.1f hours past due", o.WaitingSince.Format(time.RFC822), o.HoursOverdue),
		}
		err := s.notifier.Notify(ctx, ev)
		if errors.Is(err, ErrNoRecipients) {
			s.log.Warn("overdue reminder has no recipients",
				zap.String("request_number", o.Request.RequestNumber))
			continue
		}
		if err != nil {
			s.log.Error("overdue reminder failed",
				zap.String("request_number", o.Request.RequestNumber),
				zap.Error(err))
			continue
		}
		sent++
	}
	return sent, nil
}

// Level selection

func requiredLevels(levels []models.ApprovalLevel) []*models.ApprovalLevel {
	var out []*models.ApprovalLevel
	for i := range levels {
		if levels[i].IsRequired {
			out = append(out, &levels[i])
		}
	}
	return out
}

func levelByID(levels []models.ApprovalLevel, id types.SnowflakeID) *models.ApprovalLevel {
	for i := range levels {
		if levels[i].ID == id {
			return &levels[i]
		}
	}
	return nil
}

// firstLevelFor: level wajib pertama; kalau amount di luar range-nya, cari level
// wajib pertama dengan amount_from <= amount.
func firstLevelFor(req *models.ApprovalRequest, required []*models.ApprovalLevel) *models.ApprovalLevel {
	if len(required) == 0 {
		return nil
	}
	first := required[0]
	if !req.HasAmount() || first.AcceptsAmount(req.Amount.Decimal) {
		return first
	}
	return firstFromBelow(required, req.Amount.Decimal)
}

// nextLevelFor: level wajib berikutnya setelah afterOrder, dengan fallback yang sama.
func nextLevelFor(req *models.ApprovalRequest, required []*models.ApprovalLevel, afterOrder int) *models.ApprovalLevel {
	var later []*models.ApprovalLevel
	for _, l := range required {
		if l.LevelOrder > afterOrder {
			later = append(later, l)
		}
	}
	return firstLevelFor(req, later)
}

func firstFromBelow(levels []*models.ApprovalLevel, amount decimal.Decimal) *models.ApprovalLevel {
	for _, l := range levels {
		if l.AmountFrom.Valid && l.AmountFrom.Decimal.LessThanOrEqual(amount) {
			return l
		}
	}
	return nil
}

// openLevels are the required levels a parallel request has to collect.
func openLevels(req *models.ApprovalRequest, required []*models.ApprovalLevel) []*models.ApprovalLevel {
	var out []*models.ApprovalLevel
	for _, l := range required {
		if !req.HasAmount() || l.AcceptsAmount(req.Amount.Decimal) {
			out = append(out, l)
		}
	}
	return out
}

func pendingLevels(levels []*models.ApprovalLevel, approved map[types.SnowflakeID]bool) []*models.ApprovalLevel {
	var out []*models.ApprovalLevel
	for _, l := range levels {
		if !approved[l.ID] {
			out = append(out, l)
		}
	}
	return out
}

func firstPending(levels []*models.ApprovalLevel, approved map[types.SnowflakeID]bool) *models.ApprovalLevel {
	for _, l := range levels {
		if !approved[l.ID] {
			return l
		}
	}
	return nil
}
