package repositories

import (
	"engsupply-erp/database"
	"engsupply-erp/models"
	"engsupply-erp/types"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ApprovalRepository struct {
	DB *gorm.DB
}

func NewApprovalRepository(DB *gorm.DB) *ApprovalRepository {
	return &ApprovalRepository{DB: DB}
}

func (r *ApprovalRepository) WithTx(tx *gorm.DB) *ApprovalRepository {
	return &ApprovalRepository{DB: tx}
}

func orderedLevels(db *gorm.DB) *gorm.DB {
	return db.Order("level_order ASC")
}

// CreateWorkflow hanya header; level disimpan lewat CreateLevel.
func (r *ApprovalRepository) CreateWorkflow(wf *models.ApprovalWorkflow) error {
	return r.DB.Omit(clause.Associations).Create(wf).Error
}

func (r *ApprovalRepository) GetWorkflow(companyID, id types.SnowflakeID) (*models.ApprovalWorkflow, error) {
	var wf models.ApprovalWorkflow
	err := r.DB.Preload("Levels", orderedLevels).
		Preload("Levels.ApproverRole").
		Where("company_id = ? AND id = ?", companyID, id).
		First(&wf).Error
	return &wf, err
}

func (r *ApprovalRepository) ListWorkflows(companyID types.SnowflakeID, docType models.DocumentKind) ([]models.ApprovalWorkflow, error) {
	var workflows []models.ApprovalWorkflow
	q := r.DB.Preload("Levels", orderedLevels).Where("company_id = ?", companyID)
	if docType != "" {
		q = q.Where("document_type = ?", docType)
	}
	err := q.Order("code").Find(&workflows).Error
	return workflows, err
}

func (r *ApprovalRepository) SetWorkflowActive(wf *models.ApprovalWorkflow, active bool) error {
	return r.DB.Model(wf).Update("is_active", active).Error
}

func (r *ApprovalRepository) CreateLevel(level *models.ApprovalLevel) error {
	return r.DB.Omit(clause.Associations).Create(level).Error
}

// Levels mengembalikan level workflow urut level_order (naik).
func (r *ApprovalRepository) Levels(workflowID types.SnowflakeID) ([]models.ApprovalLevel, error) {
	var levels []models.ApprovalLevel
	err := orderedLevels(r.DB).Where("workflow_id = ?", workflowID).Find(&levels).Error
	return levels, err
}

func (r *ApprovalRepository) CreateRequest(req *models.ApprovalRequest) error {
	return r.DB.Omit(clause.Associations).Create(req).Error
}

func (r *ApprovalRepository) GetRequest(companyID, id types.SnowflakeID) (*models.ApprovalRequest, error) {
	var req models.ApprovalRequest
	err := r.DB.Preload("Workflow").
		Preload("CurrentLevel.ApproverRole").
		Where("company_id = ? AND id = ?", companyID, id).
		First(&req).Error
	return &req, err
}

// LockRequest membaca request dengan row lock; dipakai di dalam transaksi transisi status.
func (r *ApprovalRepository) LockRequest(companyID, id types.SnowflakeID) (*models.ApprovalRequest, error) {
	var req models.ApprovalRequest
	err := database.LockForUpdate(r.DB).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&req).Error
	return &req, err
}

// SaveTransition hanya menulis kolom yang berubah pada transisi status.
func (r *ApprovalRepository) SaveTransition(req *models.ApprovalRequest) error {
	return r.DB.Model(req).
		Select("status", "current_level_id", "completed_at", "updated_at", "updated_by").
		Updates(req).Error
}

func (r *ApprovalRepository) ListRequests(companyID types.SnowflakeID, status models.ApprovalStatus) ([]models.ApprovalRequest, error) {
	var requests []models.ApprovalRequest
	q := r.DB.Preload("CurrentLevel").Where("company_id = ?", companyID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Order("requested_at DESC").Find(&requests).Error
	return requests, err
}

// InProgressForRoles: request yang sedang menunggu di level milik salah satu role.
func (r *ApprovalRepository) InProgressForRoles(companyID types.SnowflakeID, roleIDs []types.SnowflakeID) ([]models.ApprovalRequest, error) {
	var requests []models.ApprovalRequest
	if len(roleIDs) == 0 {
		return requests, nil
	}
	err := r.DB.Select("approval_requests.*").
		Preload("CurrentLevel").
		Joins("JOIN approval_levels ON approval_levels.id = approval_requests.current_level_id").
		Where("approval_requests.company_id = ? AND approval_requests.status = ?", companyID, models.StatusInProgress).
		Where("approval_levels.approver_role_id IN ?", roleIDs).
		Order("approval_requests.requested_at ASC").
		Find(&requests).Error
	return requests, err
}

func (r *ApprovalRepository) InProgress(companyID types.SnowflakeID) ([]models.ApprovalRequest, error) {
	var requests []models.ApprovalRequest
	err := r.DB.Preload("Workflow").Preload("CurrentLevel").
		Where("company_id = ? AND status = ?", companyID, models.StatusInProgress).
		Order("requested_at ASC").
		Find(&requests).Error
	return requests, err
}

func (r *ApprovalRepository) AppendHistory(h *models.ApprovalHistory) error {
	return r.DB.Omit(clause.Associations).Create(h).Error
}

func (r *ApprovalRepository) History(requestID types.SnowflakeID) ([]models.ApprovalHistory, error) {
	var rows []models.ApprovalHistory
	err := r.DB.Preload("Level").Preload("Approver").
		Where("request_id = ?", requestID).
		Order("action_at ASC, id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *ApprovalRepository) ApprovedLevelIDs(requestID types.SnowflakeID) (map[types.SnowflakeID]bool, error) {
	var ids []types.SnowflakeID
	err := r.DB.Model(&models.ApprovalHistory{}).
		Where("request_id = ? AND action = ? AND level_id IS NOT NULL", requestID, models.ActionApproved).
		Pluck("level_id", &ids).Error
	if err != nil {
		return nil, err
	}
	approved := make(map[types.SnowflakeID]bool, len(ids))
	for _, id := range ids {
		approved[id] = true
	}
	return approved, nil
}

// LastActionAt per request, dipakai untuk menghitung berapa lama level saat ini menunggu.
func (r *ApprovalRepository) LastActionAt(requestIDs []types.SnowflakeID) (map[types.SnowflakeID]time.Time, error) {
	out := make(map[types.SnowflakeID]time.Time, len(requestIDs))
	if len(requestIDs) == 0 {
		return out, nil
	}
	var rows []models.ApprovalHistory
	err := r.DB.Where("request_id IN ?", requestIDs).Order("action_at ASC, id ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, h := range rows {
		out[h.RequestID] = h.ActionAt
	}
	return out, nil
}
