package services

import (
	"engsupply-erp/database/dbtest"
	"engsupply-erp/models"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type testEnv struct {
	db        *gorm.DB
	company   *models.Company
	numbering *NumberingService
	approvals *ApprovalService
	uoms      *UomService
	excel     *UomExcelService
	pricing   *PricingService
	notifier  *recordingNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := dbtest.New(t)
	log := zaptest.NewLogger(t)

	env := &testEnv{
		db:       db,
		company:  dbtest.Company(t, db, "MAIN"),
		notifier: &recordingNotifier{},
	}
	env.numbering = NewNumberingService(db, log, 3)
	env.approvals = NewApprovalService(db, env.numbering, RoleMembershipAuthorizer{}, env.notifier, log)
	env.uoms = NewUomService(db, log)
	env.excel = NewUomExcelService(db, env.uoms, log)
	env.pricing = NewPricingService(db, env.uoms, log)
	return env
}

// at pins the clock of every service to ts.
func (e *testEnv) at(ts time.Time) {
	now := func() time.Time { return ts }
	e.numbering.now = now
	e.approvals.now = now
	e.pricing.now = now
}
