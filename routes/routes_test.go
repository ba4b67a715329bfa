package routes

import (
	"bytes"
	"encoding/json"
	"engsupply-erp/controllers"
	"engsupply-erp/database/dbtest"
	"engsupply-erp/middleware"
	"engsupply-erp/models"
	"engsupply-erp/services"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

const (
	testSecret = "test-secret"
	testPrefix = "/api"
)

type apiEnv struct {
	app     *fiber.App
	db      *gorm.DB
	company *models.Company
	admin   *models.User
	clerk   *models.User
	viewer  *models.User
	clerks  *models.Role
}

func newAPI(t *testing.T) *apiEnv {
	t.Helper()
	db := dbtest.New(t)
	log := zaptest.NewLogger(t)
	e := &apiEnv{db: db, company: dbtest.Company(t, db, "MAIN")}
	cid := e.company.ID

	admins := dbtest.Role(t, db, cid, "ADMIN",
		models.PermNumberingManage, models.PermNumberingIssue, models.PermApprovalsConfigure,
		models.PermApprovalsRequest, models.PermPricingManage, models.PermUomImport)
	e.clerks = dbtest.Role(t, db, cid, "CLERK")
	e.admin = dbtest.User(t, db, cid, "admin", admins)
	e.clerk = dbtest.User(t, db, cid, "clerk", e.clerks)
	e.viewer = dbtest.User(t, db, cid, "viewer")

	hash, err := services.HashPassword("s3cret")
	require.NoError(t, err)
	require.NoError(t, db.Model(e.admin).Update("password", hash).Error)

	users := services.NewUserService(db)
	numbering := services.NewNumberingService(db, log, 3)
	approvals := services.NewApprovalService(db, numbering, services.RoleMembershipAuthorizer{}, services.NopNotifier{}, log)
	uoms := services.NewUomService(db, log)
	pricing := services.NewPricingService(db, uoms, log)

	e.app = fiber.New()
	auth := middleware.NewAuthMiddleware(testSecret, users, log)
	Setup(e.app, testPrefix, auth, Handlers{
		Auth:      controllers.NewAuthController(users, testSecret, time.Hour, log),
		Numbering: controllers.NewNumberingController(numbering),
		Approval:  controllers.NewApprovalController(approvals),
		Pricing:   controllers.NewPricingController(pricing),
		Uom:       controllers.NewUomController(uoms, services.NewUomExcelService(db, uoms, log)),
	})
	return e
}

func (e *apiEnv) token(t *testing.T, u *models.User) string {
	t.Helper()
	tok, err := middleware.IssueToken(testSecret, u.ID, u.CompanyID, time.Hour)
	require.NoError(t, err)
	return tok
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func (e *apiEnv) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, testPrefix+path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestHealth(t *testing.T) {
	e := newAPI(t)
	status, _ := e.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestLogin(t *testing.T) {
	e := newAPI(t)

	status, _ := e.do(t, http.MethodPost, "/auth/login", "", fiber.Map{"username": "admin", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = e.do(t, http.MethodPost, "/auth/login", "", fiber.Map{"username": "admin"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body := e.do(t, http.MethodPost, "/auth/login", "", fiber.Map{"username": "admin", "password": "s3cret"})
	require.Equal(t, http.StatusOK, status)
	var data struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &data))
	assert.Equal(t, "Bearer", data.TokenType)

	status, body = e.do(t, http.MethodGet, "/auth/profile", data.AccessToken, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body.Data), `"username":"admin"`)
}

func TestAuthenticationRequired(t *testing.T) {
	e := newAPI(t)

	status, _ := e.do(t, http.MethodGet, "/numbering", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = e.do(t, http.MethodGet, "/numbering", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	forged, err := middleware.IssueToken("other-secret", e.admin.ID, e.company.ID, time.Hour)
	require.NoError(t, err)
	status, _ = e.do(t, http.MethodGet, "/numbering", forged, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	expired, err := middleware.IssueToken(testSecret, e.admin.ID, e.company.ID, -time.Minute)
	require.NoError(t, err)
	status, _ = e.do(t, http.MethodGet, "/numbering", expired, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestNumberingEndpoints(t *testing.T) {
	e := newAPI(t)
	admin := e.token(t, e.admin)
	viewer := e.token(t, e.viewer)
	seq := fiber.Map{"document_type": "sales_invoice", "prefix": "INV"}

	status, _ := e.do(t, http.MethodPost, "/numbering", viewer, seq)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = e.do(t, http.MethodPost, "/numbering", admin, seq)
	require.Equal(t, http.StatusCreated, status)

	status, body := e.do(t, http.MethodPost, "/numbering", admin, seq)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "conflict", body.Error)

	year := time.Now().Year()
	status, body = e.do(t, http.MethodGet, "/numbering/sales_invoice/preview", viewer, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, fmt.Sprintf(`{"number":"INV/%d/000001"}`, year), string(body.Data))

	status, _ = e.do(t, http.MethodPost, "/numbering/sales_invoice/next", viewer, nil)
	assert.Equal(t, http.StatusForbidden, status, "viewer lacks numbering.issue")

	for i := 1; i <= 2; i++ {
		status, body = e.do(t, http.MethodPost, "/numbering/sales_invoice/next", admin, nil)
		require.Equal(t, http.StatusOK, status)
		assert.JSONEq(t, fmt.Sprintf(`{"number":"INV/%d/%06d"}`, year, i), string(body.Data))
	}

	status, _ = e.do(t, http.MethodPost, "/numbering/sales_invoice/reset", viewer, fiber.Map{"start": 10})
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = e.do(t, http.MethodPost, "/numbering/sales_invoice/reset", admin, fiber.Map{"start": 10})
	require.Equal(t, http.StatusOK, status)

	status, _ = e.do(t, http.MethodPut, "/numbering/sales_invoice", admin, fiber.Map{"prefix": "SI", "padding": 4})
	require.Equal(t, http.StatusOK, status)

	status, body = e.do(t, http.MethodPost, "/numbering/sales_invoice/next", admin, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, fmt.Sprintf(`{"number":"SI/%d/0010"}`, year), string(body.Data))
}

func TestApprovalFlowOverHTTP(t *testing.T) {
	e := newAPI(t)
	admin := e.token(t, e.admin)
	clerk := e.token(t, e.clerk)

	status, body := e.do(t, http.MethodPost, "/approvals/workflows", admin, fiber.Map{
		"code":          "LEASE",
		"name":          "Lease approval",
		"document_type": "asset_lease",
		"levels": []fiber.Map{
			{"level_order": 1, "name": "Clerk", "approver_role_id": e.clerks.ID.String()},
		},
	})
	require.Equal(t, http.StatusCreated, status, body.Message)
	var wf struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &wf))

	status, _ = e.do(t, http.MethodPost, "/approvals/requests", clerk, fiber.Map{"workflow_id": wf.ID})
	assert.Equal(t, http.StatusForbidden, status, "clerk lacks approvals.request")

	status, body = e.do(t, http.MethodPost, "/approvals/requests", admin, fiber.Map{
		"workflow_id": wf.ID,
		"document":    fiber.Map{"kind": "asset_lease", "id": "77"},
		"amount":      "2500.50",
	})
	require.Equal(t, http.StatusCreated, status, body.Message)
	var req struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &req))
	assert.Equal(t, "pending", req.Status)

	status, _ = e.do(t, http.MethodPost, "/approvals/requests/"+req.ID+"/start", admin, nil)
	require.Equal(t, http.StatusOK, status)

	status, body = e.do(t, http.MethodPost, "/approvals/requests/"+req.ID+"/approve", admin, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "no permission to approve at this level", body.Message)

	status, body = e.do(t, http.MethodGet, "/approvals/requests/pending", clerk, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body.Data), req.ID)

	status, body = e.do(t, http.MethodPost, "/approvals/requests/"+req.ID+"/reject", clerk, fiber.Map{})
	assert.Equal(t, http.StatusUnprocessableEntity, status, body.Message)

	status, body = e.do(t, http.MethodPost, "/approvals/requests/"+req.ID+"/approve", clerk, fiber.Map{"comments": "ok"})
	require.Equal(t, http.StatusOK, status, body.Message)
	require.NoError(t, json.Unmarshal(body.Data, &req))
	assert.Equal(t, "approved", req.Status)

	status, body = e.do(t, http.MethodGet, "/approvals/requests/"+req.ID+"/history", admin, nil)
	require.Equal(t, http.StatusOK, status)
	var history []struct {
		Action string `json:"action"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &history))
	require.Len(t, history, 2)
	assert.Equal(t, "approved", history[1].Action)

	status, _ = e.do(t, http.MethodGet, "/approvals/requests/not-an-id", admin, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

// upload posts an xlsx workbook as multipart field "file".
func (e *apiEnv) upload(t *testing.T, path, token, filename string, book *excelize.File) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	require.NoError(t, book.Write(part))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, testPrefix+path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestPricingAndUomOverHTTP(t *testing.T) {
	e := newAPI(t)
	admin := e.token(t, e.admin)
	viewer := e.token(t, e.viewer)
	cid := e.company.ID

	group, pcs := dbtest.UomGroup(t, e.db, cid, "COUNT", "PCS")
	box := dbtest.Uom(t, e.db, cid, group, "BOX", "1")
	dozen := dbtest.Uom(t, e.db, cid, group, "DOZEN", "1")
	item := dbtest.Item(t, e.db, cid, "BOLT", pcs, "6")

	priceList := fiber.Map{
		"code": "retail", "name": "Retail", "is_default": true,
		"items": []fiber.Map{{"item_id": item.ID.String(), "uom_id": pcs.ID.String(), "price": "10"}},
	}
	status, _ := e.do(t, http.MethodPost, "/pricing/price-lists", viewer, priceList)
	assert.Equal(t, http.StatusForbidden, status)
	status, body := e.do(t, http.MethodPost, "/pricing/price-lists", admin, priceList)
	require.Equal(t, http.StatusCreated, status, body.Message)

	conversion := fiber.Map{"from_uom_id": box.ID.String(), "conversion_factor": "12"}
	status, _ = e.do(t, http.MethodPost, "/uoms/conversions", viewer, conversion)
	assert.Equal(t, http.StatusForbidden, status)
	status, body = e.do(t, http.MethodPost, "/uoms/conversions", admin, conversion)
	require.Equal(t, http.StatusCreated, status, body.Message)

	status, body = e.do(t, http.MethodPost, "/pricing/calculate", viewer, fiber.Map{
		"item_id": item.ID.String(), "uom_id": box.ID.String(), "quantity": "2",
	})
	require.Equal(t, http.StatusOK, status, body.Message)
	var price struct {
		FinalPrice decimal.Decimal `json:"final_price"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &price))
	assert.True(t, price.FinalPrice.Equal(decimal.NewFromInt(120)), price.FinalPrice.String())

	status, body = e.do(t, http.MethodPost, "/uoms/convert", viewer, fiber.Map{
		"from_uom_id": box.ID.String(), "to_uom_id": pcs.ID.String(), "quantity": "3",
	})
	require.Equal(t, http.StatusOK, status, body.Message)
	var converted struct {
		Quantity decimal.Decimal `json:"quantity"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &converted))
	assert.True(t, converted.Quantity.Equal(decimal.NewFromInt(36)), converted.Quantity.String())

	req := httptest.NewRequest(http.MethodGet, testPrefix+"/uoms/conversions/export", nil)
	req.Header.Set("Authorization", "Bearer "+viewer)
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".xlsx")
	exported, err := excelize.OpenReader(resp.Body)
	require.NoError(t, err)
	defer exported.Close()
	assert.Equal(t, []string{"Summary", "COUNT"}, exported.GetSheetList())
	from, _ := exported.GetCellValue("COUNT", "B2")
	assert.Equal(t, "BOX", from)

	book := excelize.NewFile()
	defer book.Close()
	require.NoError(t, book.SetSheetName("Sheet1", "COUNT"))
	require.NoError(t, book.SetSheetRow("COUNT", "A1", &[]any{"Group Code", "From UoM Code", "Factor", "Formula", "Type", "Notes"}))
	require.NoError(t, book.SetSheetRow("COUNT", "A2", &[]any{"COUNT", "BOX", 12}))
	require.NoError(t, book.SetSheetRow("COUNT", "A3", &[]any{"COUNT", "DOZEN", 12}))

	status, _ = e.upload(t, "/uoms/conversions/import", viewer, "conversions.xlsx", book)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = e.upload(t, "/uoms/conversions/import", admin, "conversions.csv", book)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = e.upload(t, "/uoms/conversions/import?skip_duplicates=true", admin, "conversions.xlsx", book)
	require.Equal(t, http.StatusOK, status, body.Message)
	var result struct {
		Success bool `json:"success"`
		Created int  `json:"created"`
		Skipped int  `json:"skipped"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &result))
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Skipped)

	var count int64
	require.NoError(t, e.db.Model(&models.UomConversion{}).Where("from_uom_id = ?", dozen.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
