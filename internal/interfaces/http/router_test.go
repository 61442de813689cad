package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-bares/internal/application/alert"
	"github.com/jhoicas/inventario-bares/internal/application/audit"
	"github.com/jhoicas/inventario-bares/internal/application/auth"
	"github.com/jhoicas/inventario-bares/internal/application/dashboard"
	"github.com/jhoicas/inventario-bares/internal/application/dto"
	"github.com/jhoicas/inventario-bares/internal/application/inventory"
	"github.com/jhoicas/inventario-bares/internal/application/notification"
	"github.com/jhoicas/inventario-bares/internal/application/request"
	"github.com/jhoicas/inventario-bares/internal/application/transfer"
	"github.com/jhoicas/inventario-bares/internal/application/usecase"
	"github.com/jhoicas/inventario-bares/internal/domain/entity"
	"github.com/jhoicas/inventario-bares/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-bares/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/inventario-bares/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/inventario-bares/pkg/jwt"
)

type apiFixture struct {
	app       *fiber.App
	repos     memory.Repos
	admin     string
	bodeguero string
	bartender string
}

func int64Ptr(v int64) *int64 { return &v }

// newAPI arma la API completa sobre el almacenamiento en memoria con eventos descartados.
func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	ctx := context.Background()
	repos := memory.NewStore().Repos()
	log := zerolog.Nop()
	events := notification.Nop{}
	writer := audit.NewWriter(repos.Audit, log)

	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: "p-gin", Code: "GIN-01", Name: "Gin X", FormatMl: int64Ptr(750), IsActive: true}))
	require.NoError(t, repos.Inventory.SetQuantity(ctx, "p-gin", entity.LocationWarehouse, 5000))

	alerts := alert.NewService(repos.Alerts, repos.Inventory, repos.Products, events, log)
	users := usecase.NewUserUseCase(repos.Users, writer)
	app := fiber.New(fiber.Config{Immutable: true})
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:      auth.NewAuthUseCase(repos.Users, auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer}),
		ProductUC:   usecase.NewProductUseCase(repos.Products, repos.Categories, writer, log),
		UserUC:      users,
		DashboardUC: dashboard.NewDashboardUseCase(repos.Products, repos.Inventory, repos.Requests, alerts),
		Ledger:      inventory.NewLedger(repos.Tx, repos.Inventory, repos.Products, repos.Alerts, writer, events, log),
		Requests:    request.NewService(repos.Tx, repos.Requests, repos.Products, writer, events, log),
		Transfers:   transfer.NewService(repos.Tx, repos.Transfers, repos.Products, writer, events, log),
		Alerts:      alerts,
		Audit:       audit.NewService(repos.Audit),
		Receipts:    pdf.NewReceiptGenerator(),
		JWTSecret:   testJWTSecret,
	})

	barA := "bar_a"
	return &apiFixture{
		app:       app,
		repos:     repos,
		admin:     tokenFor(t, pkgjwt.Identity{UserID: "u-admin", Name: "Admin", Role: "admin"}),
		bodeguero: tokenFor(t, pkgjwt.Identity{UserID: "u-bodega", Name: "Bruno Bodega", Role: "bodeguero"}),
		bartender: tokenFor(t, pkgjwt.Identity{UserID: "u-bar", Name: "Ana Bartender", Role: "bartender", Location: barA}),
	}
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (f *apiFixture) quantity(t *testing.T, loc entity.Location) int64 {
	t.Helper()
	rec, err := f.repos.Inventory.Get(context.Background(), "p-gin", loc)
	require.NoError(t, err)
	if rec == nil {
		return 0
	}
	return rec.QuantityMl
}

func (f *apiFixture) createRequest(t *testing.T) dto.RequestResponse {
	t.Helper()
	resp := f.do(t, http.MethodPost, "/api/requests", f.bartender, dto.CreateRequestRequest{
		Location: "bar_a",
		Items:    []dto.RequestItemInput{{ProductID: "p-gin", Quantity: 1500, UnitType: "ml"}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[dto.RequestResponse](t, resp)
}

func TestAPI_FlujoCompletoDeSolicitud(t *testing.T) {
	f := newAPI(t)
	created := f.createRequest(t)
	assert.Equal(t, "pending", created.Status)
	require.Len(t, created.Items, 1)

	resp := f.do(t, http.MethodPost, "/api/requests/"+created.ID+"/approve", f.bodeguero, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	approved := decode[dto.RequestResponse](t, resp)
	assert.Equal(t, "approved", approved.Status)

	resp = f.do(t, http.MethodPost, "/api/requests/"+created.ID+"/deliver", f.bodeguero, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	delivered := decode[dto.DeliveryResponse](t, resp)
	assert.Equal(t, "delivered", delivered.Request.Status)
	require.Len(t, delivered.StockMovements, 1)

	assert.Equal(t, int64(3500), f.quantity(t, entity.LocationWarehouse))
	assert.Equal(t, int64(1500), f.quantity(t, entity.LocationBarA))

	resp = f.do(t, http.MethodGet, "/api/requests/"+created.ID+"/receipt", f.bartender, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}

func TestAPI_BartenderNoPuedeAprobar(t *testing.T) {
	f := newAPI(t)
	created := f.createRequest(t)

	resp := f.do(t, http.MethodPost, "/api/requests/"+created.ID+"/approve", f.bartender, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAPI_EntregarPendienteEsTransicionInvalida(t *testing.T) {
	f := newAPI(t)
	created := f.createRequest(t)

	resp := f.do(t, http.MethodPost, "/api/requests/"+created.ID+"/deliver", f.bodeguero, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	errBody := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "INVALID_TRANSITION", errBody.Code)
	assert.Equal(t, int64(5000), f.quantity(t, entity.LocationWarehouse))
}

func TestAPI_ComprobanteDeSolicitudNoEntregada(t *testing.T) {
	f := newAPI(t)
	created := f.createRequest(t)

	resp := f.do(t, http.MethodGet, "/api/requests/"+created.ID+"/receipt", f.bodeguero, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAPI_SolicitudInexistente(t *testing.T) {
	f := newAPI(t)
	resp := f.do(t, http.MethodGet, "/api/requests/no-existe", f.admin, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_BartenderNoPideParaOtroBar(t *testing.T) {
	f := newAPI(t)
	resp := f.do(t, http.MethodPost, "/api/requests", f.bartender, dto.CreateRequestRequest{
		Location: "bar_b",
		Items:    []dto.RequestItemInput{{ProductID: "p-gin", Quantity: 1, UnitType: "bottles"}},
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAPI_ValidacionDeSolicitud(t *testing.T) {
	f := newAPI(t)
	resp := f.do(t, http.MethodPost, "/api/requests", f.bartender, dto.CreateRequestRequest{Location: "bar_a"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errBody := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "VALIDATION", errBody.Code)
}

func TestAPI_TraspasoConRecorte(t *testing.T) {
	f := newAPI(t)
	require.NoError(t, f.repos.Inventory.SetQuantity(context.Background(), "p-gin", entity.LocationBarA, 800))

	resp := f.do(t, http.MethodPost, "/api/transfers", f.bodeguero, dto.CreateTransferRequest{
		FromLocation: "bar_a",
		ToLocation:   "bar_b",
		Items:        []dto.TransferItemInput{{ProductID: "p-gin", Quantity: 1000, UnitType: "ml"}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[dto.TransferWithChangesResponse](t, resp)
	assert.Equal(t, int64(0), f.quantity(t, entity.LocationBarA))

	resp = f.do(t, http.MethodPost, "/api/transfers/"+created.Transfer.ID+"/confirm", f.bartender, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	confirmed := decode[dto.TransferWithChangesResponse](t, resp)
	assert.Equal(t, "completed", confirmed.Transfer.Status)
	assert.Equal(t, int64(1000), f.quantity(t, entity.LocationBarB))

	resp = f.do(t, http.MethodPost, "/api/transfers/"+created.Transfer.ID+"/confirm", f.bartender, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAPI_EditarStockYExportar(t *testing.T) {
	f := newAPI(t)
	resp := f.do(t, http.MethodPut, "/api/inventory/p-gin/warehouse", f.bodeguero, dto.SetQuantityRequest{QuantityMl: int64Ptr(1050)})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	change := decode[dto.LedgerChangeResponse](t, resp)
	assert.Equal(t, int64(5000), change.Before)
	assert.Equal(t, int64(1050), change.After)

	resp = f.do(t, http.MethodPut, "/api/inventory/p-gin/warehouse", f.bartender, dto.SetQuantityRequest{QuantityMl: int64Ptr(1)})
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/inventory/export?format=csv", f.bodeguero, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "stock_")
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "Código")
	assert.Contains(t, string(body), "GIN-01")
	assert.Contains(t, string(body), "1.4")
}

func TestAPI_ExportarFormatoDesconocido(t *testing.T) {
	f := newAPI(t)
	resp := f.do(t, http.MethodGet, "/api/inventory/export?format=pdf", f.admin, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// logList historial tal como llega por la API; details depende de la acción.
type logList struct {
	Items []struct {
		Action  string          `json:"action"`
		Details json.RawMessage `json:"details"`
	} `json:"items"`
}

func TestAPI_HistorialRegistraLasAcciones(t *testing.T) {
	f := newAPI(t)
	created := f.createRequest(t)
	resp := f.do(t, http.MethodPost, "/api/requests/"+created.ID+"/reject", f.bodeguero, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/logs", f.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[logList](t, resp)
	require.Len(t, list.Items, 2)
	assert.Equal(t, "request_rejected", list.Items[0].Action)
	assert.Equal(t, "request_created", list.Items[1].Action)

	var rejected entity.RequestRejectedDetails
	require.NoError(t, json.Unmarshal(list.Items[0].Details, &rejected))
	assert.Equal(t, "pending → rejected", rejected.StatusChange)

	resp = f.do(t, http.MethodGet, "/api/logs?action=request_created", f.admin, nil)
	filtered := decode[logList](t, resp)
	assert.Len(t, filtered.Items, 1)

	resp = f.do(t, http.MethodGet, "/api/logs", f.bartender, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/logs?from=ayer", f.admin, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_AlertaDisparada(t *testing.T) {
	f := newAPI(t)
	resp := f.do(t, http.MethodPost, "/api/alerts", f.admin, dto.AlertConfigRequest{
		ProductID:       "p-gin",
		Location:        "warehouse",
		MinStockMl:      int64Ptr(2000),
		EmailRecipients: []string{"jefe@bar.test"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = f.do(t, http.MethodGet, "/api/alerts/triggered", f.bartender, nil)
	assert.Empty(t, decode[[]dto.AlertStatusResponse](t, resp))

	resp = f.do(t, http.MethodPut, "/api/inventory/p-gin/warehouse", f.admin, dto.SetQuantityRequest{QuantityMl: int64Ptr(1500)})
	resp.Body.Close()

	resp = f.do(t, http.MethodGet, "/api/alerts/triggered", f.bartender, nil)
	triggered := decode[[]dto.AlertStatusResponse](t, resp)
	require.Len(t, triggered, 1)
	assert.Equal(t, int64(1500), triggered[0].CurrentStock)

	resp = f.do(t, http.MethodPost, "/api/alerts/notify", f.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, decode[dto.NotifyAlertsResponse](t, resp).Notified)
}

func TestAPI_LoginYUsuarios(t *testing.T) {
	f := newAPI(t)
	loc := "bar_a"
	resp := f.do(t, http.MethodPost, "/api/users", f.admin, dto.CreateUserRequest{
		Email: "ana@bar.test", Password: "secreto-123", FullName: "Ana", Role: "bartender", Location: &loc,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = f.do(t, http.MethodPost, "/api/users", f.bodeguero, dto.CreateUserRequest{Email: "x@bar.test", Password: "secreto-123", Role: "admin"})
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "ana@bar.test", Password: "incorrecta"})
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "ana@bar.test", Password: "secreto-123"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	login := decode[dto.LoginResponse](t, resp)
	require.NotEmpty(t, login.Token)
	assert.Equal(t, "bartender", login.User.Role)

	resp = f.do(t, http.MethodGet, "/api/auth/me", "Bearer "+login.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	me := decode[dto.UserResponse](t, resp)
	assert.Equal(t, "ana@bar.test", me.Email)
}

func TestAPI_DashboardYCatalogo(t *testing.T) {
	f := newAPI(t)
	f.createRequest(t)

	resp := f.do(t, http.MethodPost, "/api/categories", f.admin, dto.CategoryRequest{Name: "Ginebras"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	category := decode[dto.CategoryResponse](t, resp)

	resp = f.do(t, http.MethodPost, "/api/products", f.bodeguero, dto.CreateProductRequest{Code: "GIN-02", Name: "Gin Z", CategoryID: category.ID})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = f.do(t, http.MethodPost, "/api/products", f.bodeguero, dto.CreateProductRequest{Code: "gin-02", Name: "Duplicado", CategoryID: category.ID})
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/dashboard/summary", f.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	summary := decode[dto.DashboardSummaryDTO](t, resp)
	assert.Equal(t, 2, summary.TotalProducts)
	assert.Equal(t, 1, summary.PendingRequests)
}

func TestAPI_SinTokenRetorna401(t *testing.T) {
	f := newAPI(t)
	resp := f.do(t, http.MethodGet, "/api/inventory", "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_EdicionesSeguidasConservanLaClaveDelProducto(t *testing.T) {
	f := newAPI(t)
	require.NoError(t, f.repos.Products.Create(context.Background(), &entity.Product{ID: "p-ron-anejo", Code: "RON-07", Name: "Ron Añejo", FormatMl: int64Ptr(700), IsActive: true}))

	edits := []struct {
		path string
		body any
	}{
		{"/api/inventory/p-gin/bar_b", dto.SetQuantityRequest{QuantityMl: int64Ptr(1050)}},
		{"/api/inventory/p-ron-anejo/bar_b", dto.SetQuantityRequest{QuantityMl: int64Ptr(2100)}},
		{"/api/inventory/p-gin/bar_b/min-stock", dto.SetMinStockRequest{MinStockMl: int64Ptr(500)}},
		{"/api/inventory/p-ron-anejo/bar_b", dto.SetQuantityRequest{QuantityMl: int64Ptr(1400)}},
	}
	for _, e := range edits {
		resp := f.do(t, http.MethodPut, e.path, f.bodeguero, e.body)
		resp.Body.Close()
		require.Less(t, resp.StatusCode, 300, e.path)
	}

	resp := f.do(t, http.MethodGet, "/api/inventory?location=bar_b", f.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rows := decode[[]dto.InventoryRecordResponse](t, resp)
	require.Len(t, rows, 2)
	got := map[string]int64{}
	for _, row := range rows {
		assert.NotEmpty(t, row.ProductCode, row.ProductID)
		got[row.ProductID] = row.QuantityMl
	}
	assert.Equal(t, map[string]int64{"p-gin": 1050, "p-ron-anejo": 1400}, got)
}
