package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-bares/internal/application/alert"
	"github.com/jhoicas/inventario-bares/internal/application/audit"
	"github.com/jhoicas/inventario-bares/internal/application/auth"
	"github.com/jhoicas/inventario-bares/internal/application/dashboard"
	"github.com/jhoicas/inventario-bares/internal/application/inventory"
	"github.com/jhoicas/inventario-bares/internal/application/request"
	"github.com/jhoicas/inventario-bares/internal/application/transfer"
	"github.com/jhoicas/inventario-bares/internal/application/usecase"
	"github.com/jhoicas/inventario-bares/internal/infrastructure/pdf"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	ProductUC   *usecase.ProductUseCase
	UserUC      *usecase.UserUseCase
	DashboardUC *dashboard.DashboardUseCase
	Ledger      *inventory.Ledger
	Requests    *request.Service
	Transfers   *transfer.Service
	Alerts      *alert.Service
	Audit       *audit.Service
	Receipts    *pdf.ReceiptGenerator
	JWTSecret   string
}

// Roles con acceso a cada grupo de rutas. La política fina por transición vive en el dominio.
const (
	roleAdmin     = "admin"
	roleBodeguero = "bodeguero"
	roleBartender = "bartender"
)

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	staff := RequireRole(roleAdmin, roleBodeguero)
	adminOnly := RequireRole(roleAdmin)

	userHandler := NewUserHandler(deps.UserUC)
	protected.Get("/auth/me", userHandler.Me)

	// Products y categorías
	productHandler := NewProductHandler(deps.ProductUC)
	products := protected.Group("/products")
	products.Get("/", productHandler.List)
	products.Post("/", staff, productHandler.Create)
	products.Post("/import", staff, productHandler.Import)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", staff, productHandler.Update)

	categories := protected.Group("/categories")
	categories.Get("/", productHandler.ListCategories)
	categories.Post("/", staff, productHandler.CreateCategory)

	// Inventory
	inventoryHandler := NewInventoryHandler(deps.Ledger)
	inv := protected.Group("/inventory")
	inv.Get("/", inventoryHandler.List)
	inv.Get("/export", inventoryHandler.Export)
	inv.Put("/:product_id/:location", staff, inventoryHandler.SetQuantity)
	inv.Put("/:product_id/:location/min-stock", staff, inventoryHandler.SetMinStock)

	// Requests
	requestHandler := NewRequestHandler(deps.Requests, deps.UserUC, deps.Receipts)
	requests := protected.Group("/requests")
	requests.Get("/", requestHandler.List)
	requests.Post("/", RequireRole(roleAdmin, roleBartender), requestHandler.Create)
	requests.Get("/:id", requestHandler.GetByID)
	requests.Get("/:id/receipt", requestHandler.Receipt)
	requests.Post("/:id/approve", staff, requestHandler.Approve)
	requests.Post("/:id/reject", staff, requestHandler.Reject)
	requests.Post("/:id/deliver", staff, requestHandler.Deliver)

	// Transfers
	transferHandler := NewTransferHandler(deps.Transfers)
	transfers := protected.Group("/transfers")
	transfers.Get("/", transferHandler.List)
	transfers.Post("/", staff, transferHandler.Create)
	transfers.Get("/:id", transferHandler.GetByID)
	transfers.Post("/:id/confirm", transferHandler.Confirm)

	// Alerts
	alertHandler := NewAlertHandler(deps.Alerts)
	alerts := protected.Group("/alerts")
	alerts.Get("/", alertHandler.List)
	alerts.Get("/triggered", alertHandler.Triggered)
	alerts.Post("/", staff, alertHandler.Create)
	alerts.Post("/notify", staff, alertHandler.Notify)
	alerts.Put("/:id", staff, alertHandler.Update)
	alerts.Delete("/:id", staff, alertHandler.Delete)

	// Logs
	logHandler := NewLogHandler(deps.Audit)
	logs := protected.Group("/logs", staff)
	logs.Get("/", logHandler.List)
	logs.Get("/export", logHandler.Export)

	// Dashboard
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	protected.Get("/dashboard/summary", dashboardHandler.GetSummary)

	// Users
	users := protected.Group("/users", adminOnly)
	users.Get("/", userHandler.List)
	users.Post("/", userHandler.Create)
	users.Get("/:id", userHandler.GetByID)
	users.Put("/:id", userHandler.Update)
}
