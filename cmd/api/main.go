package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/inventario-bares/internal/application/alert"
	"github.com/jhoicas/inventario-bares/internal/application/audit"
	"github.com/jhoicas/inventario-bares/internal/application/auth"
	"github.com/jhoicas/inventario-bares/internal/application/dashboard"
	"github.com/jhoicas/inventario-bares/internal/application/inventory"
	"github.com/jhoicas/inventario-bares/internal/application/notification"
	"github.com/jhoicas/inventario-bares/internal/application/request"
	"github.com/jhoicas/inventario-bares/internal/application/transfer"
	"github.com/jhoicas/inventario-bares/internal/application/usecase"
	"github.com/jhoicas/inventario-bares/internal/infrastructure/email"
	infrapdf "github.com/jhoicas/inventario-bares/internal/infrastructure/pdf"
	httpRouter "github.com/jhoicas/inventario-bares/internal/interfaces/http"
	"github.com/jhoicas/inventario-bares/pkg/config"
	"github.com/jhoicas/inventario-bares/pkg/logger"
	"github.com/jhoicas/inventario-bares/pkg/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.DB.Driver).
		Str("events", cfg.Events.Backend).
		Msg("iniciando aplicación")

	ctx := context.Background()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Endpoint:    cfg.Telemetry.Endpoint,
		ServiceName: cfg.Telemetry.ServiceName,
		Version:     "1.0.0",
		Insecure:    cfg.Telemetry.Insecure,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("configurar trazas")
	}

	store, err := openStorage(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento")
	}
	defer store.close()

	bus, err := openEvents(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir bus de eventos")
	}

	// Dispatcher: resuelve destinatarios, renderiza y envía con reintentos.
	var sender notification.Sender = email.NewLogSender(log.Component("email"))
	if cfg.SMTP.Enabled() {
		sender = email.NewSMTPSender(cfg.SMTP)
	}
	notifier := notification.NewNotifier(sender, notification.NotifierConfig{
		MaxAttempts: uint(cfg.Notify.MaxAttempts),
		BaseDelay:   cfg.Notify.BaseDelay,
		AlwaysBCC:   cfg.Notify.AlwaysBCC,
	}, log.Component("notifier"))
	dispatcher := notification.NewDispatcher(
		notification.NewResolver(store.users),
		notification.NewRenderer(cfg.Notify.Footer),
		notifier,
		log.Component("dispatcher"),
	)
	dispatchCtx, stopDispatch := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	if bus.events != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dispatcher.Run(dispatchCtx, bus.events)
		}()
	}

	auditWriter := audit.NewWriter(store.audit, log.Component("audit"))
	ledger := inventory.NewLedger(store.tx, store.inventory, store.products, store.alerts, auditWriter, bus.publisher, log.Component("inventory"))
	requestSvc := request.NewService(store.tx, store.requests, store.products, auditWriter, bus.publisher, log.Component("request"))
	transferSvc := transfer.NewService(store.tx, store.transfers, store.products, auditWriter, bus.publisher, log.Component("transfer"))
	alertSvc := alert.NewService(store.alerts, store.inventory, store.products, bus.publisher, log.Component("alert"))
	auditSvc := audit.NewService(store.audit)
	productUC := usecase.NewProductUseCase(store.products, store.categories, auditWriter, log.Component("product"))
	userUC := usecase.NewUserUseCase(store.users, auditWriter)
	dashboardUC := dashboard.NewDashboardUseCase(store.products, store.inventory, store.requests, alertSvc)
	authUC := auth.NewAuthUseCase(store.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    8 * 1024 * 1024,
		Immutable:    true,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Inventario Bares API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		ProductUC:   productUC,
		UserUC:      userUC,
		DashboardUC: dashboardUC,
		Ledger:      ledger,
		Requests:    requestSvc,
		Transfers:   transferSvc,
		Alerts:      alertSvc,
		Audit:       auditSvc,
		Receipts:    infrapdf.NewReceiptGenerator(),
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	// Cerrar el bus deja que el dispatcher entregue lo pendiente; el timeout lo corta.
	bus.close()
	drained := make(chan struct{})
	go func() {
		wg.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-shutdownCtx.Done():
		log.Warn().Msg("notificaciones pendientes descartadas por timeout")
		stopDispatch()
		<-drained
	}
	stopDispatch()

	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("cierre de trazas")
	}

	log.Info().Msg("aplicación detenida")
}
