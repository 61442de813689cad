// import-products carga el catálogo desde la planilla de productos (CSV o XLSX):
// nombre, tipo, formato, código y precio de venta. Crea o actualiza por código y
// crea las categorías por nombre.
//
// Uso:
//
//	go run ./cmd/import-products --file productos.csv --admin admin@bar.test [--latin1]
//
// Usa la misma configuración que la API (DATABASE_URL / DB_*).
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/jhoicas/inventario-bares/internal/application/audit"
	"github.com/jhoicas/inventario-bares/internal/application/usecase"
	"github.com/jhoicas/inventario-bares/internal/domain/entity"
	"github.com/jhoicas/inventario-bares/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-bares/internal/infrastructure/spreadsheet"
	"github.com/jhoicas/inventario-bares/pkg/config"
	"github.com/jhoicas/inventario-bares/pkg/logger"
)

func main() {
	file := pflag.StringP("file", "f", "", "ruta de la planilla (.csv o .xlsx)")
	format := pflag.String("format", "", "csv | xlsx (por defecto según la extensión)")
	latin1 := pflag.Bool("latin1", false, "el CSV viene en ISO-8859-1")
	adminEmail := pflag.String("admin", "", "email del usuario admin que queda registrado en el historial")
	pflag.Parse()

	if *file == "" || *adminEmail == "" {
		pflag.Usage()
		os.Exit(2)
	}
	if *format == "" {
		*format = strings.TrimPrefix(filepath.Ext(*file), ".")
	}
	f, err := spreadsheet.ParseFormat(*format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Formato: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "import-products"})

	in, err := os.Open(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir planilla: %v\n", err)
		os.Exit(1)
	}
	defer in.Close()
	records, err := spreadsheet.Read(in, f, spreadsheet.ReadOptions{Latin1: *latin1})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer planilla: %v\n", err)
		os.Exit(1)
	}
	rows := spreadsheet.ProductRows(records)

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	repos := postgres.NewRepos(pool)

	admin, err := repos.Users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(*adminEmail)))
	if err != nil {
		log.Fatal().Err(err).Msg("buscar usuario admin")
	}
	if admin == nil || admin.Role != entity.RoleAdmin {
		log.Fatal().Str("email", *adminEmail).Msg("el usuario no existe o no es admin")
	}
	actor := entity.Actor{UserID: admin.ID, Name: admin.FullName, Role: admin.Role, Location: admin.Location}

	uc := usecase.NewProductUseCase(repos.Products, repos.Categories, audit.NewWriter(repos.Audit, log.Component("audit")), log.Component("import"))
	summary, err := uc.Import(ctx, actor, rows)
	if err != nil {
		log.Fatal().Err(err).Msg("importación")
	}
	for _, e := range summary.Errors {
		log.Warn().Msg(e)
	}
	log.Info().
		Int("filas", len(rows)).
		Int("creados", summary.Created).
		Int("actualizados", summary.Updated).
		Int("omitidos", summary.Skipped).
		Msg("importación terminada")
}
