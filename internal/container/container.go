package container

import (
	"context"
	"fmt"
	"log/slog"

	"board-finder/config"
	app "board-finder/internal/application"
	"board-finder/internal/domain/port"
	"board-finder/internal/infrastructure/normalize"
	"board-finder/internal/infrastructure/phash"
	"board-finder/internal/infrastructure/storage"
	"board-finder/internal/infrastructure/vision"
)

type Container struct {
	UserService       *app.UserService
	CatalogService    *app.CatalogService
	EnrollmentService *app.EnrollmentService
	Sampler           port.FrameSampler // nil, если видео не поддерживается
	VideoFrames       int

	catalog port.CatalogRepository
}

// New собирает сервисы приложения. inspector и sampler могут быть nil.
func New(
	userRepo port.UserRepository,
	catalogRepo port.CatalogRepository,
	inspector port.FrameInspector,
	sampler port.FrameSampler,
	matcher app.Matcher,
) *Container {
	n := normalize.New()
	userService := app.NewUserService(userRepo)
	catalogService := app.NewCatalogService(catalogRepo, n, phash.New(n), inspector, matcher)

	return &Container{
		UserService:       userService,
		CatalogService:    catalogService,
		EnrollmentService: app.NewEnrollmentService(userService, catalogService),
		Sampler:           sampler,
		VideoFrames:       5,
		catalog:           catalogRepo,
	}
}

// Open открывает хранилище по конфигурации и собирает контейнер.
// С memory каталог живёт только в памяти процесса.
func Open(ctx context.Context, cfg *config.Config, memory bool) (*Container, error) {
	var catalogRepo port.CatalogRepository
	if memory {
		catalogRepo = storage.NewMemoryCatalogRepository()
	} else {
		images, err := storage.NewImageDir(cfg.ImageDir)
		if err != nil {
			return nil, err
		}
		repo, err := storage.OpenSQLite(ctx, cfg.DatabasePath, images)
		if err != nil {
			return nil, fmt.Errorf("open catalog: %w", err)
		}
		catalogRepo = repo
	}

	var (
		inspector port.FrameInspector
		sampler   port.FrameSampler
	)
	if vision.Enabled {
		cv := vision.NewGoCVInspector()
		sampler = cv
		if cfg.QualityGate {
			inspector = cv
		}
	} else if cfg.QualityGate {
		slog.Warn("QUALITY_GATE ignored: binary built without gocv tag")
	}

	c := New(storage.NewMemoryUserRepository(), catalogRepo, inspector, sampler, app.Matcher{Threshold: cfg.MatchThreshold()})
	c.VideoFrames = cfg.VideoFrames

	slog.Info("Catalog opened",
		"db", cfg.DatabasePath,
		"memory", memory,
		"policy", cfg.Policy,
		"threshold", cfg.MatchThreshold(),
		"quality_gate", inspector != nil,
	)
	return c, nil
}

// Close закрывает хранилище каталога
func (c *Container) Close() error {
	return c.catalog.Close()
}
