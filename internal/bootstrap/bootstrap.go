// Package bootstrap builds the storage layer selected by configuration. It is shared by
// the HTTP server and the CLI.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/eufiscalizo-api/internal/fixtures"
	"github.com/noah-isme/eufiscalizo-api/internal/models"
	"github.com/noah-isme/eufiscalizo-api/internal/repository"
	"github.com/noah-isme/eufiscalizo-api/pkg/cache"
	"github.com/noah-isme/eufiscalizo-api/pkg/config"
	"github.com/noah-isme/eufiscalizo-api/pkg/database"
	"github.com/noah-isme/eufiscalizo-api/pkg/storage"
)

// UserStore is the principal registry contract.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	List(ctx context.Context) ([]models.User, error)
}

// InspectionStore is the inspection collection contract.
type InspectionStore interface {
	List(ctx context.Context) ([]models.Inspection, error)
	Get(ctx context.Context, id string) (*models.Inspection, error)
	Insert(ctx context.Context, inspection *models.Inspection) error
	UpdateWhere(ctx context.Context, id string, fn func(*models.Inspection) error) (*models.Inspection, error)
}

// SessionStore persists the locally signed-in principal.
type SessionStore interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, payload []byte) error
	Clear(ctx context.Context) error
}

// Stores groups the opened backends. Close releases every connection.
type Stores struct {
	Users       UserStore
	Inspections InspectionStore
	DB          *sqlx.DB
	Redis       *redis.Client
}

// Close releases database and Redis connections.
func (s *Stores) Close() error {
	var firstErr error
	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			firstErr = err
		}
	}
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Open connects the configured store driver and seeds fixtures into an empty store.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Stores, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var seed *fixtures.Set
	if cfg.Store.SeedFixtures {
		set, err := fixtures.Default()
		if err != nil {
			return nil, err
		}
		seed = set
	}

	stores := &Stores{}
	switch cfg.Store.Driver {
	case config.StoreMemory:
		var users []models.User
		var inspections []models.Inspection
		if seed != nil {
			users, inspections = seed.Users, seed.Inspections
		}
		stores.Users = repository.NewMemoryUserRepository(users)
		stores.Inspections = repository.NewMemoryInspectionRepository(inspections)
	case config.StorePostgres, config.StoreSQLite:
		db, err := openSQL(cfg)
		if err != nil {
			return nil, err
		}
		stores.DB = db
		if err := repository.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		userRepo := repository.NewUserRepository(db)
		inspectionRepo := repository.NewInspectionRepository(db)
		stores.Users = userRepo
		stores.Inspections = inspectionRepo
		if seed != nil {
			if err := seedSQL(ctx, userRepo, inspectionRepo, seed, logger); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	client, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		if cfg.Session.Driver == config.SessionRedis {
			_ = stores.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		logger.Warn("redis unavailable, continuing without it", zap.Error(err))
	}
	stores.Redis = client

	logger.Info("store ready", zap.String("driver", cfg.Store.Driver), zap.Bool("redis", client != nil))
	return stores, nil
}

// Sessions returns the session backend selected by SESSION_DRIVER.
func (s *Stores) Sessions(cfg *config.Config, logger *zap.Logger) (SessionStore, error) {
	switch cfg.Session.Driver {
	case config.SessionRedis:
		if s.Redis == nil {
			return nil, fmt.Errorf("session driver redis requires ENABLE_REDIS=true")
		}
		return repository.NewRedisSessionRepository(s.Redis, "", logger), nil
	default:
		local, err := storage.NewLocalStorage(cfg.Session.Dir)
		if err != nil {
			return nil, err
		}
		return repository.NewFileSessionRepository(local), nil
	}
}

func openSQL(cfg *config.Config) (*sqlx.DB, error) {
	if cfg.Store.Driver == config.StorePostgres {
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		return db, nil
	}
	db, err := database.NewSQLite(cfg.SQLite)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return db, nil
}

func seedSQL(ctx context.Context, users *repository.UserRepository, inspections *repository.InspectionRepository, seed *fixtures.Set, logger *zap.Logger) error {
	userCount, err := users.Count(ctx)
	if err != nil {
		return err
	}
	if userCount == 0 {
		for i := range seed.Users {
			if err := users.Create(ctx, seed.Users[i].Clone()); err != nil {
				return fmt.Errorf("seed users: %w", err)
			}
		}
		logger.Info("seeded fixture users", zap.Int("count", len(seed.Users)))
	}

	inspectionCount, err := inspections.Count(ctx)
	if err != nil {
		return err
	}
	if inspectionCount == 0 {
		for i := range seed.Inspections {
			if err := inspections.Insert(ctx, seed.Inspections[i].Clone()); err != nil {
				return fmt.Errorf("seed inspections: %w", err)
			}
		}
		logger.Info("seeded fixture inspections", zap.Int("count", len(seed.Inspections)))
	}
	return nil
}
