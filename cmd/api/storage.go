package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/xavierca1/hirelocal/internal/config"
	"github.com/xavierca1/hirelocal/internal/entity"
	"github.com/xavierca1/hirelocal/internal/infra/database"
	"github.com/xavierca1/hirelocal/internal/infra/memory"
)

type repositories struct {
	Leads         entity.LeadRepository
	Profiles      entity.FreelancerRepository
	Subscriptions entity.SubscriptionRepository
	Interactions  entity.InteractionRepository
	Notifications entity.NotificationRepository
	Users         entity.UserRepository
	DB            *sql.DB
}

func (r *repositories) Close() {
	if r.DB != nil {
		r.DB.Close()
	}
}

func openRepositories(ctx context.Context, cfg config.Config, log *slog.Logger) (*repositories, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		return openMemory(cfg, log)
	case config.DriverPostgres:
		return openPostgres(ctx, cfg, log)
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

func openMemory(cfg config.Config, log *slog.Logger) (*repositories, error) {
	users := memory.NewUserStore()
	profiles := memory.NewProfileStore()

	if cfg.Storage.SeedFile != "" {
		seed, err := memory.LoadSeed(cfg.Storage.SeedFile)
		if err != nil {
			return nil, err
		}
		seed.Apply(users, profiles, time.Now().UTC())
		log.Info("memory store seeded",
			slog.Int("users", len(seed.Users)),
			slog.Int("profiles", len(seed.Profiles)),
			slog.Int("subscriptions", len(seed.Subscriptions)))
	}

	log.Warn("using in-memory storage, data is lost on restart")
	return &repositories{
		Leads:         memory.NewLeadStore(),
		Profiles:      profiles,
		Subscriptions: profiles,
		Interactions:  memory.NewInteractionStore(),
		Notifications: memory.NewNotificationStore(),
		Users:         users,
	}, nil
}

func openPostgres(ctx context.Context, cfg config.Config, log *slog.Logger) (*repositories, error) {
	db, err := database.NewDBConnection(ctx, cfg.Database.DSN, database.PoolConfig{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if cfg.Database.Migrate {
		if err := database.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		log.Info("database schema applied")
	}

	return &repositories{
		Leads:         database.NewLeadRepository(db),
		Profiles:      database.NewFreelancerRepository(db),
		Subscriptions: database.NewSubscriptionRepository(db),
		Interactions:  database.NewInteractionRepository(db),
		Notifications: database.NewNotificationRepository(db),
		Users:         database.NewUserRepository(db),
		DB:            db,
	}, nil
}
