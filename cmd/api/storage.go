package main

import (
	"context"
	"database/sql"

	"eventbooking/config"
	"eventbooking/internal/domain"
	"eventbooking/internal/repository/memory"
	"eventbooking/internal/repository/postgres"
)

type repositories struct {
	events   domain.EventRepository
	bookings domain.BookingRepository
	users    domain.UserRepository
	roles    domain.RoleRepository
	db       *sql.DB
}

func (r *repositories) close() {
	if r.db != nil {
		_ = r.db.Close()
	}
}

// openRepositories builds the repositories for the configured storage driver.
func openRepositories(ctx context.Context, cfg *config.Config) (*repositories, error) {
	if cfg.StorageDriver == config.StorageMemory {
		store := memory.NewStore()
		return &repositories{
			events:   memory.NewEventRepository(store),
			bookings: memory.NewBookingRepository(store),
			users:    memory.NewUserRepository(store),
			roles:    memory.NewRoleRepository(store),
		}, nil
	}
	db, err := postgres.Open(ctx, cfg.DBUrl)
	if err != nil {
		return nil, err
	}
	return &repositories{
		events:   postgres.NewEventRepository(db),
		bookings: postgres.NewBookingRepository(db),
		users:    postgres.NewUserRepository(db),
		roles:    postgres.NewRoleRepository(db),
		db:       db,
	}, nil
}
