package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"eventbooking/internal/domain"
)

const eventColumns = `id, title, slug, date, location, capacity, image, is_published, owner_id, created_at, updated_at`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var image sql.NullString
	err := row.Scan(&e.ID, &e.Title, &e.Slug, &e.Date, &e.Location, &e.Capacity, &image,
		&e.IsPublished, &e.OwnerID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	if image.Valid {
		e.Image = &image.String
	}
	return e, nil
}

func scanEvents(rows *sql.Rows) ([]*domain.Event, error) {
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, slug, date, location, capacity, image, is_published, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, e.Title, e.Slug, e.Date, e.Location, e.Capacity, e.Image,
		e.IsPublished, e.OwnerID, e.CreatedAt, e.UpdatedAt).Scan(&e.ID)
	return mapErr(err)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	return scanEvent(r.DB.QueryRowContext(ctx, query, id))
}

func (r *eventRepository) ListPublished(ctx context.Context, p domain.PaginationParams) ([]*domain.Event, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE is_published`).Scan(&total); err != nil {
		return nil, 0, err
	}

	var limit sql.NullInt64
	if p.PageSize > 0 {
		limit = sql.NullInt64{Int64: int64(p.PageSize), Valid: true}
	}
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE is_published
		ORDER BY date ASC, id ASC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.DB.QueryContext(ctx, query, limit, p.Offset())
	if err != nil {
		return nil, 0, err
	}
	events, err := scanEvents(rows)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepository) ListAll(ctx context.Context) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY date ASC, id ASC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return scanEvents(rows)
}

// Update writes the non-nil fields of u. The UPDATE takes the row lock, so it
// waits for any admission holding the event.
func (r *eventRepository) Update(ctx context.Context, id string, u domain.EventUpdate) (*domain.Event, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []any{}
	set := func(column string, value any) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if u.Title != nil {
		set("title", *u.Title)
	}
	if u.Slug != nil {
		set("slug", *u.Slug)
	}
	if u.Date != nil {
		set("date", *u.Date)
	}
	if u.Location != nil {
		set("location", *u.Location)
	}
	if u.Capacity != nil {
		set("capacity", *u.Capacity)
	}
	if u.Image != nil {
		set("image", *u.Image)
	}
	if u.IsPublished != nil {
		set("is_published", *u.IsPublished)
	}
	if len(args) == 0 {
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE events SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), len(args), eventColumns)
	return scanEvent(r.DB.QueryRowContext(ctx, query, args...))
}
