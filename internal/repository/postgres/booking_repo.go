package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"eventbooking/internal/domain"
)

type bookingRepository struct {
	DB *sql.DB
}

// NewBookingRepository returns a BookingRepository that serializes admissions
// per event with a row lock on the event.
func NewBookingRepository(db *sql.DB) domain.BookingRepository {
	return &bookingRepository{DB: db}
}

type txLedger struct {
	tx    *sql.Tx
	event *domain.Event
}

func (l *txLedger) Event() *domain.Event { return l.event }

func (l *txLedger) TotalBooked(ctx context.Context) (int, error) {
	return sumSeats(ctx, l.tx, l.event.ID)
}

func (l *txLedger) Append(ctx context.Context, b *domain.Booking) error {
	query := `
		INSERT INTO bookings (event_id, user_id, seats, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	return mapErr(l.tx.QueryRowContext(ctx, query, b.EventID, b.UserID, b.Seats, b.CreatedAt).Scan(&b.ID))
}

func (l *txLedger) RemoveEvent(ctx context.Context) error {
	_, err := l.tx.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, l.event.ID)
	return mapErr(err)
}

// WithEventLock runs fn in a transaction holding SELECT ... FOR UPDATE on the
// event row. Admissions for other events lock other rows and proceed in parallel.
func (r *bookingRepository) WithEventLock(ctx context.Context, eventID string, fn func(ctx context.Context, l domain.SeatLedger) error) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 FOR UPDATE`
	event, err := scanEvent(tx.QueryRowContext(ctx, query, eventID))
	if err != nil {
		return err
	}
	if err := fn(ctx, &txLedger{tx: tx, event: event}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func sumSeats(ctx context.Context, q queryRower, eventID string) (int, error) {
	var total int
	err := q.QueryRowContext(ctx, `SELECT COALESCE(SUM(seats), 0) FROM bookings WHERE event_id = $1`, eventID).Scan(&total)
	if err != nil {
		return 0, mapErr(err)
	}
	return total, nil
}

func (r *bookingRepository) SumSeatsByEventID(ctx context.Context, eventID string) (int, error) {
	return sumSeats(ctx, r.DB, eventID)
}

// ListByUserID returns the user's bookings newest first, each with its event.
func (r *bookingRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.BookingWithEvent, error) {
	query := `
		SELECT b.id, b.event_id, b.user_id, b.seats, b.created_at,
		       e.id, e.title, e.slug, e.date, e.location, e.capacity, e.image, e.is_published, e.owner_id, e.created_at, e.updated_at
		FROM bookings b
		INNER JOIN events e ON e.id = b.event_id
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC, b.id DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := make([]*domain.BookingWithEvent, 0)
	for rows.Next() {
		b := &domain.Booking{}
		e := &domain.Event{}
		var image sql.NullString
		if err := rows.Scan(&b.ID, &b.EventID, &b.UserID, &b.Seats, &b.CreatedAt,
			&e.ID, &e.Title, &e.Slug, &e.Date, &e.Location, &e.Capacity, &image, &e.IsPublished, &e.OwnerID, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if image.Valid {
			e.Image = &image.String
		}
		out = append(out, &domain.BookingWithEvent{Booking: b, Event: e})
	}
	return out, rows.Err()
}

// ListByEventID returns the event's bookings in admission order, each with the booker.
func (r *bookingRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.BookingWithUser, error) {
	query := `
		SELECT b.id, b.event_id, b.user_id, b.seats, b.created_at, u.id, u.username, u.email
		FROM bookings b
		INNER JOIN users u ON u.id = b.user_id
		WHERE b.event_id = $1
		ORDER BY b.created_at ASC, b.id ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := make([]*domain.BookingWithUser, 0)
	for rows.Next() {
		b := &domain.Booking{}
		u := &domain.UserSummary{}
		if err := rows.Scan(&b.ID, &b.EventID, &b.UserID, &b.Seats, &b.CreatedAt, &u.ID, &u.Username, &u.Email); err != nil {
			return nil, err
		}
		out = append(out, &domain.BookingWithUser{Booking: b, User: u})
	}
	return out, rows.Err()
}
