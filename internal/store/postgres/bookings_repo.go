package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"reservio/backend/internal/domain"
	"reservio/backend/internal/store"
)

type BookingRepo struct {
	db *bun.DB
}

func NewBookingRepo(db *bun.DB) *BookingRepo {
	return &BookingRepo{db: db}
}

type schedulingTx struct {
	tx bun.Tx
}

// InProviderTransaction wraps fn in a transaction holding a per-provider
// advisory lock, so concurrent create/reschedule sequences for the same
// provider serialize. The bookings_no_overlap exclusion constraint remains
// as a backstop should the lock ever be bypassed.
func (r *BookingRepo) InProviderTransaction(ctx context.Context, providerID uuid.UUID, fn func(ctx context.Context, tx store.SchedulingTx) error) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockProviderCalendar(ctx, tx, providerID); err != nil {
			return err
		}
		return fn(ctx, schedulingTx{tx: tx})
	})
}

func lockProviderCalendar(ctx context.Context, tx bun.Tx, providerID uuid.UUID) error {
	_, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", providerID.String()).Exec(ctx)
	return err
}

func (r *BookingRepo) GetBooking(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error) {
	var b domain.Booking
	err := r.db.NewSelect().
		Model(&b).
		Where("id = ?", bookingID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Booking{}, store.ErrNotFound
	}
	if err != nil {
		return domain.Booking{}, err
	}
	return b, nil
}

func (r *BookingRepo) ListBookings(ctx context.Context, q store.BookingQuery) ([]domain.Booking, error) {
	var rows []domain.Booking
	err := applyBookingQuery(r.db.NewSelect().Model(&rows), q).
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *BookingRepo) CountByStatus(ctx context.Context, q store.BookingQuery) (map[domain.BookingStatus]int, error) {
	var rows []struct {
		Status domain.BookingStatus `bun:"status"`
		Count  int                  `bun:"count"`
	}
	err := applyBookingQuery(r.db.NewSelect().Model((*domain.Booking)(nil)), q).
		ColumnExpr("status").
		ColumnExpr("count(*) AS count").
		GroupExpr("status").
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}

	out := make(map[domain.BookingStatus]int, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

func applyBookingQuery(sel *bun.SelectQuery, q store.BookingQuery) *bun.SelectQuery {
	if q.ProviderID != uuid.Nil {
		sel = sel.Where("provider_id = ?", q.ProviderID)
	}
	if len(q.Statuses) > 0 {
		sel = sel.Where("status IN (?)", bun.In(q.Statuses))
	}
	if q.WindowEnd != nil {
		sel = sel.Where("start_time < ?", *q.WindowEnd)
	}
	if q.WindowStart != nil {
		sel = sel.Where("end_time > ?", *q.WindowStart)
	}
	return sel
}

func (r schedulingTx) InsertBooking(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	m := b
	_, err := r.tx.NewInsert().Model(&m).Exec(ctx)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23P01" && pgErr.ConstraintName == "bookings_no_overlap" {
				return domain.Booking{}, store.ErrConflict
			}
			if pgErr.Code == "23505" {
				var existing domain.Booking
				selectErr := r.tx.NewSelect().
					Model(&existing).
					Where("id = ?", m.ID).
					Limit(1).
					Scan(ctx)
				if selectErr != nil {
					return domain.Booking{}, err
				}

				if existing.ProviderID != b.ProviderID ||
					existing.ServiceID != b.ServiceID ||
					existing.CustomerUserID != b.CustomerUserID ||
					existing.GuestEmail != b.GuestEmail ||
					!existing.StartTime.Equal(b.StartTime) ||
					!existing.EndTime.Equal(b.EndTime) {
					return domain.Booking{}, store.ErrIdempotencyConflict
				}

				return existing, nil
			}
		}
		return domain.Booking{}, err
	}

	b.ID = m.ID
	b.CreatedAt = m.CreatedAt
	b.UpdatedAt = m.UpdatedAt
	return b, nil
}

func (r schedulingTx) GetBooking(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error) {
	var b domain.Booking
	err := r.tx.NewSelect().
		Model(&b).
		Where("id = ?", bookingID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Booking{}, store.ErrNotFound
	}
	if err != nil {
		return domain.Booking{}, err
	}
	return b, nil
}

func (r schedulingTx) UpdateBooking(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	m := b
	res, err := r.tx.NewUpdate().
		Model(&m).
		WherePK().
		Exec(ctx)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23P01" && pgErr.ConstraintName == "bookings_no_overlap" {
			return domain.Booking{}, store.ErrConflict
		}
		return domain.Booking{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Booking{}, err
	}
	if affected == 0 {
		return domain.Booking{}, store.ErrNotFound
	}
	b.UpdatedAt = m.UpdatedAt
	return b, nil
}

func (r schedulingTx) ListOccupyingBookings(ctx context.Context, providerID uuid.UUID, windowStart, windowEnd time.Time) ([]domain.Booking, error) {
	var rows []domain.Booking
	err := r.tx.NewSelect().
		Model(&rows).
		Where("provider_id = ?", providerID).
		Where("status IN (?)", bun.In(domain.OccupyingStatuses)).
		Where("start_time < ?", windowEnd).
		Where("end_time > ?", windowStart).
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
