package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/xdoubleu/essentia/v2/pkg/database"
	"github.com/xdoubleu/essentia/v2/pkg/database/postgres"
	"planner.xdoubleu.com/apps/calendar/internal/models"
	"planner.xdoubleu.com/apps/calendar/internal/timeutil"
)

type ExceptionRepository struct {
	db postgres.DB
}

func scanException(row pgx.Row) (*models.Exception, error) {
	//nolint:exhaustruct //date is assigned below
	exception := models.Exception{}

	var date time.Time
	err := row.Scan(
		&exception.ID,
		&exception.EventID,
		&date,
		&exception.IsDeleted,
		&exception.NewStart,
		&exception.NewEnd,
		&exception.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	exception.Date = timeutil.DateFromTime(date)

	return &exception, nil
}

func (repo *ExceptionRepository) GetByEventID(
	ctx context.Context,
	eventID string,
) ([]models.Exception, error) {
	query := `
		SELECT id, event_id, exception_date, is_deleted,
		new_start_time, new_end_time, created_at
		FROM calendar.exceptions
		WHERE event_id = $1
		ORDER BY exception_date ASC, created_at ASC
	`

	rows, err := repo.db.Query(ctx, query, eventID)
	if err != nil {
		return nil, postgres.PgxErrorToHTTPError(err)
	}
	defer rows.Close()

	exceptions := []models.Exception{}
	for rows.Next() {
		var exception *models.Exception
		exception, err = scanException(rows)
		if err != nil {
			return nil, postgres.PgxErrorToHTTPError(err)
		}

		exceptions = append(exceptions, *exception)
	}

	if err = rows.Err(); err != nil {
		return nil, postgres.PgxErrorToHTTPError(err)
	}

	return exceptions, nil
}

// Upsert stores the exception, replacing the one already recorded for the
// same event and day.
func (repo *ExceptionRepository) Upsert(
	ctx context.Context,
	exception *models.Exception,
) error {
	query := `
		INSERT INTO calendar.exceptions (id, event_id, exception_date,
		is_deleted, new_start_time, new_end_time)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (event_id, exception_date)
		DO UPDATE SET is_deleted = $4, new_start_time = $5, new_end_time = $6
		RETURNING id, created_at
	`

	err := repo.db.QueryRow(
		ctx,
		query,
		exception.ID,
		exception.EventID,
		exception.Date.Time(),
		exception.IsDeleted,
		exception.NewStart,
		exception.NewEnd,
	).Scan(&exception.ID, &exception.CreatedAt)
	if err != nil {
		return postgres.PgxErrorToHTTPError(err)
	}

	return nil
}

func (repo *ExceptionRepository) Delete(
	ctx context.Context,
	eventID string,
	date timeutil.Date,
) error {
	query := `
		DELETE FROM calendar.exceptions
		WHERE event_id = $1 AND exception_date = $2
	`

	result, err := repo.db.Exec(ctx, query, eventID, date.Time())
	if err != nil {
		return postgres.PgxErrorToHTTPError(err)
	}

	rowsAffected := result.RowsAffected()
	if rowsAffected == 0 {
		return database.ErrResourceNotFound
	}

	return nil
}

// DeleteByIDs removes the given exceptions in one batch.
func (repo *ExceptionRepository) DeleteByIDs(
	ctx context.Context,
	ids []string,
) error {
	if len(ids) == 0 {
		return nil
	}

	query := `
		DELETE FROM calendar.exceptions
		WHERE id = $1
	`

	//nolint:exhaustruct //fields are optional
	b := &pgx.Batch{}
	for _, id := range ids {
		b.Queue(query, id)
	}

	err := repo.db.SendBatch(ctx, b).Close()
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return postgres.PgxErrorToHTTPError(err)
	}

	return nil
}
