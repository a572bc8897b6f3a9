package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/xdoubleu/essentia/v2/pkg/database"
	"github.com/xdoubleu/essentia/v2/pkg/database/postgres"
	"planner.xdoubleu.com/apps/calendar/internal/models"
)

type EventRepository struct {
	db postgres.DB
}

const eventColumns = `
	id, owner_id, title, description, start_time, end_time,
	timezone, recurrence_pattern, recurrence_days, color,
	created_at, updated_at
`

func scanEvent(row pgx.Row) (*models.Event, error) {
	//nolint:exhaustruct //pattern is assigned below
	event := models.Event{}

	var kind string
	var days []int16

	err := row.Scan(
		&event.ID,
		&event.OwnerID,
		&event.Title,
		&event.Description,
		&event.Start,
		&event.End,
		&event.Timezone,
		&kind,
		&days,
		&event.Color,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	indices := make([]int, 0, len(days))
	for _, day := range days {
		indices = append(indices, int(day))
	}

	event.Pattern, err = models.ParsePattern(kind, indices)
	if err != nil {
		return nil, err
	}

	return &event, nil
}

func patternColumns(event *models.Event) (string, []int16) {
	days := []int16{}
	for _, day := range models.WeekdayIndices(event.Recurrence()) {
		days = append(days, int16(day)) //nolint:gosec //weekday indices fit
	}

	return string(event.Recurrence().Kind()), days
}

func (repo *EventRepository) GetByID(
	ctx context.Context,
	id string,
) (*models.Event, error) {
	query := `SELECT ` + eventColumns + `
		FROM calendar.events
		WHERE id = $1
	`

	event, err := scanEvent(repo.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, database.ErrResourceNotFound
	}
	if err != nil {
		return nil, postgres.PgxErrorToHTTPError(err)
	}

	return event, nil
}

// GetAll returns the events selected by filter.
func (repo *EventRepository) GetAll(
	ctx context.Context,
	filter models.OwnerFilter,
) ([]models.Event, error) {
	query := `SELECT ` + eventColumns + `
		FROM calendar.events
		WHERE $1::text IS NULL OR owner_id = $1 OR ($2 AND owner_id IS NULL)
		ORDER BY start_time ASC, id ASC
	`

	rows, err := repo.db.Query(ctx, query, filter.OwnerID, filter.Shared)
	if err != nil {
		return nil, postgres.PgxErrorToHTTPError(err)
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var event *models.Event
		event, err = scanEvent(rows)
		if err != nil {
			return nil, postgres.PgxErrorToHTTPError(err)
		}

		events = append(events, *event)
	}

	if err = rows.Err(); err != nil {
		return nil, postgres.PgxErrorToHTTPError(err)
	}

	return events, nil
}

// GetAllWithExceptions joins every event selected by filter with its
// exceptions.
func (repo *EventRepository) GetAllWithExceptions(
	ctx context.Context,
	filter models.OwnerFilter,
) ([]models.EventWithExceptions, error) {
	events, err := repo.GetAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT x.id, x.event_id, x.exception_date, x.is_deleted,
		x.new_start_time, x.new_end_time, x.created_at
		FROM calendar.exceptions x
		JOIN calendar.events e ON e.id = x.event_id
		WHERE $1::text IS NULL OR e.owner_id = $1 OR ($2 AND e.owner_id IS NULL)
		ORDER BY x.exception_date ASC, x.created_at ASC
	`

	rows, err := repo.db.Query(ctx, query, filter.OwnerID, filter.Shared)
	if err != nil {
		return nil, postgres.PgxErrorToHTTPError(err)
	}
	defer rows.Close()

	exceptions := map[string][]models.Exception{}
	for rows.Next() {
		var exception *models.Exception
		exception, err = scanException(rows)
		if err != nil {
			return nil, postgres.PgxErrorToHTTPError(err)
		}

		exceptions[exception.EventID] = append(
			exceptions[exception.EventID],
			*exception,
		)
	}

	if err = rows.Err(); err != nil {
		return nil, postgres.PgxErrorToHTTPError(err)
	}

	result := make([]models.EventWithExceptions, 0, len(events))
	for _, event := range events {
		result = append(result, models.EventWithExceptions{
			Event:      event,
			Exceptions: exceptions[event.ID],
		})
	}

	return result, nil
}

// GetOwnerIDs lists every owner that has at least one event.
func (repo *EventRepository) GetOwnerIDs(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT owner_id
		FROM calendar.events
		WHERE owner_id IS NOT NULL
		ORDER BY owner_id
	`

	rows, err := repo.db.Query(ctx, query)
	if err != nil {
		return nil, postgres.PgxErrorToHTTPError(err)
	}
	defer rows.Close()

	ownerIDs := []string{}
	for rows.Next() {
		var ownerID string
		if err = rows.Scan(&ownerID); err != nil {
			return nil, postgres.PgxErrorToHTTPError(err)
		}
		ownerIDs = append(ownerIDs, ownerID)
	}

	if err = rows.Err(); err != nil {
		return nil, postgres.PgxErrorToHTTPError(err)
	}

	return ownerIDs, nil
}

func (repo *EventRepository) Create(
	ctx context.Context,
	event *models.Event,
) error {
	query := `
		INSERT INTO calendar.events (id, owner_id, title, description,
		start_time, end_time, timezone, recurrence_pattern, recurrence_days, color)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`

	kind, days := patternColumns(event)

	err := repo.db.QueryRow(
		ctx,
		query,
		event.ID,
		event.OwnerID,
		event.Title,
		event.Description,
		event.Start,
		event.End,
		event.Timezone,
		kind,
		days,
		event.Color,
	).Scan(&event.CreatedAt, &event.UpdatedAt)
	if err != nil {
		return postgres.PgxErrorToHTTPError(err)
	}

	return nil
}

func (repo *EventRepository) Update(
	ctx context.Context,
	event *models.Event,
) error {
	query := `
		UPDATE calendar.events
		SET title = $2, description = $3, start_time = $4, end_time = $5,
		timezone = $6, recurrence_pattern = $7, recurrence_days = $8,
		color = $9, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`

	kind, days := patternColumns(event)

	err := repo.db.QueryRow(
		ctx,
		query,
		event.ID,
		event.Title,
		event.Description,
		event.Start,
		event.End,
		event.Timezone,
		kind,
		days,
		event.Color,
	).Scan(&event.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return database.ErrResourceNotFound
	}
	if err != nil {
		return postgres.PgxErrorToHTTPError(err)
	}

	return nil
}

// Delete removes the event. Its exceptions are removed by the foreign key.
func (repo *EventRepository) Delete(
	ctx context.Context,
	id string,
) error {
	query := `
		DELETE FROM calendar.events
		WHERE id = $1
	`

	result, err := repo.db.Exec(ctx, query, id)
	if err != nil {
		return postgres.PgxErrorToHTTPError(err)
	}

	rowsAffected := result.RowsAffected()
	if rowsAffected == 0 {
		return database.ErrResourceNotFound
	}

	return nil
}

// CreateMany stores events in one transaction.
func (repo *EventRepository) CreateMany(
	ctx context.Context,
	events []*models.Event,
) error {
	if len(events) == 0 {
		return nil
	}

	//nolint:exhaustruct //fields are optional
	tx, err := repo.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return postgres.PgxErrorToHTTPError(err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	query := `
		INSERT INTO calendar.events (id, owner_id, title, description,
		start_time, end_time, timezone, recurrence_pattern, recurrence_days, color)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	//nolint:exhaustruct //fields are optional
	b := &pgx.Batch{}
	for _, event := range events {
		kind, days := patternColumns(event)
		b.Queue(
			query,
			event.ID,
			event.OwnerID,
			event.Title,
			event.Description,
			event.Start,
			event.End,
			event.Timezone,
			kind,
			days,
			event.Color,
		)
	}

	err = tx.SendBatch(ctx, b).Close()
	if err != nil {
		return postgres.PgxErrorToHTTPError(err)
	}

	err = tx.Commit(ctx)
	if err != nil {
		return postgres.PgxErrorToHTTPError(err)
	}

	return nil
}
