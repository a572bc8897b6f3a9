package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/xdoubleu/essentia/v2/pkg/database"
	"github.com/xdoubleu/essentia/v2/pkg/database/postgres"
	"planner.xdoubleu.com/apps/calendar/internal/models"
)

type FeedRepository struct {
	db postgres.DB
}

func (repo *FeedRepository) GetByToken(
	ctx context.Context,
	token string,
) (*models.Feed, error) {
	query := `
		SELECT owner_id, name, created_at
		FROM calendar.feeds
		WHERE token = $1
	`

	//nolint:exhaustruct //other fields are assigned later
	feed := models.Feed{
		Token: token,
	}
	err := repo.db.QueryRow(ctx, query, token).Scan(
		&feed.OwnerID,
		&feed.Name,
		&feed.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, database.ErrResourceNotFound
	}
	if err != nil {
		return nil, postgres.PgxErrorToHTTPError(err)
	}

	return &feed, nil
}

func (repo *FeedRepository) GetByOwnerID(
	ctx context.Context,
	ownerID string,
) ([]models.Feed, error) {
	query := `
		SELECT token, name, created_at
		FROM calendar.feeds
		WHERE owner_id = $1
		ORDER BY created_at ASC
	`

	rows, err := repo.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, postgres.PgxErrorToHTTPError(err)
	}
	defer rows.Close()

	feeds := []models.Feed{}
	for rows.Next() {
		//nolint:exhaustruct //other fields are assigned later
		feed := models.Feed{
			OwnerID: ownerID,
		}

		err = rows.Scan(&feed.Token, &feed.Name, &feed.CreatedAt)
		if err != nil {
			return nil, postgres.PgxErrorToHTTPError(err)
		}

		feeds = append(feeds, feed)
	}

	if err = rows.Err(); err != nil {
		return nil, postgres.PgxErrorToHTTPError(err)
	}

	return feeds, nil
}

func (repo *FeedRepository) Create(
	ctx context.Context,
	feed *models.Feed,
) error {
	query := `
		INSERT INTO calendar.feeds (token, owner_id, name)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`

	err := repo.db.QueryRow(
		ctx,
		query,
		feed.Token,
		feed.OwnerID,
		feed.Name,
	).Scan(&feed.CreatedAt)
	if err != nil {
		return postgres.PgxErrorToHTTPError(err)
	}

	return nil
}

func (repo *FeedRepository) Delete(
	ctx context.Context,
	token string,
	ownerID string,
) error {
	query := `
		DELETE FROM calendar.feeds
		WHERE token = $1 AND owner_id = $2
	`

	result, err := repo.db.Exec(ctx, query, token, ownerID)
	if err != nil {
		return postgres.PgxErrorToHTTPError(err)
	}

	rowsAffected := result.RowsAffected()
	if rowsAffected == 0 {
		return database.ErrResourceNotFound
	}

	return nil
}
