package services

import (
	"context"

	"planner.xdoubleu.com/apps/calendar/internal/models"
	"planner.xdoubleu.com/apps/calendar/internal/timeutil"
)

// EventStore is implemented by repositories.EventRepository and by the
// in-memory store in mocks.
type EventStore interface {
	GetByID(ctx context.Context, id string) (*models.Event, error)
	GetAll(ctx context.Context, filter models.OwnerFilter) ([]models.Event, error)
	GetAllWithExceptions(
		ctx context.Context,
		filter models.OwnerFilter,
	) ([]models.EventWithExceptions, error)
	GetOwnerIDs(ctx context.Context) ([]string, error)
	Create(ctx context.Context, event *models.Event) error
	CreateMany(ctx context.Context, events []*models.Event) error
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id string) error
}

type ExceptionStore interface {
	GetByEventID(ctx context.Context, eventID string) ([]models.Exception, error)
	Upsert(ctx context.Context, exception *models.Exception) error
	Delete(ctx context.Context, eventID string, date timeutil.Date) error
	DeleteByIDs(ctx context.Context, ids []string) error
}

type FeedStore interface {
	GetByToken(ctx context.Context, token string) (*models.Feed, error)
	GetByOwnerID(ctx context.Context, ownerID string) ([]models.Feed, error)
	Create(ctx context.Context, feed *models.Feed) error
	Delete(ctx context.Context, token string, ownerID string) error
}
