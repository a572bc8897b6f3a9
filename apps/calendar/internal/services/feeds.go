package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"planner.xdoubleu.com/apps/calendar/internal/dtos"
	"planner.xdoubleu.com/apps/calendar/internal/icsfeed"
	"planner.xdoubleu.com/apps/calendar/internal/models"
)

type FeedService struct {
	feeds       FeedStore
	occurrences *OccurrenceService
	horizon     time.Duration
	now         func() time.Time
}

func (service *FeedService) Create(
	ctx context.Context,
	ownerID string,
	createFeedDto *dtos.CreateFeedDto,
) (*models.Feed, error) {
	//nolint:exhaustruct //created_at is set by the store
	feed := models.Feed{
		Token:   strings.ReplaceAll(uuid.NewString(), "-", ""),
		OwnerID: ownerID,
		Name:    createFeedDto.Name,
	}

	if err := service.feeds.Create(ctx, &feed); err != nil {
		return nil, err
	}

	return &feed, nil
}

func (service *FeedService) List(
	ctx context.Context,
	ownerID string,
) ([]models.Feed, error) {
	return service.feeds.GetByOwnerID(ctx, ownerID)
}

func (service *FeedService) Delete(
	ctx context.Context,
	token string,
	ownerID string,
) error {
	return service.feeds.Delete(ctx, token, ownerID)
}

// Render returns the iCalendar document of the feed with the given token,
// covering the occurrences of its owner from now until the horizon.
func (service *FeedService) Render(
	ctx context.Context,
	token string,
) (string, error) {
	feed, err := service.feeds.GetByToken(ctx, token)
	if err != nil {
		return "", err
	}

	now := service.now().UTC()
	occurrences, err := service.occurrences.GetOccurrences(
		ctx,
		models.OwnedBy(feed.OwnerID),
		models.Interval{Start: now, End: now.Add(service.horizon)},
		time.UTC,
	)
	if err != nil {
		return "", err
	}

	return icsfeed.Encode(feed.Name, occurrences, now), nil
}
