package services

import (
	"bytes"
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"planner.xdoubleu.com/apps/calendar/internal/icsfeed"
	"planner.xdoubleu.com/apps/calendar/internal/models"
	"planner.xdoubleu.com/apps/calendar/internal/recurrence"
	"planner.xdoubleu.com/apps/calendar/internal/timeutil"
	"planner.xdoubleu.com/apps/calendar/pkg/remoteics"
)

type ImportService struct {
	logger          *slog.Logger
	defaultTimezone string
	events          EventStore
	exceptions      ExceptionStore
	detector        recurrence.Detector
	client          remoteics.Client
	locks           *ownerLocks
}

// ImportURL downloads the calendar published at rawURL and imports it.
func (service *ImportService) ImportURL(
	ctx context.Context,
	ownerID string,
	rawURL string,
) (*models.ImportResult, error) {
	data, err := service.client.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	return service.Import(ctx, ownerID, bytes.NewReader(data))
}

// Import creates an event for every VEVENT of the document that can be
// represented and does not overlap the calendar of ownerID. EXDATEs of
// imported recurring events are stored as deletion exceptions.
func (service *ImportService) Import(
	ctx context.Context,
	ownerID string,
	r io.Reader,
) (*models.ImportResult, error) {
	decoded, skipped, err := icsfeed.Decode(r, service.defaultTimezone)
	if err != nil {
		return nil, err
	}

	unlock := service.locks.lock(&ownerID)
	defer unlock()

	existing, err := service.events.GetAllWithExceptions(ctx, models.OwnedBy(ownerID))
	if err != nil {
		return nil, err
	}

	result := models.ImportResult{
		Created: []models.Event{},
		Skipped: skipped,
	}

	accepted := []*models.Event{}
	exceptions := []models.Exception{}

	for _, imported := range decoded {
		//nolint:exhaustruct //timestamps are set by the store
		event := models.Event{
			ID:          uuid.NewString(),
			OwnerID:     &ownerID,
			Title:       imported.Summary,
			Description: imported.Description,
			Start:       imported.Start,
			End:         imported.End,
			Timezone:    imported.Timezone,
			Pattern:     imported.Pattern,
		}

		if event.Title == "" {
			event.Title = "(untitled)"
		}

		if err = event.Validate(); err != nil {
			result.Skipped = append(result.Skipped, skip(imported, err))
			continue
		}

		conflict, found := service.detector.FindConflict(existing, event.Interval(), nil)
		if found {
			result.Skipped = append(
				result.Skipped,
				skip(imported, &models.ConflictError{Occurrence: conflict}),
			)
			continue
		}

		cancelled := service.cancelledExceptions(event, imported)

		accepted = append(accepted, &event)
		exceptions = append(exceptions, cancelled...)
		existing = append(existing, models.EventWithExceptions{
			Event:      event,
			Exceptions: cancelled,
		})
	}

	if err = service.events.CreateMany(ctx, accepted); err != nil {
		return nil, err
	}

	for i := range exceptions {
		if err = service.exceptions.Upsert(ctx, &exceptions[i]); err != nil {
			return nil, err
		}
	}

	for _, event := range accepted {
		result.Created = append(result.Created, *event)
	}

	service.logger.Info(
		"imported calendar",
		slog.String("owner", ownerID),
		slog.Int("created", len(result.Created)),
		slog.Int("skipped", len(result.Skipped)),
	)

	return &result, nil
}

func (service *ImportService) cancelledExceptions(
	event models.Event,
	imported icsfeed.Imported,
) []models.Exception {
	exceptions := []models.Exception{}
	seen := map[timeutil.Date]bool{}

	for _, t := range imported.Cancelled {
		if !recurrence.IsValidOccurrenceDate(event, t) {
			service.logger.Debug(
				"ignoring EXDATE without occurrence",
				slog.String("uid", imported.UID),
				slog.Time("exdate", t),
			)
			continue
		}

		date := timeutil.DateOf(t, event.Location())
		if seen[date] {
			continue
		}
		seen[date] = true

		//nolint:exhaustruct //deletions carry no new times
		exceptions = append(exceptions, models.Exception{
			ID:        uuid.NewString(),
			EventID:   event.ID,
			Date:      date,
			IsDeleted: true,
		})
	}

	return exceptions
}

func skip(imported icsfeed.Imported, err error) models.SkippedComponent {
	return models.SkippedComponent{
		UID:     imported.UID,
		Summary: imported.Summary,
		Reason:  err.Error(),
	}
}
