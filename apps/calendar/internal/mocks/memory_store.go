package mocks

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/xdoubleu/essentia/v2/pkg/database"
	"planner.xdoubleu.com/apps/calendar/internal/models"
	"planner.xdoubleu.com/apps/calendar/internal/timeutil"
)

// MemoryCalendar keeps events, exceptions and feeds in memory. Its stores
// behave like the postgres repositories, including the cascade from events
// to their exceptions.
type MemoryCalendar struct {
	mu         sync.RWMutex
	events     map[string]models.Event
	exceptions map[string][]models.Exception
	feeds      map[string]models.Feed

	Events     *MockEventStore
	Exceptions *MockExceptionStore
	Feeds      *MockFeedStore
}

type MockEventStore struct {
	calendar *MemoryCalendar
}

type MockExceptionStore struct {
	calendar *MemoryCalendar
}

type MockFeedStore struct {
	calendar *MemoryCalendar
}

func NewMemoryCalendar() *MemoryCalendar {
	calendar := &MemoryCalendar{
		mu:         sync.RWMutex{},
		events:     make(map[string]models.Event),
		exceptions: make(map[string][]models.Exception),
		feeds:      make(map[string]models.Feed),
		Events:     nil,
		Exceptions: nil,
		Feeds:      nil,
	}

	calendar.Events = &MockEventStore{calendar: calendar}
	calendar.Exceptions = &MockExceptionStore{calendar: calendar}
	calendar.Feeds = &MockFeedStore{calendar: calendar}

	return calendar
}

// AddException stores exception as is, without the uniqueness check of
// Upsert, so that duplicates can be simulated.
func (calendar *MemoryCalendar) AddException(exception models.Exception) {
	calendar.mu.Lock()
	defer calendar.mu.Unlock()

	calendar.exceptions[exception.EventID] = append(
		calendar.exceptions[exception.EventID],
		exception,
	)
}

func (calendar *MemoryCalendar) sortedEvents(filter models.OwnerFilter) []models.Event {
	events := []models.Event{}
	for _, event := range calendar.events {
		if !filter.Matches(event.OwnerID) {
			continue
		}
		events = append(events, event)
	}

	slices.SortFunc(events, func(a, b models.Event) int {
		return cmp.Or(a.Start.Compare(b.Start), cmp.Compare(a.ID, b.ID))
	})

	return events
}

func (store *MockEventStore) GetByID(
	_ context.Context,
	id string,
) (*models.Event, error) {
	store.calendar.mu.RLock()
	defer store.calendar.mu.RUnlock()

	event, ok := store.calendar.events[id]
	if !ok {
		return nil, database.ErrResourceNotFound
	}

	return &event, nil
}

func (store *MockEventStore) GetAll(
	_ context.Context,
	filter models.OwnerFilter,
) ([]models.Event, error) {
	store.calendar.mu.RLock()
	defer store.calendar.mu.RUnlock()

	return store.calendar.sortedEvents(filter), nil
}

func (store *MockEventStore) GetAllWithExceptions(
	_ context.Context,
	filter models.OwnerFilter,
) ([]models.EventWithExceptions, error) {
	store.calendar.mu.RLock()
	defer store.calendar.mu.RUnlock()

	result := []models.EventWithExceptions{}
	for _, event := range store.calendar.sortedEvents(filter) {
		result = append(result, models.EventWithExceptions{
			Event:      event,
			Exceptions: slices.Clone(store.calendar.exceptions[event.ID]),
		})
	}

	return result, nil
}

func (store *MockEventStore) GetOwnerIDs(_ context.Context) ([]string, error) {
	store.calendar.mu.RLock()
	defer store.calendar.mu.RUnlock()

	owners := []string{}
	for _, event := range store.calendar.events {
		if event.OwnerID != nil && !slices.Contains(owners, *event.OwnerID) {
			owners = append(owners, *event.OwnerID)
		}
	}
	slices.Sort(owners)

	return owners, nil
}

func (store *MockEventStore) Create(
	_ context.Context,
	event *models.Event,
) error {
	store.calendar.mu.Lock()
	defer store.calendar.mu.Unlock()

	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now
	store.calendar.events[event.ID] = *event

	return nil
}

func (store *MockEventStore) CreateMany(
	ctx context.Context,
	events []*models.Event,
) error {
	for _, event := range events {
		if err := store.Create(ctx, event); err != nil {
			return err
		}
	}

	return nil
}

func (store *MockEventStore) Update(
	_ context.Context,
	event *models.Event,
) error {
	store.calendar.mu.Lock()
	defer store.calendar.mu.Unlock()

	if _, ok := store.calendar.events[event.ID]; !ok {
		return database.ErrResourceNotFound
	}

	event.UpdatedAt = time.Now().UTC()
	store.calendar.events[event.ID] = *event

	return nil
}

func (store *MockEventStore) Delete(_ context.Context, id string) error {
	store.calendar.mu.Lock()
	defer store.calendar.mu.Unlock()

	if _, ok := store.calendar.events[id]; !ok {
		return database.ErrResourceNotFound
	}

	delete(store.calendar.events, id)
	delete(store.calendar.exceptions, id)

	return nil
}

func (store *MockExceptionStore) GetByEventID(
	_ context.Context,
	eventID string,
) ([]models.Exception, error) {
	store.calendar.mu.RLock()
	defer store.calendar.mu.RUnlock()

	exceptions := slices.Clone(store.calendar.exceptions[eventID])
	if exceptions == nil {
		exceptions = []models.Exception{}
	}

	slices.SortStableFunc(exceptions, func(a, b models.Exception) int {
		return a.Date.Compare(b.Date)
	})

	return exceptions, nil
}

func (store *MockExceptionStore) Upsert(
	_ context.Context,
	exception *models.Exception,
) error {
	store.calendar.mu.Lock()
	defer store.calendar.mu.Unlock()

	if _, ok := store.calendar.events[exception.EventID]; !ok {
		return database.ErrResourceNotFound
	}

	exceptions := store.calendar.exceptions[exception.EventID]
	for i, existing := range exceptions {
		if existing.Date != exception.Date {
			continue
		}

		exception.ID = existing.ID
		exception.CreatedAt = existing.CreatedAt
		exceptions[i] = *exception
		return nil
	}

	exception.CreatedAt = time.Now().UTC()
	store.calendar.exceptions[exception.EventID] = append(exceptions, *exception)

	return nil
}

func (store *MockExceptionStore) Delete(
	_ context.Context,
	eventID string,
	date timeutil.Date,
) error {
	store.calendar.mu.Lock()
	defer store.calendar.mu.Unlock()

	exceptions := store.calendar.exceptions[eventID]
	remaining := slices.DeleteFunc(slices.Clone(exceptions), func(e models.Exception) bool {
		return e.Date == date
	})

	if len(remaining) == len(exceptions) {
		return database.ErrResourceNotFound
	}

	store.calendar.exceptions[eventID] = remaining

	return nil
}

func (store *MockExceptionStore) DeleteByIDs(
	_ context.Context,
	ids []string,
) error {
	store.calendar.mu.Lock()
	defer store.calendar.mu.Unlock()

	for eventID, exceptions := range store.calendar.exceptions {
		store.calendar.exceptions[eventID] = slices.DeleteFunc(
			exceptions,
			func(e models.Exception) bool {
				return slices.Contains(ids, e.ID)
			},
		)
	}

	return nil
}

func (store *MockFeedStore) GetByToken(
	_ context.Context,
	token string,
) (*models.Feed, error) {
	store.calendar.mu.RLock()
	defer store.calendar.mu.RUnlock()

	feed, ok := store.calendar.feeds[token]
	if !ok {
		return nil, database.ErrResourceNotFound
	}

	return &feed, nil
}

func (store *MockFeedStore) GetByOwnerID(
	_ context.Context,
	ownerID string,
) ([]models.Feed, error) {
	store.calendar.mu.RLock()
	defer store.calendar.mu.RUnlock()

	feeds := []models.Feed{}
	for _, feed := range store.calendar.feeds {
		if feed.OwnerID == ownerID {
			feeds = append(feeds, feed)
		}
	}

	slices.SortFunc(feeds, func(a, b models.Feed) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.Token, b.Token))
	})

	return feeds, nil
}

func (store *MockFeedStore) Create(
	_ context.Context,
	feed *models.Feed,
) error {
	store.calendar.mu.Lock()
	defer store.calendar.mu.Unlock()

	feed.CreatedAt = time.Now().UTC()
	store.calendar.feeds[feed.Token] = *feed

	return nil
}

func (store *MockFeedStore) Delete(
	_ context.Context,
	token string,
	ownerID string,
) error {
	store.calendar.mu.Lock()
	defer store.calendar.mu.Unlock()

	feed, ok := store.calendar.feeds[token]
	if !ok || feed.OwnerID != ownerID {
		return database.ErrResourceNotFound
	}

	delete(store.calendar.feeds, token)

	return nil
}
