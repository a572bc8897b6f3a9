package services

import (
	"log/slog"
	"time"

	"github.com/xdoubleu/essentia/v2/pkg/logging"
	"github.com/xdoubleu/essentia/v2/pkg/threading"
	"planner.xdoubleu.com/apps/calendar/internal/recurrence"
	"planner.xdoubleu.com/apps/calendar/internal/timeutil"
	"planner.xdoubleu.com/apps/calendar/pkg/remoteics"
	"planner.xdoubleu.com/internal/auth"
	"planner.xdoubleu.com/internal/config"
)

type Services struct {
	Auth        auth.Service
	Events      *EventService
	Occurrences *OccurrenceService
	Exceptions  *ExceptionService
	Feeds       *FeedService
	Import      *ImportService
	WebSocket   *WebSocketService
}

// Stores groups the persistence the services depend on.
type Stores struct {
	Events     EventStore
	Exceptions ExceptionStore
	Feeds      FeedStore
}

func New(
	logger *slog.Logger,
	config config.Config,
	jobQueue *threading.JobQueue,
	stores Stores,
	remoteClient remoteics.Client,
	authService auth.Service,
) *Services {
	weekStart, err := timeutil.ParseWeekday(config.Calendar.WeekStart)
	if err != nil {
		logger.Warn("invalid week start, using monday", logging.ErrAttr(err))
		weekStart = time.Monday
	}

	locks := &ownerLocks{}

	generator := recurrence.NewGenerator(config.Calendar.ScanPaddingDays)
	detector := recurrence.NewDetector(generator, config.Calendar.ConflictPadding)

	occurrences := &OccurrenceService{
		logger:    logger,
		events:    stores.Events,
		generator: generator,
		detector:  detector,
		weekStart: weekStart,
	}
	events := &EventService{
		defaultTimezone: config.Calendar.DefaultTimezone,
		events:          stores.Events,
		occurrences:     occurrences,
		locks:           locks,
	}
	exceptions := &ExceptionService{
		logger:      logger,
		events:      events,
		exceptions:  stores.Exceptions,
		occurrences: occurrences,
		locks:       locks,
	}
	feeds := &FeedService{
		feeds:       stores.Feeds,
		occurrences: occurrences,
		horizon:     config.Calendar.FeedHorizon,
		now:         time.Now,
	}
	imports := &ImportService{
		logger:          logger,
		defaultTimezone: config.Calendar.DefaultTimezone,
		events:          stores.Events,
		exceptions:      stores.Exceptions,
		detector:        detector,
		client:          remoteClient,
		locks:           locks,
	}

	return &Services{
		Auth:        authService,
		Events:      events,
		Occurrences: occurrences,
		Exceptions:  exceptions,
		Feeds:       feeds,
		Import:      imports,
		WebSocket:   NewWebSocketService(logger, []string{config.WebURL}, jobQueue),
	}
}

// SetClock replaces the clock used to anchor feed windows.
func (services *Services) SetClock(now func() time.Time) {
	services.Feeds.now = now
}
