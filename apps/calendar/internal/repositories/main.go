package repositories

import (
	"github.com/xdoubleu/essentia/v2/pkg/database/postgres"
)

type Repositories struct {
	Events     *EventRepository
	Exceptions *ExceptionRepository
	Feeds      *FeedRepository
}

func New(db postgres.DB) *Repositories {
	events := &EventRepository{db: db}
	exceptions := &ExceptionRepository{db: db}
	feeds := &FeedRepository{db: db}

	return &Repositories{
		Events:     events,
		Exceptions: exceptions,
		Feeds:      feeds,
	}
}
