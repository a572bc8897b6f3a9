package mocks

import (
	"context"
	"strings"

	"planner.xdoubleu.com/apps/calendar/pkg/remoteics"
)

// RemoteCalendar is served by MockRemoteClient for every url.
const RemoteCalendar = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//test//test//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:remote-retro\r\n" +
	"SUMMARY:Retro\r\n" +
	"DTSTART:20240105T150000Z\r\n" +
	"DTEND:20240105T160000Z\r\n" +
	"RRULE:FREQ=WEEKLY;BYDAY=FR\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

type MockRemoteClient struct {
}

func NewMockRemoteClient() remoteics.Client {
	return MockRemoteClient{}
}

func (client MockRemoteClient) Fetch(
	_ context.Context,
	rawURL string,
) ([]byte, error) {
	if !strings.HasPrefix(rawURL, "https://") {
		return nil, remoteics.ErrUnsupportedURL
	}
	return []byte(RemoteCalendar), nil
}
