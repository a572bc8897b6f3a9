package calendar_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	httptools "github.com/xdoubleu/essentia/v2/pkg/communication/httptools"
	"github.com/xdoubleu/essentia/v2/pkg/test"
	"planner.xdoubleu.com/apps/calendar/internal/dtos"
)

func TestListOccurrencesHandler(t *testing.T) {
	//nolint:exhaustruct //other fields are optional
	id := createEvent(t, dtos.CreateEventDto{
		Title:             "Standup",
		Start:             "2030-09-02T09:00:00Z",
		End:               "2030-09-02T09:15:00Z",
		RecurrencePattern: "weekly",
		RecurrenceDays:    []int{1, 3, 5},
	})

	_, err := testApp.Services.Exceptions.ApplyException(
		t.Context(),
		id,
		userID,
		//nolint:exhaustruct //deletion
		&dtos.ApplyExceptionDto{ExceptionDate: "2030-09-04", IsDeleted: true},
	)
	require.Nil(t, err)

	tReq := test.CreateRequestTester(
		getRoutes(),
		http.MethodGet,
		fmt.Sprintf(
			"/%s/api/occurrences?start=2030-09-02&end=2030-09-08&timezone=Europe/Brussels&scope=all",
			testApp.GetName(),
		),
	)
	tReq.AddCookie(&accessToken)

	rs := tReq.Do(t)
	require.Equal(t, http.StatusOK, rs.StatusCode)

	var occurrences []dtos.OccurrenceDto
	err = httptools.ReadJSON(rs.Body, &occurrences)
	require.Nil(t, err)

	dates := []string{}
	for _, occurrence := range occurrences {
		if occurrence.EventID == id {
			dates = append(dates, occurrence.Date.String())
		}
	}
	assert.Equal(t, []string{"2030-09-02", "2030-09-06"}, dates)
}

func TestListOccurrencesHandlerScopeAllHidesOtherUsers(t *testing.T) {
	otherUserID := "b3a0c2a4-61f2-4a7e-9d8e-3f0c7d2e1a55"

	//nolint:exhaustruct //other fields are optional
	mine := createEvent(t, dtos.CreateEventDto{
		Title: "Planning",
		Start: "2031-03-03T09:00:00Z",
		End:   "2031-03-03T10:00:00Z",
	})
	//nolint:exhaustruct //other fields are optional
	shared := createEventFor(t, nil, dtos.CreateEventDto{
		Title: "Office closed",
		Start: "2031-03-04T00:00:00Z",
		End:   "2031-03-05T00:00:00Z",
	})
	//nolint:exhaustruct //other fields are optional
	private := createEventFor(t, &otherUserID, dtos.CreateEventDto{
		Title: "Doctor",
		Start: "2031-03-05T14:00:00Z",
		End:   "2031-03-05T15:00:00Z",
	})

	tests := map[string][]string{
		"mine": {mine},
		"all":  {mine, shared},
	}

	for scope, expected := range tests {
		t.Run(scope, func(t *testing.T) {
			tReq := test.CreateRequestTester(
				getRoutes(),
				http.MethodGet,
				fmt.Sprintf(
					"/%s/api/occurrences?start=2031-03-03&end=2031-03-09&scope=%s",
					testApp.GetName(),
					scope,
				),
			)
			tReq.AddCookie(&accessToken)

			rs := tReq.Do(t)
			require.Equal(t, http.StatusOK, rs.StatusCode)

			var occurrences []dtos.OccurrenceDto
			err := httptools.ReadJSON(rs.Body, &occurrences)
			require.Nil(t, err)

			ids := []string{}
			for _, occurrence := range occurrences {
				assert.NotEqual(t, private, occurrence.EventID)
				ids = append(ids, occurrence.EventID)
			}
			assert.Equal(t, expected, ids)
		})
	}
}

func TestListOccurrencesHandlerInvertedWindow(t *testing.T) {
	tReq := test.CreateRequestTester(
		getRoutes(),
		http.MethodGet,
		fmt.Sprintf(
			"/%s/api/occurrences?start=2030-09-10&end=2030-09-01",
			testApp.GetName(),
		),
	)
	tReq.AddCookie(&accessToken)

	rs := tReq.Do(t)
	assert.Equal(t, http.StatusUnprocessableEntity, rs.StatusCode)
}

func TestListOccurrencesHandlerMissingStart(t *testing.T) {
	tReq := test.CreateRequestTester(
		getRoutes(),
		http.MethodGet,
		fmt.Sprintf("/%s/api/occurrences?end=2030-09-01", testApp.GetName()),
	)
	tReq.AddCookie(&accessToken)

	rs := tReq.Do(t)
	assert.Equal(t, http.StatusBadRequest, rs.StatusCode)
}

func TestListOccurrencesHandlerInvalidScope(t *testing.T) {
	tReq := test.CreateRequestTester(
		getRoutes(),
		http.MethodGet,
		fmt.Sprintf(
			"/%s/api/occurrences?start=2030-09-01&end=2030-09-02&scope=team",
			testApp.GetName(),
		),
	)
	tReq.AddCookie(&accessToken)

	rs := tReq.Do(t)
	assert.Equal(t, http.StatusBadRequest, rs.StatusCode)
}

func TestWeekHandler(t *testing.T) {
	//nolint:exhaustruct //other fields are optional
	createEvent(t, dtos.CreateEventDto{
		Title:             "Lunch",
		Start:             "2030-09-16T12:00:00Z",
		End:               "2030-09-16T13:00:00Z",
		RecurrencePattern: "daily",
	})

	tReq := test.CreateRequestTester(
		getRoutes(),
		http.MethodGet,
		fmt.Sprintf("/%s/api/week?date=2030-09-18", testApp.GetName()),
	)
	tReq.AddCookie(&accessToken)

	rs := tReq.Do(t)
	require.Equal(t, http.StatusOK, rs.StatusCode)

	var week dtos.WeekDto
	err := httptools.ReadJSON(rs.Body, &week)
	require.Nil(t, err)

	require.Len(t, week.Days, 7)
	assert.Equal(t, "2030-09-16", week.Days[0].Date.String())
	for _, day := range week.Days {
		assert.NotEmpty(t, day.Occurrences)
	}
}

func TestCheckConflictHandler(t *testing.T) {
	//nolint:exhaustruct //other fields are optional
	id := createEvent(t, dtos.CreateEventDto{
		Title:             "Class",
		Start:             "2030-10-01T18:00:00Z",
		End:               "2030-10-01T20:00:00Z",
		RecurrencePattern: "weekly",
		RecurrenceDays:    []int{2},
	})

	tests := map[string]struct {
		dto      dtos.ConflictCheckDto
		conflict bool
	}{
		"overlapping": {
			//nolint:exhaustruct //other fields are optional
			dto: dtos.ConflictCheckDto{
				Start: "2030-10-08T19:00:00Z",
				End:   "2030-10-08T21:00:00Z",
			},
			conflict: true,
		},
		"touching": {
			//nolint:exhaustruct //other fields are optional
			dto: dtos.ConflictCheckDto{
				Start: "2030-10-08T20:00:00Z",
				End:   "2030-10-08T21:00:00Z",
			},
			conflict: false,
		},
		"excluded": {
			dto: dtos.ConflictCheckDto{
				Start:          "2030-10-08T19:00:00Z",
				End:            "2030-10-08T21:00:00Z",
				Timezone:       "UTC",
				ExcludeEventID: &id,
			},
			conflict: false,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			tReq := test.CreateRequestTester(
				getRoutes(),
				http.MethodPost,
				fmt.Sprintf("/%s/api/conflicts", testApp.GetName()),
			)
			tReq.AddCookie(&accessToken)
			tReq.SetData(tt.dto)

			rs := tReq.Do(t)
			require.Equal(t, http.StatusOK, rs.StatusCode)

			var result dtos.ConflictResultDto
			err := httptools.ReadJSON(rs.Body, &result)
			require.Nil(t, err)
			assert.Equal(t, tt.conflict, result.HasConflict)
		})
	}
}
