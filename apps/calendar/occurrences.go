package calendar

import (
	"fmt"
	"net/http"
	"time"

	httptools "github.com/xdoubleu/essentia/v2/pkg/communication/httptools"
	"github.com/xdoubleu/essentia/v2/pkg/parse"
	"planner.xdoubleu.com/apps/calendar/internal/dtos"
	"planner.xdoubleu.com/apps/calendar/internal/models"
	"planner.xdoubleu.com/apps/calendar/internal/timeutil"
)

const (
	scopeMine = "mine"
	scopeAll  = "all"
)

func (app *Calendar) occurrencesRoutes(prefix string, mux *http.ServeMux) {
	mux.HandleFunc(
		fmt.Sprintf("GET %s/occurrences", prefix),
		app.Services.Auth.Access(app.listOccurrencesHandler),
	)
	mux.HandleFunc(
		fmt.Sprintf("GET %s/week", prefix),
		app.Services.Auth.Access(app.weekHandler),
	)
	mux.HandleFunc(
		fmt.Sprintf("POST %s/conflicts", prefix),
		app.Services.Auth.Access(app.checkConflictHandler),
	)
}

// viewerZone reads the timezone query parameter, falling back to the
// configured default zone.
func (app *Calendar) viewerZone(r *http.Request) (*time.Location, error) {
	zone, err := parse.QueryParam[string](r, "timezone", "", nil)
	if err != nil {
		return nil, err
	}

	if zone == "" {
		zone = app.Config.Calendar.DefaultTimezone
	}

	return timeutil.LoadZone(zone)
}

func parseDateParam(_ string, paramName string, value string) (timeutil.Date, error) {
	date, err := timeutil.ParseDate(value)
	if err != nil {
		return timeutil.Date{}, fmt.Errorf("invalid %s: %w", paramName, err)
	}
	return date, nil
}

// parseWindow reads a closed window. A bare date as end covers that whole day.
func parseWindow(startValue, endValue string, loc *time.Location) (models.Interval, error) {
	start, err := timeutil.ParseInstant(startValue, loc)
	if err != nil {
		return models.Interval{}, fmt.Errorf("%w: start: %w", models.ErrInvalidTimeRange, err)
	}

	var end time.Time
	if day, dateErr := timeutil.ParseDate(endValue); dateErr == nil {
		end = day.AddDays(1).StartIn(loc).Add(-time.Nanosecond)
	} else {
		end, err = timeutil.ParseInstant(endValue, loc)
		if err != nil {
			return models.Interval{}, fmt.Errorf("%w: end: %w", models.ErrInvalidTimeRange, err)
		}
	}

	return models.Interval{Start: start, End: end}, nil
}

func (app *Calendar) listOccurrencesHandler(w http.ResponseWriter, r *http.Request) {
	user := getUser(r)

	loc, err := app.viewerZone(r)
	if err != nil {
		app.handleError(w, r, err)
		return
	}

	startValue, err := parse.RequiredQueryParam[string](r, "start", nil)
	if err != nil {
		httptools.BadRequestResponse(w, r, err)
		return
	}

	endValue, err := parse.RequiredQueryParam[string](r, "end", nil)
	if err != nil {
		httptools.BadRequestResponse(w, r, err)
		return
	}

	window, err := parseWindow(startValue, endValue, loc)
	if err != nil {
		app.handleError(w, r, err)
		return
	}

	scope, err := parse.QueryParam[string](r, "scope", scopeMine, nil)
	if err != nil {
		httptools.BadRequestResponse(w, r, err)
		return
	}

	var filter models.OwnerFilter
	switch scope {
	case scopeMine:
		filter = models.OwnedBy(user.ID)
	case scopeAll:
		filter = models.VisibleTo(user.ID)
	default:
		httptools.BadRequestResponse(
			w,
			r,
			fmt.Errorf("invalid scope %q, expected %q or %q", scope, scopeMine, scopeAll),
		)
		return
	}

	occurrences, err := app.Services.Occurrences.GetOccurrences(
		r.Context(),
		filter,
		window,
		loc,
	)
	if err != nil {
		app.handleError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, dtos.NewOccurrenceDtos(occurrences))
}

func (app *Calendar) weekHandler(w http.ResponseWriter, r *http.Request) {
	user := getUser(r)

	loc, err := app.viewerZone(r)
	if err != nil {
		app.handleError(w, r, err)
		return
	}

	day, err := parse.QueryParam(r, "date", timeutil.DateOf(time.Now(), loc), parseDateParam)
	if err != nil {
		httptools.BadRequestResponse(w, r, err)
		return
	}

	week, err := app.Services.Occurrences.GetWeek(r.Context(), models.OwnedBy(user.ID), day, loc)
	if err != nil {
		app.handleError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, dtos.NewWeekDto(*week))
}

func (app *Calendar) checkConflictHandler(w http.ResponseWriter, r *http.Request) {
	user := getUser(r)

	var conflictCheckDto dtos.ConflictCheckDto

	err := httptools.ReadJSON(r.Body, &conflictCheckDto)
	if err != nil {
		httptools.BadRequestResponse(w, r, err)
		return
	}

	if ok, errs := conflictCheckDto.Validate(); !ok {
		httptools.FailedValidationResponse(w, r, errs)
		return
	}

	zone := conflictCheckDto.Timezone
	if zone == "" {
		zone = app.Config.Calendar.DefaultTimezone
	}

	loc, err := timeutil.LoadZone(zone)
	if err != nil {
		app.handleError(w, r, err)
		return
	}

	start, err := timeutil.ParseInstant(conflictCheckDto.Start, loc)
	if err != nil {
		app.handleError(w, r, fmt.Errorf("%w: start: %w", models.ErrInvalidTimeRange, err))
		return
	}

	end, err := timeutil.ParseInstant(conflictCheckDto.End, loc)
	if err != nil {
		app.handleError(w, r, fmt.Errorf("%w: end: %w", models.ErrInvalidTimeRange, err))
		return
	}

	conflict, err := app.Services.Occurrences.CheckConflict(
		r.Context(),
		user.ID,
		models.Interval{Start: start, End: end},
		conflictCheckDto.ExcludeEventID,
	)
	if err != nil {
		app.handleError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, dtos.NewConflictResultDto(conflict))
}
