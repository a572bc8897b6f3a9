package calendar

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	httptools "github.com/xdoubleu/essentia/v2/pkg/communication/httptools"
	"github.com/xdoubleu/essentia/v2/pkg/contexttools"
	"github.com/xdoubleu/essentia/v2/pkg/parse"
	"planner.xdoubleu.com/apps/calendar/internal/dtos"
	"planner.xdoubleu.com/apps/calendar/internal/models"
	"planner.xdoubleu.com/apps/calendar/internal/timeutil"
	"planner.xdoubleu.com/internal/constants"
	sharedmodels "planner.xdoubleu.com/internal/models"
)

func (app *Calendar) eventsRoutes(prefix string, mux *http.ServeMux) {
	mux.HandleFunc(
		fmt.Sprintf("GET %s/events", prefix),
		app.Services.Auth.Access(app.listEventsHandler),
	)
	mux.HandleFunc(
		fmt.Sprintf("POST %s/events", prefix),
		app.Services.Auth.Access(app.createEventHandler),
	)
	mux.HandleFunc(
		fmt.Sprintf("GET %s/events/{id}", prefix),
		app.Services.Auth.Access(app.getEventHandler),
	)
	mux.HandleFunc(
		fmt.Sprintf("PATCH %s/events/{id}", prefix),
		app.Services.Auth.Access(app.updateEventHandler),
	)
	mux.HandleFunc(
		fmt.Sprintf("DELETE %s/events/{id}", prefix),
		app.Services.Auth.Access(app.deleteEventHandler),
	)
	mux.HandleFunc(
		fmt.Sprintf("GET %s/events/{id}/next", prefix),
		app.Services.Auth.Access(app.nextOccurrenceHandler),
	)
}

func getUser(r *http.Request) *sharedmodels.User {
	user := contexttools.GetValue[sharedmodels.User](r.Context(), constants.UserContextKey)
	if user == nil {
		panic(errors.New("not signed in"))
	}
	return user
}

func (app *Calendar) listEventsHandler(w http.ResponseWriter, r *http.Request) {
	user := getUser(r)

	events, err := app.Services.Events.List(r.Context(), models.OwnedBy(user.ID))
	if err != nil {
		app.handleError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, dtos.NewEventDtos(events))
}

func (app *Calendar) createEventHandler(w http.ResponseWriter, r *http.Request) {
	user := getUser(r)

	var createEventDto dtos.CreateEventDto

	err := httptools.ReadJSON(r.Body, &createEventDto)
	if err != nil {
		httptools.BadRequestResponse(w, r, err)
		return
	}

	if ok, errs := createEventDto.Validate(); !ok {
		httptools.FailedValidationResponse(w, r, errs)
		return
	}

	event, err := app.Services.Events.Create(r.Context(), &user.ID, &createEventDto)
	if err != nil {
		app.handleError(w, r, err)
		return
	}

	app.Services.WebSocket.NotifyChanged()
	app.writeJSON(w, r, http.StatusCreated, dtos.NewEventDto(*event))
}

func (app *Calendar) getEventHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parse.URLParam[string](r, "id", nil)
	if err != nil {
		panic(err)
	}

	user := getUser(r)

	event, err := app.Services.Events.Get(r.Context(), id, user.ID)
	if err != nil {
		app.handleError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, dtos.NewEventDto(*event))
}

func (app *Calendar) updateEventHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parse.URLParam[string](r, "id", nil)
	if err != nil {
		panic(err)
	}

	user := getUser(r)

	var updateEventDto dtos.UpdateEventDto

	err = httptools.ReadJSON(r.Body, &updateEventDto)
	if err != nil {
		httptools.BadRequestResponse(w, r, err)
		return
	}

	if ok, errs := updateEventDto.Validate(); !ok {
		httptools.FailedValidationResponse(w, r, errs)
		return
	}

	event, err := app.Services.Events.Update(r.Context(), id, user.ID, &updateEventDto)
	if err != nil {
		app.handleError(w, r, err)
		return
	}

	app.Services.WebSocket.NotifyChanged()
	app.writeJSON(w, r, http.StatusOK, dtos.NewEventDto(*event))
}

func (app *Calendar) deleteEventHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parse.URLParam[string](r, "id", nil)
	if err != nil {
		panic(err)
	}

	user := getUser(r)

	err = app.Services.Events.Delete(r.Context(), id, user.ID)
	if err != nil {
		app.handleError(w, r, err)
		return
	}

	app.Services.WebSocket.NotifyChanged()
	w.WriteHeader(http.StatusNoContent)
}

func (app *Calendar) nextOccurrenceHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parse.URLParam[string](r, "id", nil)
	if err != nil {
		panic(err)
	}

	afterValue, err := parse.QueryParam[string](r, "after", "", nil)
	if err != nil {
		httptools.BadRequestResponse(w, r, err)
		return
	}

	user := getUser(r)

	after := time.Now()
	if afterValue != "" {
		after, err = timeutil.ParseInstant(afterValue, time.UTC)
		if err != nil {
			httptools.BadRequestResponse(w, r, err)
			return
		}
	}

	occurrence, err := app.Services.Exceptions.NextOccurrence(r.Context(), id, user.ID, after)
	if err != nil {
		app.handleError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, dtos.NewOccurrenceDto(*occurrence))
}
