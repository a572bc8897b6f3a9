package calendar

import (
	"fmt"
	"net/http"

	httptools "github.com/xdoubleu/essentia/v2/pkg/communication/httptools"
	"github.com/xdoubleu/essentia/v2/pkg/parse"
	"planner.xdoubleu.com/apps/calendar/internal/dtos"
	"planner.xdoubleu.com/apps/calendar/internal/timeutil"
)

func (app *Calendar) exceptionsRoutes(prefix string, mux *http.ServeMux) {
	mux.HandleFunc(
		fmt.Sprintf("GET %s/events/{id}/exceptions", prefix),
		app.Services.Auth.Access(app.listExceptionsHandler),
	)
	mux.HandleFunc(
		fmt.Sprintf("POST %s/events/{id}/exceptions", prefix),
		app.Services.Auth.Access(app.applyExceptionHandler),
	)
	mux.HandleFunc(
		fmt.Sprintf("DELETE %s/events/{id}/exceptions/{date}", prefix),
		app.Services.Auth.Access(app.removeExceptionHandler),
	)
}

func (app *Calendar) listExceptionsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parse.URLParam[string](r, "id", nil)
	if err != nil {
		panic(err)
	}

	user := getUser(r)

	exceptions, err := app.Services.Exceptions.List(r.Context(), id, user.ID)
	if err != nil {
		app.handleError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, dtos.NewExceptionDtos(exceptions))
}

func (app *Calendar) applyExceptionHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parse.URLParam[string](r, "id", nil)
	if err != nil {
		panic(err)
	}

	user := getUser(r)

	var applyExceptionDto dtos.ApplyExceptionDto

	err = httptools.ReadJSON(r.Body, &applyExceptionDto)
	if err != nil {
		httptools.BadRequestResponse(w, r, err)
		return
	}

	if ok, errs := applyExceptionDto.Validate(); !ok {
		httptools.FailedValidationResponse(w, r, errs)
		return
	}

	exception, err := app.Services.Exceptions.ApplyException(
		r.Context(),
		id,
		user.ID,
		&applyExceptionDto,
	)
	if err != nil {
		app.handleError(w, r, err)
		return
	}

	app.Services.WebSocket.NotifyChanged()
	app.writeJSON(w, r, http.StatusOK, dtos.NewExceptionDto(*exception))
}

func (app *Calendar) removeExceptionHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parse.URLParam[string](r, "id", nil)
	if err != nil {
		panic(err)
	}

	date, err := parse.URLParam[timeutil.Date](r, "date", parseDateParam)
	if err != nil {
		httptools.BadRequestResponse(w, r, err)
		return
	}

	user := getUser(r)

	err = app.Services.Exceptions.Remove(r.Context(), id, user.ID, date)
	if err != nil {
		app.handleError(w, r, err)
		return
	}

	app.Services.WebSocket.NotifyChanged()
	w.WriteHeader(http.StatusNoContent)
}
