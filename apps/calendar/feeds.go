package calendar

import (
	"fmt"
	"net/http"
	"strings"

	httptools "github.com/xdoubleu/essentia/v2/pkg/communication/httptools"
	"github.com/xdoubleu/essentia/v2/pkg/parse"
	"planner.xdoubleu.com/apps/calendar/internal/dtos"
	"planner.xdoubleu.com/apps/calendar/internal/icsfeed"
)

func (app *Calendar) feedsRoutes(prefix string, mux *http.ServeMux) {
	mux.HandleFunc(
		fmt.Sprintf("GET %s/feeds", prefix),
		app.Services.Auth.Access(app.listFeedsHandler),
	)
	mux.HandleFunc(
		fmt.Sprintf("POST %s/feeds", prefix),
		app.Services.Auth.Access(app.createFeedHandler),
	)
	mux.HandleFunc(
		fmt.Sprintf("DELETE %s/feeds/{token}", prefix),
		app.Services.Auth.Access(app.deleteFeedHandler),
	)
}

// publicFeedRoutes serves subscriptions. The token is the only credential.
func (app *Calendar) publicFeedRoutes(prefix string, mux *http.ServeMux) {
	mux.HandleFunc(
		fmt.Sprintf("GET /%s/feeds/{file}", prefix),
		app.feedHandler,
	)
}

func (app *Calendar) feedBaseURL() string {
	return fmt.Sprintf("%s/%s/feeds", app.Config.WebURL, app.GetName())
}

func (app *Calendar) listFeedsHandler(w http.ResponseWriter, r *http.Request) {
	user := getUser(r)

	feeds, err := app.Services.Feeds.List(r.Context(), user.ID)
	if err != nil {
		app.handleError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, dtos.NewFeedDtos(feeds, app.feedBaseURL()))
}

func (app *Calendar) createFeedHandler(w http.ResponseWriter, r *http.Request) {
	user := getUser(r)

	var createFeedDto dtos.CreateFeedDto

	err := httptools.ReadJSON(r.Body, &createFeedDto)
	if err != nil {
		httptools.BadRequestResponse(w, r, err)
		return
	}

	if ok, errs := createFeedDto.Validate(); !ok {
		httptools.FailedValidationResponse(w, r, errs)
		return
	}

	feed, err := app.Services.Feeds.Create(r.Context(), user.ID, &createFeedDto)
	if err != nil {
		app.handleError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusCreated, dtos.NewFeedDto(*feed, app.feedBaseURL()))
}

func (app *Calendar) deleteFeedHandler(w http.ResponseWriter, r *http.Request) {
	token, err := parse.URLParam[string](r, "token", nil)
	if err != nil {
		panic(err)
	}

	user := getUser(r)

	err = app.Services.Feeds.Delete(r.Context(), token, user.ID)
	if err != nil {
		app.handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (app *Calendar) feedHandler(w http.ResponseWriter, r *http.Request) {
	file, err := parse.URLParam[string](r, "file", nil)
	if err != nil {
		panic(err)
	}

	token := strings.TrimSuffix(file, ".ics")

	document, err := app.Services.Feeds.Render(r.Context(), token)
	if err != nil {
		app.handleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", icsfeed.ContentType)
	_, err = w.Write([]byte(document))
	if err != nil {
		app.logger.Error("failed to write feed", "error", err)
	}
}
