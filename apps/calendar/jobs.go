package calendar

import (
	"fmt"
	"net/http"

	"github.com/xdoubleu/essentia/v2/pkg/parse"
)

func (app *Calendar) jobsRoutes(prefix string, mux *http.ServeMux) {
	mux.HandleFunc(
		fmt.Sprintf("GET %s/ws", prefix),
		app.Services.WebSocket.Handler(),
	)
	mux.HandleFunc(
		fmt.Sprintf("GET %s/jobs/{id}/refresh", prefix),
		app.Services.Auth.Access(app.refreshJobHandler),
	)
}

func (app *Calendar) refreshJobHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parse.URLParam[string](r, "id", nil)
	if err != nil {
		panic(err)
	}

	_, lastRunTime := app.jobQueue.FetchState(id)
	app.Services.WebSocket.UpdateState(id, true, lastRunTime)

	app.jobQueue.ForceRun(id)

	w.WriteHeader(http.StatusAccepted)
}
