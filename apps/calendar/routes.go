package calendar

import (
	"fmt"
	"net/http"
)

func (app *Calendar) apiRoutes(prefix string, mux *http.ServeMux) {
	apiPrefix := fmt.Sprintf("/%s/api", prefix)
	app.eventsRoutes(apiPrefix, mux)
	app.exceptionsRoutes(apiPrefix, mux)
	app.occurrencesRoutes(apiPrefix, mux)
	app.importRoutes(apiPrefix, mux)
	app.feedsRoutes(apiPrefix, mux)
	app.jobsRoutes(apiPrefix, mux)
}

func (app *Calendar) Routes(prefix string, mux *http.ServeMux) {
	app.templateRoutes(prefix, mux)
	app.apiRoutes(prefix, mux)
	app.publicFeedRoutes(prefix, mux)
}
