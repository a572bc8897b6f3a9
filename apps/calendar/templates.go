package calendar

import (
	"fmt"
	"html/template"
	"net/http"
	"time"

	httptools "github.com/xdoubleu/essentia/v2/pkg/communication/httptools"
	"github.com/xdoubleu/essentia/v2/pkg/parse"
	tpltools "github.com/xdoubleu/essentia/v2/pkg/tpl"
	"planner.xdoubleu.com/apps/calendar/internal/dtos"
	"planner.xdoubleu.com/apps/calendar/internal/models"
	"planner.xdoubleu.com/apps/calendar/internal/timeutil"
)

//nolint:gochecknoglobals //template helpers
var templateFuncs = template.FuncMap{
	"clock": func(t time.Time) string {
		return t.Format("15:04")
	},
	"dayLabel": func(d timeutil.Date) string {
		return d.Time().Format("Mon 2 Jan")
	},
}

func (app *Calendar) templateRoutes(prefix string, mux *http.ServeMux) {
	mux.HandleFunc(
		fmt.Sprintf("GET /%s/{$}", prefix),
		app.Services.Auth.TemplateAccess(app.rootHandler),
	)
	mux.HandleFunc(
		fmt.Sprintf("GET /%s/events/new", prefix),
		app.Services.Auth.TemplateAccess(app.newEventHandler),
	)
	mux.HandleFunc(
		fmt.Sprintf("POST /%s/events/new", prefix),
		app.Services.Auth.TemplateAccess(app.submitEventHandler),
	)
	mux.HandleFunc(
		fmt.Sprintf("POST /%s/events/{id}/delete", prefix),
		app.Services.Auth.TemplateAccess(app.submitDeleteEventHandler),
	)
	mux.HandleFunc(
		fmt.Sprintf("POST /%s/events/{id}/cancel/{date}", prefix),
		app.Services.Auth.TemplateAccess(app.submitCancelOccurrenceHandler),
	)
	mux.HandleFunc(
		fmt.Sprintf("GET /%s/subscriptions", prefix),
		app.Services.Auth.TemplateAccess(app.subscriptionsHandler),
	)
	mux.HandleFunc(
		fmt.Sprintf("POST /%s/subscriptions", prefix),
		app.Services.Auth.TemplateAccess(app.submitSubscriptionHandler),
	)
}

type DayView struct {
	models.Day
	IsToday bool
}

type WeekTemplateData struct {
	Prefix   string
	Timezone string
	Previous timeutil.Date
	Next     timeutil.Date
	Days     []DayView
}

func (app *Calendar) rootHandler(w http.ResponseWriter, r *http.Request) {
	user := getUser(r)

	loc, err := app.viewerZone(r)
	if err != nil {
		loc = time.UTC
	}

	now := time.Now()

	day, err := parse.QueryParam(r, "date", timeutil.DateOf(now, loc), parseDateParam)
	if err != nil {
		panic(err)
	}

	week, err := app.Services.Occurrences.GetWeek(r.Context(), models.OwnedBy(user.ID), day, loc)
	if err != nil {
		panic(err)
	}

	//nolint:mnd //days in a week
	data := WeekTemplateData{
		Prefix:   app.GetName(),
		Timezone: week.Timezone,
		Previous: day.AddDays(-7),
		Next:     day.AddDays(7),
		Days:     make([]DayView, 0, len(week.Days)),
	}

	for _, d := range week.Days {
		data.Days = append(data.Days, DayView{
			Day:     d,
			IsToday: d.IsToday(now, loc),
		})
	}

	tpltools.RenderWithPanic(app.tpl, w, "week.html", data)
}

func (app *Calendar) newEventHandler(w http.ResponseWriter, _ *http.Request) {
	tpltools.RenderWithPanic(app.tpl, w, "event.html", map[string]any{
		"Prefix":   app.GetName(),
		"Timezone": app.Config.Calendar.DefaultTimezone,
		"Weekdays": []time.Weekday{
			time.Monday,
			time.Tuesday,
			time.Wednesday,
			time.Thursday,
			time.Friday,
			time.Saturday,
			time.Sunday,
		},
	})
}

func (app *Calendar) submitEventHandler(w http.ResponseWriter, r *http.Request) {
	user := getUser(r)
	formURL := fmt.Sprintf("/%s/events/new", app.GetName())

	var createEventDto dtos.CreateEventDto

	err := httptools.ReadForm(r, &createEventDto)
	if err != nil {
		httptools.RedirectWithError(w, r, formURL, err)
		return
	}

	if ok, errs := createEventDto.Validate(); !ok {
		httptools.FailedValidationResponse(w, r, errs)
		return
	}

	event, err := app.Services.Events.Create(r.Context(), &user.ID, &createEventDto)
	if err != nil {
		httptools.RedirectWithError(w, r, formURL, err)
		return
	}

	app.Services.WebSocket.NotifyChanged()

	http.Redirect(
		w,
		r,
		fmt.Sprintf("/%s/?date=%s", app.GetName(), event.StartDate()),
		http.StatusSeeOther,
	)
}

func (app *Calendar) submitDeleteEventHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parse.URLParam[string](r, "id", nil)
	if err != nil {
		panic(err)
	}

	user := getUser(r)

	err = app.Services.Events.Delete(r.Context(), id, user.ID)
	if err != nil {
		httptools.RedirectWithError(w, r, fmt.Sprintf("/%s/", app.GetName()), err)
		return
	}

	app.Services.WebSocket.NotifyChanged()

	http.Redirect(w, r, fmt.Sprintf("/%s/", app.GetName()), http.StatusSeeOther)
}

func (app *Calendar) submitCancelOccurrenceHandler(
	w http.ResponseWriter,
	r *http.Request,
) {
	id, err := parse.URLParam[string](r, "id", nil)
	if err != nil {
		panic(err)
	}

	date, err := parse.URLParam[timeutil.Date](r, "date", parseDateParam)
	if err != nil {
		panic(err)
	}

	user := getUser(r)
	weekURL := fmt.Sprintf("/%s/?date=%s", app.GetName(), date)

	//nolint:exhaustruct //deletion
	_, err = app.Services.Exceptions.ApplyException(
		r.Context(),
		id,
		user.ID,
		&dtos.ApplyExceptionDto{ExceptionDate: date.String(), IsDeleted: true},
	)
	if err != nil {
		httptools.RedirectWithError(w, r, weekURL, err)
		return
	}

	app.Services.WebSocket.NotifyChanged()

	http.Redirect(w, r, weekURL, http.StatusSeeOther)
}

func (app *Calendar) subscriptionsHandler(w http.ResponseWriter, r *http.Request) {
	user := getUser(r)

	feeds, err := app.Services.Feeds.List(r.Context(), user.ID)
	if err != nil {
		panic(err)
	}

	tpltools.RenderWithPanic(app.tpl, w, "subscriptions.html", map[string]any{
		"Prefix": app.GetName(),
		"Feeds":  dtos.NewFeedDtos(feeds, app.feedBaseURL()),
	})
}

func (app *Calendar) submitSubscriptionHandler(w http.ResponseWriter, r *http.Request) {
	user := getUser(r)
	pageURL := fmt.Sprintf("/%s/subscriptions", app.GetName())

	var createFeedDto dtos.CreateFeedDto

	err := httptools.ReadForm(r, &createFeedDto)
	if err != nil {
		httptools.RedirectWithError(w, r, pageURL, err)
		return
	}

	if ok, errs := createFeedDto.Validate(); !ok {
		httptools.FailedValidationResponse(w, r, errs)
		return
	}

	_, err = app.Services.Feeds.Create(r.Context(), user.ID, &createFeedDto)
	if err != nil {
		httptools.RedirectWithError(w, r, pageURL, err)
		return
	}

	http.Redirect(w, r, pageURL, http.StatusSeeOther)
}
