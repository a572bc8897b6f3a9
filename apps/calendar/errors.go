package calendar

import (
	"errors"
	"net/http"

	httptools "github.com/xdoubleu/essentia/v2/pkg/communication/httptools"
	"github.com/xdoubleu/essentia/v2/pkg/database"
	"planner.xdoubleu.com/apps/calendar/internal/dtos"
	"planner.xdoubleu.com/apps/calendar/internal/icsfeed"
	"planner.xdoubleu.com/apps/calendar/internal/models"
	"planner.xdoubleu.com/apps/calendar/internal/timeutil"
	"planner.xdoubleu.com/apps/calendar/pkg/remoteics"
)

//nolint:gochecknoglobals //lookup table
var unprocessableErrors = []error{
	models.ErrInvalidTimeRange,
	models.ErrInvalidRecurrenceRule,
	models.ErrInvalidOccurrenceReference,
	models.ErrInvalidException,
	timeutil.ErrUnknownZone,
	remoteics.ErrUnsupportedURL,
	remoteics.ErrPrivateHost,
	remoteics.ErrNoCalendar,
}

// handleError writes the response for errors of the calendar domain and
// leaves everything else to httptools.
func (app *Calendar) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var conflictErr *models.ConflictError
	if errors.As(err, &conflictErr) {
		conflict := dtos.NewOccurrenceDto(conflictErr.Occurrence)
		httptools.ErrorResponse(w, r, http.StatusConflict, dtos.ErrorDto{
			Message:  conflictErr.Error(),
			Conflict: &conflict,
		})
		return
	}

	if errors.Is(err, database.ErrResourceNotFound) {
		//nolint:exhaustruct //no conflict
		httptools.ErrorResponse(w, r, http.StatusNotFound, dtos.ErrorDto{
			Message: err.Error(),
		})
		return
	}

	for _, target := range unprocessableErrors {
		if errors.Is(err, target) {
			//nolint:exhaustruct //no conflict
			httptools.ErrorResponse(w, r, http.StatusUnprocessableEntity, dtos.ErrorDto{
				Message: err.Error(),
			})
			return
		}
	}

	if errors.Is(err, icsfeed.ErrMalformed) {
		//nolint:exhaustruct //no conflict
		httptools.ErrorResponse(w, r, http.StatusBadRequest, dtos.ErrorDto{
			Message: err.Error(),
		})
		return
	}

	httptools.HandleError(w, r, err)
}

func (app *Calendar) writeJSON(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	data any,
) {
	err := httptools.WriteJSON(w, status, data, nil)
	if err != nil {
		httptools.ServerErrorResponse(w, r, err)
	}
}
