package calendar

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	httptools "github.com/xdoubleu/essentia/v2/pkg/communication/httptools"
	"planner.xdoubleu.com/apps/calendar/internal/dtos"
)

const maxImportSize = 5 << 20

func (app *Calendar) importRoutes(prefix string, mux *http.ServeMux) {
	mux.HandleFunc(
		fmt.Sprintf("POST %s/import", prefix),
		app.Services.Auth.Access(app.importHandler),
	)
	mux.HandleFunc(
		fmt.Sprintf("POST %s/import/url", prefix),
		app.Services.Auth.Access(app.importURLHandler),
	)
}

// importHandler accepts the document as request body or as the "file"
// field of a multipart form.
func (app *Calendar) importHandler(w http.ResponseWriter, r *http.Request) {
	user := getUser(r)

	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)

	var document io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			httptools.BadRequestResponse(w, r, err)
			return
		}
		defer file.Close()

		document = file
	}

	result, err := app.Services.Import.Import(r.Context(), user.ID, document)
	if err != nil {
		app.handleError(w, r, err)
		return
	}

	if len(result.Created) > 0 {
		app.Services.WebSocket.NotifyChanged()
	}

	app.writeJSON(w, r, http.StatusOK, dtos.NewImportResultDto(*result))
}

func (app *Calendar) importURLHandler(w http.ResponseWriter, r *http.Request) {
	user := getUser(r)

	var importURLDto dtos.ImportURLDto

	err := httptools.ReadJSON(r.Body, &importURLDto)
	if err != nil {
		httptools.BadRequestResponse(w, r, err)
		return
	}

	if ok, errs := importURLDto.Validate(); !ok {
		httptools.FailedValidationResponse(w, r, errs)
		return
	}

	result, err := app.Services.Import.ImportURL(r.Context(), user.ID, importURLDto.URL)
	if err != nil {
		app.handleError(w, r, err)
		return
	}

	if len(result.Created) > 0 {
		app.Services.WebSocket.NotifyChanged()
	}

	app.writeJSON(w, r, http.StatusOK, dtos.NewImportResultDto(*result))
}
