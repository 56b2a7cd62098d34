package standingsapi

import (
	"errors"
	"mime"
	"net/http"
	"strings"

	standingsservice "github.com/Black-And-White-Club/tabroom/app/modules/standings/application"
	standingsdomain "github.com/Black-And-White-Club/tabroom/app/modules/standings/domain"
	"github.com/go-chi/chi/v5"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (a *API) getStandings(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	standings, err := a.service.GetStandings(r.Context(), eventID)
	if err != nil {
		a.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"event_id": eventID, "standings": standings})
}

func (a *API) getTiers(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	var names []string
	if raw := r.URL.Query().Get("order"); raw != "" {
		names = strings.Split(raw, ",")
	}

	tiers, err := a.service.GetTiers(r.Context(), eventID, names)
	if err != nil {
		a.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"event_id": eventID, "tiers": tiers})
}

func (a *API) comparePair(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	left, right := q.Get("a"), q.Get("b")
	if left == "" || right == "" {
		a.errorResponse(w, http.StatusBadRequest, "query parameters a and b are required")
		return
	}

	exp, err := a.service.ExplainPair(r.Context(), chi.URLParam(r, "eventID"), left, right)
	if err != nil {
		a.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, exp)
}

func (a *API) exportXLSX(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	data, err := a.service.ExportStandingsXLSX(r.Context(), eventID)
	if err != nil {
		a.serviceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": "standings-" + eventID + ".xlsx"})
	if disposition == "" {
		disposition = "attachment"
	}
	w.Header().Set("Content-Disposition", disposition)
	if _, err := w.Write(data); err != nil {
		a.logWriteError(r, err)
	}
}

func (a *API) speakerChart(w http.ResponseWriter, r *http.Request) {
	img, err := a.service.SpeakerChart(r.Context(), chi.URLParam(r, "eventID"), chi.URLParam(r, "registrationID"))
	if err != nil {
		a.serviceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(img); err != nil {
		a.logWriteError(r, err)
	}
}

func (a *API) configureEvent(w http.ResponseWriter, r *http.Request) {
	var setup standingsservice.EventSetup
	if err := readJSON(w, r, &setup); err != nil {
		a.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	eventID := chi.URLParam(r, "eventID")
	if setup.EventID == "" {
		setup.EventID = eventID
	}
	if setup.EventID != eventID {
		a.errorResponse(w, http.StatusUnprocessableEntity, "event_id does not match the path")
		return
	}

	saved, err := a.service.ConfigureEvent(r.Context(), setup)
	if err != nil {
		a.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (a *API) submitBallot(w http.ResponseWriter, r *http.Request) {
	var ballot standingsdomain.Ballot
	if err := readJSON(w, r, &ballot); err != nil {
		a.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	eventID := chi.URLParam(r, "eventID")
	if ballot.EventID == "" {
		ballot.EventID = eventID
	}
	if ballot.EventID != eventID {
		a.errorResponse(w, http.StatusUnprocessableEntity, "event_id does not match the path")
		return
	}

	result, err := a.service.SubmitBallot(r.Context(), ballot)
	if err != nil {
		a.serviceError(w, r, err)
		return
	}
	if result.IsFailure() {
		writeJSON(w, failureStatus(result.Failure.Code), result.Failure)
		return
	}
	writeJSON(w, http.StatusAccepted, result.Success)
}

func (a *API) updateTiebreakers(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Order []string `json:"order"`
	}
	if err := readJSON(w, r, &body); err != nil {
		a.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := a.service.UpdateTiebreakerOrder(r.Context(), chi.URLParam(r, "eventID"), body.Order)
	if err != nil {
		a.serviceError(w, r, err)
		return
	}
	if result.IsFailure() {
		writeJSON(w, failureStatus(result.Failure.Code), result.Failure)
		return
	}
	writeJSON(w, http.StatusOK, result.Success)
}

func (a *API) recompute(w http.ResponseWriter, r *http.Request) {
	result, err := a.service.RecomputeStandings(r.Context(), chi.URLParam(r, "eventID"))
	if err != nil {
		a.serviceError(w, r, err)
		return
	}
	if result.IsFailure() {
		writeJSON(w, failureStatus(result.Failure.Code), result.Failure)
		return
	}
	writeJSON(w, http.StatusOK, result.Success)
}

func (a *API) archive(w http.ResponseWriter, r *http.Request) {
	location, err := a.service.ArchiveSnapshot(r.Context(), chi.URLParam(r, "eventID"))
	if err != nil {
		a.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{"location": location})
}

func (a *API) listJobs(w http.ResponseWriter, r *http.Request) {
	if a.jobs == nil {
		a.serviceError(w, r, errors.New("job listing is not configured"))
		return
	}
	jobs, err := a.jobs.PendingJobs(r.Context(), chi.URLParam(r, "eventID"))
	if err != nil {
		a.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"jobs": jobs})
}
