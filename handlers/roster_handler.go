package handlers

import (
	"fmt"
	"net/http"

	"github.com/sketcher2345/hackathon-platform/middleware"
	"github.com/sketcher2345/hackathon-platform/services"
)

const maxRosterUploadBytes = 5 << 20 // 5MB

type RosterHandler struct {
	rosterService services.RosterService
}

func NewRosterHandler(rosterService services.RosterService) *RosterHandler {
	return &RosterHandler{rosterService: rosterService}
}

func (h *RosterHandler) ImportFormedTeams(w http.ResponseWriter, r *http.Request) {
	hostID, err := middleware.GetHostIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	hackathonID, err := urlParamInt(r, "hackathonID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(maxRosterUploadBytes); err != nil {
		badRequestResponse(w, r, fmt.Errorf("failed to parse multipart form: %w", err))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		badRequestResponse(w, r, services.ErrRosterFileRequired)
		return
	}
	defer file.Close()

	result, err := h.rosterService.ImportFormedTeams(r.Context(), hostID, hackathonID, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result, nil)
}

func (h *RosterHandler) ExportSubmissionsCSV(w http.ResponseWriter, r *http.Request) {
	hostID, err := middleware.GetHostIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	hackathonID, err := urlParamInt(r, "hackathonID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	csvData, err := h.rosterService.ExportSubmissionsCSV(r.Context(), hostID, hackathonID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeCSV(w, fmt.Sprintf("submissions_%d.csv", hackathonID), csvData)
}

func (h *RosterHandler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	hostID, err := middleware.GetHostIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	hackathonID, err := urlParamInt(r, "hackathonID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	summaries, err := h.rosterService.ListSubmissionSummaries(r.Context(), hostID, hackathonID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"submissions": summaries}, nil)
}
