package handlers

import (
	"net/http"

	"github.com/sketcher2345/hackathon-platform/middleware"
	"github.com/sketcher2345/hackathon-platform/models"
	"github.com/sketcher2345/hackathon-platform/services"
)

type RegistrationHandler struct {
	registrationService services.RegistrationService
}

func NewRegistrationHandler(registrationService services.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrationService: registrationService}
}

func (h *RegistrationHandler) ListPending(w http.ResponseWriter, r *http.Request) {
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

	pending, err := h.registrationService.ListPending(r.Context(), hostID, hackathonID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, pending, nil)
}

func (h *RegistrationHandler) Decide(w http.ResponseWriter, r *http.Request) {
	hostID, err := middleware.GetHostIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	registrationID, err := urlParamInt(r, "registrationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Status models.RegistrationStatus `json:"status"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	reg, err := h.registrationService.Decide(r.Context(), hostID, registrationID, input.Status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"registration": reg}, nil)
}
