package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/sketcher2345/hackathon-platform/middleware"
	"github.com/sketcher2345/hackathon-platform/services"
)

const maxImageUploadBytes = 10 << 20 // 10MB

type HackathonHandler struct {
	hackathonService services.HackathonService
	winnerService    services.WinnerService
}

func NewHackathonHandler(hackathonService services.HackathonService, winnerService services.WinnerService) *HackathonHandler {
	return &HackathonHandler{
		hackathonService: hackathonService,
		winnerService:    winnerService,
	}
}

func (h *HackathonHandler) Create(w http.ResponseWriter, r *http.Request) {
	hostID, err := middleware.GetHostIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var input services.CreateHackathonInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	hackathon, err := h.hackathonService.Create(r.Context(), hostID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, jsonResponse{"hackathon": hackathon}, nil)
}

func (h *HackathonHandler) List(w http.ResponseWriter, r *http.Request) {
	hostID, err := middleware.GetHostIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	hackathons, err := h.hackathonService.List(r.Context(), hostID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"hackathons": hackathons}, nil)
}

func (h *HackathonHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	hackathon, err := h.hackathonService.GetByID(r.Context(), hostID, hackathonID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"hackathon": hackathon}, nil)
}

func (h *HackathonHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var input services.UpdateHackathonInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	hackathon, err := h.hackathonService.Update(r.Context(), hostID, hackathonID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"hackathon": hackathon}, nil)
}

func (h *HackathonHandler) Start(w http.ResponseWriter, r *http.Request) {
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

	hackathon, err := h.hackathonService.Start(r.Context(), hostID, hackathonID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"hackathon": hackathon}, nil)
}

func (h *HackathonHandler) CloseRegistration(w http.ResponseWriter, r *http.Request) {
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

	export, err := h.hackathonService.CloseRegistration(r.Context(), hostID, hackathonID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, export, nil)
}

func (h *HackathonHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	h.uploadImage(w, r, "logo", h.hackathonService.UploadLogo)
}

func (h *HackathonHandler) UploadBanner(w http.ResponseWriter, r *http.Request) {
	h.uploadImage(w, r, "banner", h.hackathonService.UploadBanner)
}

func (h *HackathonHandler) uploadImage(w http.ResponseWriter, r *http.Request, field string,
	upload func(ctx context.Context, hostID, hackathonID int, contentType string, file io.Reader) (string, error)) {

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

	if err := r.ParseMultipartForm(maxImageUploadBytes); err != nil {
		badRequestResponse(w, r, fmt.Errorf("failed to parse multipart form: %w", err))
		return
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		badRequestResponse(w, r, fmt.Errorf("form file %q is required", field))
		return
	}
	defer file.Close()

	url, err := upload(r.Context(), hostID, hackathonID, header.Header.Get("Content-Type"), file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"url": url}, nil)
}

func (h *HackathonHandler) AnnounceWinners(w http.ResponseWriter, r *http.Request) {
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

	var input struct {
		Winners []services.WinnerInput `json:"winners"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.winnerService.AnnounceWinners(r.Context(), hostID, hackathonID, input.Winners); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"message": "winners announced"}, nil)
}
