package handler

import (
	"encoding/json"
	"net/http"

	"contest_tracker/internal/api/middleware"
	"contest_tracker/internal/app/service"
	"contest_tracker/internal/common"

	"github.com/go-chi/chi/v5"
)

type ContestHandler struct {
	contestService *service.ContestService
}

func NewContestHandler(contestService *service.ContestService) *ContestHandler {
	return &ContestHandler{contestService: contestService}
}

func (h *ContestHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listUpcoming)
	r.Get("/without-solution", h.listWithoutSolution)

	// Manual solution-link management is admin only.
	r.Group(func(admin chi.Router) {
		admin.Use(middleware.Authenticator)
		admin.Use(middleware.AdminOnly)
		admin.Patch("/{contestID}/solution", h.setSolutionLink)
	})
}

func (h *ContestHandler) listUpcoming(w http.ResponseWriter, r *http.Request) {
	contests, err := h.contestService.ListUpcoming(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, contests)
}

func (h *ContestHandler) listWithoutSolution(w http.ResponseWriter, r *http.Request) {
	contests, err := h.contestService.ListWithoutSolution(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, contests)
}

type setSolutionLinkRequest struct {
	SolutionLink string `json:"solutionLink"`
}

type setSolutionLinkResponse struct {
	Message string      `json:"message"`
	Contest interface{} `json:"contest"`
}

func (h *ContestHandler) setSolutionLink(w http.ResponseWriter, r *http.Request) {
	contestID := chi.URLParam(r, "contestID")

	var req setSolutionLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	contest, err := h.contestService.SetSolutionLink(r.Context(), contestID, req.SolutionLink)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, setSolutionLinkResponse{
		Message: "Solution link added successfully",
		Contest: contest,
	})
}
