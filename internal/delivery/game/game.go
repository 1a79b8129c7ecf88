package game

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"akabo/internal/bootstrap"
	authDelivery "akabo/internal/delivery/auth"
	errs "akabo/internal/errors"
	"akabo/internal/httpresponse"
	gameUC "akabo/internal/usecase/game"
	"akabo/internal/utils"
)

type GameHandler struct {
	cfg         bootstrap.Config
	log         *zap.SugaredLogger
	gameUC      *gameUC.GameUseCase
	authHandler *authDelivery.AuthHandler
}

type MoveRequest struct {
	Column int `json:"column"`
}

func NewGameHandler(cfg bootstrap.Config, log *zap.SugaredLogger, uc *gameUC.GameUseCase, authHandler *authDelivery.AuthHandler) *GameHandler {
	return &GameHandler{
		cfg:         cfg,
		log:         log,
		gameUC:      uc,
		authHandler: authHandler,
	}
}

// HandleMakeMove handles POST /api/v1/game/{uuid}/move.
func (h *GameHandler) HandleMakeMove(w http.ResponseWriter, r *http.Request) {
	uid, err := h.authHandler.GetUserID(r)
	if err != nil {
		httpresponse.WriteError(w, err)
		return
	}
	gameID := chi.URLParam(r, "uuid")

	var req MoveRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		h.log.Errorf("MakeMove %s: malformed JSON: %v", gameID, err)
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest,
			httpresponse.ErrorResponse{ErrorDescription: httpresponse.MALFORMEDJSON_errorDesc})
		return
	}

	play, err := h.gameUC.MakeMove(r.Context(), gameID, uid, req.Column)
	if err != nil {
		h.log.Errorf("MakeMove %s column %d for uid %s: %v", gameID, req.Column, uid, err)
		httpresponse.WriteError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, play)
}

// HandleForfeitGame handles POST /api/v1/game/{uuid}/forfeit.
func (h *GameHandler) HandleForfeitGame(w http.ResponseWriter, r *http.Request) {
	uid, err := h.authHandler.GetUserID(r)
	if err != nil {
		httpresponse.WriteError(w, err)
		return
	}
	gameID := chi.URLParam(r, "uuid")

	play, err := h.gameUC.ForfeitGame(r.Context(), gameID, uid)
	if err != nil {
		h.log.Errorf("ForfeitGame %s for uid %s: %v", gameID, uid, err)
		httpresponse.WriteError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, play)
}

// HandlePollGame handles GET /api/v1/game/{uuid}.
func (h *GameHandler) HandlePollGame(w http.ResponseWriter, r *http.Request) {
	uid, err := h.authHandler.GetUserID(r)
	if err != nil {
		httpresponse.WriteError(w, err)
		return
	}
	gameID := chi.URLParam(r, "uuid")
	if gameID == "" {
		httpresponse.WriteError(w, errs.ErrInvalidInput)
		return
	}

	play, err := h.gameUC.PollGame(r.Context(), gameID, uid)
	if err != nil {
		h.log.Errorf("PollGame %s for uid %s: %v", gameID, uid, err)
		httpresponse.WriteError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, play)
}
