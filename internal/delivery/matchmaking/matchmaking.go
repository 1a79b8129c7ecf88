package matchmaking

import (
	"net/http"

	"go.uber.org/zap"

	"akabo/internal/bootstrap"
	authDelivery "akabo/internal/delivery/auth"
	"akabo/internal/httpresponse"
	matchUC "akabo/internal/usecase/matchmaking"
)

type MatchmakingHandler struct {
	cfg         bootstrap.Config
	log         *zap.SugaredLogger
	matchUC     *matchUC.MatchmakingUseCase
	authHandler *authDelivery.AuthHandler
}

func NewMatchmakingHandler(cfg bootstrap.Config, log *zap.SugaredLogger, uc *matchUC.MatchmakingUseCase, authHandler *authDelivery.AuthHandler) *MatchmakingHandler {
	return &MatchmakingHandler{
		cfg:         cfg,
		log:         log,
		matchUC:     uc,
		authHandler: authHandler,
	}
}

// HandleCreateTicket handles POST /api/v1/matchmaking. The only input is
// the authenticated uid.
func (h *MatchmakingHandler) HandleCreateTicket(w http.ResponseWriter, r *http.Request) {
	uid, err := h.authHandler.GetUserID(r)
	if err != nil {
		httpresponse.WriteError(w, err)
		return
	}

	t, err := h.matchUC.CreateTicket(r.Context(), uid)
	if err != nil {
		h.log.Errorf("CreateTicket for uid %s: %v", uid, err)
		httpresponse.WriteError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, t)
}

// HandlePollTicket handles GET /api/v1/matchmaking?uuid=.
func (h *MatchmakingHandler) HandlePollTicket(w http.ResponseWriter, r *http.Request) {
	uid, err := h.authHandler.GetUserID(r)
	if err != nil {
		httpresponse.WriteError(w, err)
		return
	}
	ticketID := r.URL.Query().Get("uuid")

	t, err := h.matchUC.PollTicket(r.Context(), ticketID, uid)
	if err != nil {
		h.log.Errorf("PollTicket %s for uid %s: %v", ticketID, uid, err)
		httpresponse.WriteError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, t)
}

// HandleDeleteTicket handles DELETE /api/v1/matchmaking?uuid=.
func (h *MatchmakingHandler) HandleDeleteTicket(w http.ResponseWriter, r *http.Request) {
	uid, err := h.authHandler.GetUserID(r)
	if err != nil {
		httpresponse.WriteError(w, err)
		return
	}
	ticketID := r.URL.Query().Get("uuid")

	t, err := h.matchUC.DeleteTicket(r.Context(), ticketID, uid)
	if err != nil {
		h.log.Errorf("DeleteTicket %s for uid %s: %v", ticketID, uid, err)
		httpresponse.WriteError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, t)
}
