package auth

import (
	"net/http"

	"go.uber.org/zap"

	"akabo/internal/bootstrap"
	errs "akabo/internal/errors"
	authUC "akabo/internal/usecase/auth"
)

// AuthHandler extracts the verified user id from a request. In "session"
// mode the session_id cookie is resolved through session storage; "header"
// mode trusts the X-User-ID header and exists for non-production setups.
type AuthHandler struct {
	cfg     bootstrap.Config
	log     *zap.SugaredLogger
	usecase *authUC.AuthUsecaseHandler
}

func NewAuthHandler(cfg bootstrap.Config, log *zap.SugaredLogger, usecase *authUC.AuthUsecaseHandler) *AuthHandler {
	return &AuthHandler{
		cfg:     cfg,
		log:     log,
		usecase: usecase,
	}
}

func (a *AuthHandler) GetUserID(r *http.Request) (string, error) {
	if a.cfg.AuthMode == "header" {
		uid := r.Header.Get("X-User-ID")
		if uid == "" {
			return "", errs.ErrUnauthorized
		}
		return uid, nil
	}

	cookie, err := r.Cookie("session_id")
	if err != nil {
		return "", errs.ErrUnauthorized
	}
	uid, ok := a.usecase.CheckAuthorized(r.Context(), cookie.Value)
	if !ok {
		return "", errs.ErrUnauthorized
	}
	return uid, nil
}
