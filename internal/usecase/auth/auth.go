package auth

import "context"

type SessionStorage interface {
	GetUserIDBySession(ctx context.Context, sessionID string) (string, bool)
	StoreSession(ctx context.Context, sessionID string, uid string) error
	DeleteSession(ctx context.Context, sessionID string) error
}

// AuthUsecaseHandler resolves session ids to verified user ids. Token
// issuance and account management live in a separate service.
type AuthUsecaseHandler struct {
	sessions SessionStorage
}

func NewAuthUsecaseHandler(sessions SessionStorage) *AuthUsecaseHandler {
	return &AuthUsecaseHandler{sessions: sessions}
}

func (a *AuthUsecaseHandler) CheckAuthorized(ctx context.Context, sessionID string) (uid string, ok bool) {
	if sessionID == "" {
		return "", false
	}
	return a.sessions.GetUserIDBySession(ctx, sessionID)
}
