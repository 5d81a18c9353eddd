package envelope

import (
	"context"
	"encoding/json"

	"homesurvey/internal/models"
	"homesurvey/internal/storage"
)

// SaveLogin records the bearer token and account of the signed-in user.
// Both keys are global: they decide which scope everything else uses.
func (s *Store) SaveLogin(ctx context.Context, token string, user *models.User) {
	s.items.SetItem(ctx, KeyToken, token, "")
	if user == nil {
		user = &models.User{}
	}
	s.setJSON(ctx, KeyUser, user, "")
}

func (s *Store) Token(ctx context.Context) string {
	token, _ := s.items.GetItem(ctx, KeyToken, "")
	return token
}

// CurrentUser returns the stored account, or nil when signed out or unreadable.
func (s *Store) CurrentUser(ctx context.Context) *models.User {
	raw, ok := s.items.GetItem(ctx, KeyUser, "")
	if !ok || raw == "" {
		return nil
	}
	var u models.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil
	}
	return &u
}

// CurrentUserID derives the scope of the stored account.
func (s *Store) CurrentUserID(ctx context.Context) string {
	return storage.DeriveUserID(s.CurrentUser(ctx))
}

// Logout forgets the token and account. Per-user data stays under its scope.
func (s *Store) Logout(ctx context.Context) {
	s.items.RemoveItem(ctx, KeyToken, "")
	s.items.RemoveItem(ctx, KeyUser, "")
}
