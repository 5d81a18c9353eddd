package storage

import (
	"strings"

	"homesurvey/internal/models"
)

// DeriveUserID picks the identity used to scope keys: id, then _id, then
// the lowercased email. It returns "" for an anonymous user.
func DeriveUserID(u *models.User) string {
	if u == nil {
		return ""
	}
	if id := strings.TrimSpace(u.ID); id != "" {
		return id
	}
	if id := strings.TrimSpace(u.LegacyID); id != "" {
		return id
	}
	return strings.ToLower(strings.TrimSpace(u.Email))
}

// ResolveUserID prefers an explicit id over the one derived from user.
func ResolveUserID(explicit string, user *models.User) string {
	if id := strings.TrimSpace(explicit); id != "" {
		return id
	}
	return DeriveUserID(user)
}
