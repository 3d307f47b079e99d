// Package auth implements token issuance/verification and the
// authorization policy applied by the HTTP layer.
package auth

import "duskblog/internal/models"

// Principal is the authenticated user attached to a request after the
// session middleware resolves it.
type Principal struct {
	ID       string
	Username string
	IsAdmin  bool
}

// PrincipalFromUser builds the request principal from a stored user.
func PrincipalFromUser(u *models.User) Principal {
	return Principal{
		ID:       u.ID.Hex(),
		Username: u.Username,
		IsAdmin:  u.IsAdmin,
	}
}
