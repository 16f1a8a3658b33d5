package server

import (
	"github.com/gin-gonic/gin"

	"legal-backend/internal/shared/server/middleware"
	"legal-backend/internal/shared/server/respond"
)

type meResponse struct {
	UserID  string `json:"userId"`
	IsGuest bool   `json:"isGuest"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
}

// me echoes the identity resolved by the auth middleware, which has already
// rejected requests without one.
func me(c *gin.Context) {
	respond.OK(c, meResponse{
		UserID:  middleware.UserIDFromContext(c),
		IsGuest: c.GetBool("isGuest"),
		Email:   middleware.UserEmailFromContext(c),
		Name:    middleware.UserNameFromContext(c),
	})
}
