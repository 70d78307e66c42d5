package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/library-inventory/internal/repository"
)

// UserHandler serves admin account management.
type UserHandler struct {
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
}

func NewUserHandler(u *repository.UserRepo, t *repository.TokenRepo) *UserHandler {
	return &UserHandler{Users: u, Tokens: t}
}

type userResp struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// List returns every account. Password hashes never leave the repository
// layer's model, so the response uses a trimmed shape.
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list users failed"})
	}
	out := make([]userResp, 0, len(users))
	for _, u := range users {
		out = append(out, userResp{
			ID: u.ID, Name: u.Name, Email: u.Email,
			Role: u.Role, IsActive: u.IsActive, CreatedAt: u.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"users": out})
}

type setActiveReq struct {
	Active *bool `json:"active"`
}

// SetActive deactivates or reactivates an account. Deactivated members
// keep their open loans but cannot log in.
func (h *UserHandler) SetActive(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	var req setActiveReq
	if err := c.Bind(&req); err != nil || req.Active == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "active required"})
	}
	if self, ok := getUserID(c); ok && self == id && !*req.Active {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot deactivate yourself"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.SetActive(ctx, id, *req.Active); err != nil {
		if err == repository.ErrUserNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update user failed"})
	}
	if !*req.Active {
		// Kill existing sessions so the deactivation takes effect.
		_ = h.Tokens.RevokeAllForUser(ctx, id)
	}
	return c.NoContent(http.StatusNoContent)
}
