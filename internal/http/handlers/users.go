package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/profilehub/internal/config"
	"github.com/geocoder89/profilehub/internal/domain/user"
	"github.com/geocoder89/profilehub/internal/http/middlewares"
	"github.com/geocoder89/profilehub/internal/profile"
	"github.com/gin-gonic/gin"
)

type ProfileService interface {
	GetOwn(ctx context.Context, callerID string) (user.User, error)
	UpdateOwn(ctx context.Context, callerID, targetID string, patch user.Patch) (user.User, error)
}

type ProfileHandler struct {
	svc ProfileService
}

func NewProfileHandler(svc ProfileService) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

// UpdateProfileRequest has no role or password field, so a body carrying
// them is decoded with those keys ignored.
type UpdateProfileRequest struct {
	Name      *string         `json:"name" binding:"omitempty,min=1,max=120"`
	Email     *string         `json:"email" binding:"omitempty,email"`
	Education *string         `json:"education"`
	Skills    *[]string       `json:"skills"`
	Projects  *[]user.Project `json:"projects" binding:"omitempty,dive"`
	Work      *[]string       `json:"work"`
	Links     *[]string       `json:"links"`
}

func (r UpdateProfileRequest) toPatch() user.Patch {
	return user.Patch{
		Name:      r.Name,
		Email:     r.Email,
		Education: r.Education,
		Skills:    r.Skills,
		Projects:  r.Projects,
		Work:      r.Work,
		Links:     r.Links,
	}
}

type profileResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	User    user.User `json:"user"`
}

func (h *ProfileHandler) Me(ctx *gin.Context) {
	callerID, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Authentication required")
		return
	}

	cctx, cancel := config.DetachedTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	u, err := h.svc.GetOwn(cctx, callerID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}
		RespondInternal(ctx, "Could not load profile", err)
		return
	}

	ctx.JSON(http.StatusOK, profileResponse{Success: true, Message: "User found", User: u})
}

func (h *ProfileHandler) Update(ctx *gin.Context) {
	callerID, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Authentication required")
		return
	}

	// ownership is checked before the body is even looked at
	targetID := ctx.Param("id")
	if targetID != callerID {
		RespondForbidden(ctx, profile.ErrForbidden.Error())
		return
	}

	var req UpdateProfileRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.DetachedTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	u, err := h.svc.UpdateOwn(cctx, callerID, targetID, req.toPatch())
	if err != nil {
		switch {
		case errors.Is(err, profile.ErrForbidden):
			RespondForbidden(ctx, err.Error())
		case errors.Is(err, user.ErrNotFound):
			RespondNotFound(ctx, "User not found")
		case errors.Is(err, user.ErrEmailTaken):
			RespondError(ctx, http.StatusBadRequest, "email_taken", "Email is already in use.", nil)
		default:
			RespondInternal(ctx, "Could not update profile", err)
		}
		return
	}

	ctx.JSON(http.StatusOK, profileResponse{Success: true, Message: "Profile updated", User: u})
}
