package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/profilehub/internal/auth"
	"github.com/geocoder89/profilehub/internal/config"
	"github.com/geocoder89/profilehub/internal/domain/user"
	"github.com/geocoder89/profilehub/internal/observability"
	"github.com/gin-gonic/gin"
)

type Authenticator interface {
	Register(ctx context.Context, reg auth.Registration) (auth.Result, error)
	Authenticate(ctx context.Context, email, password string) (auth.Result, error)
}

type AuthHandler struct {
	svc  Authenticator
	prom *observability.Prom
}

func NewAuthHandler(svc Authenticator, prom *observability.Prom) *AuthHandler {
	return &AuthHandler{svc: svc, prom: prom}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SignUpRequest takes the optional role as given; an admin can be created
// straight from signup.
type SignUpRequest struct {
	Name      string         `json:"name" binding:"required,max=120"`
	Email     string         `json:"email" binding:"required,email"`
	Password  string         `json:"password" binding:"required,min=6,max=72"`
	Role      string         `json:"role" binding:"omitempty,oneof=admin user"`
	Education *string        `json:"education"`
	Skills    []string       `json:"skills"`
	Projects  []user.Project `json:"projects" binding:"omitempty,dive"`
	Work      []string       `json:"work"`
	Links     []string       `json:"links"`
}

type authResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	User    user.User `json:"user"`
	Token   string    `json:"token"`
}

func (h *AuthHandler) SignUp(ctx *gin.Context) {
	var req SignUpRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.DetachedTimeout(ctx.Request.Context(), 5*time.Second)
	defer cancel()

	res, err := h.svc.Register(cctx, auth.Registration{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		Profile: user.Profile{
			Education: req.Education,
			Skills:    req.Skills,
			Projects:  req.Projects,
			Work:      req.Work,
			Links:     req.Links,
		},
	})
	h.prom.ObserveAuth("signup", err)

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondError(ctx, http.StatusBadRequest, "email_taken", "Email is already in use.", nil)
			return
		}

		RespondInternal(ctx, "Could not create user", err)
		return
	}

	ctx.JSON(http.StatusCreated, authResponse{
		Success: true,
		Message: "User created",
		User:    res.User,
		Token:   res.Token,
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.DetachedTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	res, err := h.svc.Authenticate(cctx, req.Email, req.Password)
	h.prom.ObserveAuth("login", err)

	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
			return
		}

		RespondInternal(ctx, "Could not log in", err)
		return
	}

	ctx.JSON(http.StatusOK, authResponse{
		Success: true,
		Message: "Login successful",
		User:    res.User,
		Token:   res.Token,
	})
}
