package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/geocoder89/profilehub/internal/config"
	"github.com/geocoder89/profilehub/internal/directory"
	"github.com/geocoder89/profilehub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type DirectoryService interface {
	ListUsers(ctx context.Context, page user.PageRequest) (user.Page, error)
	ListBySkills(ctx context.Context, rawSkills string, page user.PageRequest) (user.Page, error)
	Search(ctx context.Context, query string, page user.PageRequest) (user.Page, error)
	TopSkills(ctx context.Context) ([]user.SkillCount, error)
}

type DirectoryHandler struct {
	svc DirectoryService
}

func NewDirectoryHandler(svc DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{svc: svc}
}

type pageResponse struct {
	Success bool      `json:"success"`
	Data    user.Page `json:"data"`
}

type topSkillsResponse struct {
	Success bool              `json:"success"`
	Skills  []user.SkillCount `json:"skills"`
}

func (h *DirectoryHandler) ListUsers(ctx *gin.Context) {
	page, ok := parsePage(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.DetachedTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	out, err := h.svc.ListUsers(cctx, page)
	h.respondPage(ctx, out, err)
}

func (h *DirectoryHandler) ListBySkills(ctx *gin.Context) {
	page, ok := parsePage(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.DetachedTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	out, err := h.svc.ListBySkills(cctx, ctx.Query("skills"), page)
	h.respondPage(ctx, out, err)
}

func (h *DirectoryHandler) Search(ctx *gin.Context) {
	page, ok := parsePage(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.DetachedTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	out, err := h.svc.Search(cctx, ctx.Query("q"), page)
	h.respondPage(ctx, out, err)
}

func (h *DirectoryHandler) TopSkills(ctx *gin.Context) {
	cctx, cancel := config.DetachedTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	skills, err := h.svc.TopSkills(cctx)
	if err != nil {
		RespondInternal(ctx, "Could not compute top skills", err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, topSkillsResponse{Success: true, Skills: skills})
}

func (h *DirectoryHandler) respondPage(ctx *gin.Context, out user.Page, err error) {
	if err != nil {
		if directory.IsInvalidArgument(err) {
			RespondError(ctx, http.StatusBadRequest, "invalid_query", err.Error(), nil)
			return
		}
		RespondInternal(ctx, "Could not list users", err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, pageResponse{Success: true, Data: out})
}

// parsePage reads page and limit from the query string. Absent values take
// the defaults; anything else must be a positive integer. limit is capped.
func parsePage(ctx *gin.Context) (user.PageRequest, bool) {
	page, err := queryInt(ctx, "page", user.DefaultPage)
	if err != nil {
		RespondError(ctx, http.StatusBadRequest, "invalid_query", directory.ErrInvalidPage.Error(), nil)
		return user.PageRequest{}, false
	}

	limit, err := queryInt(ctx, "limit", user.DefaultLimit)
	if err != nil {
		RespondError(ctx, http.StatusBadRequest, "invalid_query", "limit must be a positive integer", nil)
		return user.PageRequest{}, false
	}
	if limit > user.MaxLimit {
		limit = user.MaxLimit
	}

	return user.PageRequest{Page: page, Limit: limit}, true
}

var errNotPositive = errors.New("not a positive integer")

func queryInt(ctx *gin.Context, key string, fallback int) (int, error) {
	raw, ok := ctx.GetQuery(key)
	if !ok {
		return fallback, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, errNotPositive
	}
	return n, nil
}
