package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/sparkmatch/backend/internal/services"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	likeService *services.LikeService
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(likeService *services.LikeService) *LikeHandler {
	return &LikeHandler{likeService: likeService}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:post_id/likes", h.LikePost)
	g.DELETE("/posts/:post_id/likes", h.UnlikePost)
	g.GET("/posts/:post_id/likes", h.GetLikeStatus)
}

// LikePost handles liking a post
func (h *LikeHandler) LikePost(c echo.Context) error {
	currentUserID, err := requireUser(c)
	if err != nil {
		return err
	}

	status, err := h.likeService.Like(c.Request().Context(), c.Param("post_id"), currentUserID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, status)
}

// UnlikePost handles unliking a post
func (h *LikeHandler) UnlikePost(c echo.Context) error {
	currentUserID, err := requireUser(c)
	if err != nil {
		return err
	}

	if err := h.likeService.Unlike(c.Request().Context(), c.Param("post_id"), currentUserID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetLikeStatus returns the like count and whether the caller liked the post
func (h *LikeHandler) GetLikeStatus(c echo.Context) error {
	currentUserID, err := requireUser(c)
	if err != nil {
		return err
	}

	status, err := h.likeService.Status(c.Request().Context(), c.Param("post_id"), currentUserID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, status)
}
