package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Second-Book/textbook-marketplace-backend/internal/service/blocks"
)

// BlockHandlers provides HTTP handlers for the blocking endpoints.
type BlockHandlers struct {
	service *blocks.Service
	log     *zerolog.Logger
}

// NewBlockHandlers creates a new block handlers instance.
func NewBlockHandlers(service *blocks.Service, logger *zerolog.Logger) *BlockHandlers {
	return &BlockHandlers{
		service: service,
		log:     logger,
	}
}

// Block blocks the named user on behalf of the caller.
// POST /api/users/:username/block
func (h *BlockHandlers) Block(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}
	username := c.Param("username")

	target, err := h.service.Block(c.Request.Context(), userID, username)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, MessageResponse{
			Message: fmt.Sprintf("User %s has been successfully blocked.", target.Username),
		})
	case errors.Is(err, blocks.ErrAlreadyBlocked):
		c.JSON(http.StatusOK, MessageResponse{
			Message: fmt.Sprintf("User %s is already blocked.", target.Username),
		})
	case errors.Is(err, blocks.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
	case errors.Is(err, blocks.ErrCannotBlockSelf):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "cannot block yourself"})
	default:
		h.log.Error().Err(err).Str("username", username).Msg("failed to block user")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

// Unblock removes the caller's block on the named user.
// DELETE /api/users/:username/block
func (h *BlockHandlers) Unblock(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}
	username := c.Param("username")

	target, err := h.service.Unblock(c.Request.Context(), userID, username)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, MessageResponse{
			Message: fmt.Sprintf("User %s has been successfully unblocked.", target.Username),
		})
	case errors.Is(err, blocks.ErrNotBlocked):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: fmt.Sprintf("User %s is not blocked.", target.Username),
		})
	case errors.Is(err, blocks.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
	default:
		h.log.Error().Err(err).Str("username", username).Msg("failed to unblock user")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}
