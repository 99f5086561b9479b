package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Second-Book/textbook-marketplace-backend/internal/service/textbooks"
	"github.com/Second-Book/textbook-marketplace-backend/internal/store"
)

// TextbookHandlers provides HTTP handlers for textbook listings.
type TextbookHandlers struct {
	service *textbooks.Service
	log     *zerolog.Logger
}

// NewTextbookHandlers creates a new textbook handlers instance.
func NewTextbookHandlers(service *textbooks.Service, logger *zerolog.Logger) *TextbookHandlers {
	return &TextbookHandlers{
		service: service,
		log:     logger,
	}
}

// TextbookRequest represents a create-listing request body.
type TextbookRequest struct {
	Title       string `json:"title" binding:"required"`
	Author      string `json:"author" binding:"required"`
	SchoolClass string `json:"school_class"`
	Publisher   string `json:"publisher"`
	Subject     string `json:"subject"`
	PriceCents  int64  `json:"price_cents"`
	Condition   string `json:"condition"`
	Description string `json:"description"`
}

// TextbookResponse represents a listing in API responses.
type TextbookResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	SchoolClass string `json:"school_class"`
	Publisher   string `json:"publisher"`
	Subject     string `json:"subject"`
	PriceCents  int64  `json:"price_cents"`
	Condition   string `json:"condition"`
	Description string `json:"description"`
	SellerID    int64  `json:"seller_id"`
}

func textbookResponse(tb *store.Textbook) TextbookResponse {
	return TextbookResponse{
		ID:          tb.ID,
		Title:       tb.Title,
		Author:      tb.Author,
		SchoolClass: tb.SchoolClass,
		Publisher:   tb.Publisher,
		Subject:     tb.Subject,
		PriceCents:  tb.PriceCents,
		Condition:   string(tb.Condition),
		Description: tb.Description,
		SellerID:    tb.SellerID,
	}
}

// List returns all listings, optionally narrowed to one seller.
// GET /api/textbooks?seller=<username>
func (h *TextbookHandlers) List(c *gin.Context) {
	listings, err := h.service.List(c.Request.Context(), c.Query("seller"))
	if err != nil {
		if errors.Is(err, textbooks.ErrSellerNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "seller not found"})
			return
		}
		h.log.Error().Err(err).Msg("failed to list textbooks")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]TextbookResponse, 0, len(listings))
	for _, tb := range listings {
		response = append(response, textbookResponse(tb))
	}
	c.JSON(http.StatusOK, response)
}

// Get returns one listing.
// GET /api/textbooks/:id
func (h *TextbookHandlers) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid textbook id"})
		return
	}

	tb, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "textbook not found"})
			return
		}
		h.log.Error().Err(err).Int64("textbook_id", id).Msg("failed to load textbook")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, textbookResponse(tb))
}

// Create persists a new listing owned by the caller.
// POST /api/textbooks
func (h *TextbookHandlers) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var req TextbookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid textbook request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	created, err := h.service.Create(c.Request.Context(), userID, &store.Textbook{
		Title:       req.Title,
		Author:      req.Author,
		SchoolClass: req.SchoolClass,
		Publisher:   req.Publisher,
		Subject:     req.Subject,
		PriceCents:  req.PriceCents,
		Condition:   store.TextbookCondition(req.Condition),
		Description: req.Description,
	})
	if err != nil {
		if errors.Is(err, textbooks.ErrInvalidListing) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid listing"})
			return
		}
		h.log.Error().Err(err).Int64("user_id", userID).Msg("failed to create textbook")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, textbookResponse(created))
}
