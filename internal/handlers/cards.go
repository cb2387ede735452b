package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Sam-D-04/access-control-building/internal/services"
	"github.com/Sam-D-04/access-control-building/pkg/errors"
	"github.com/Sam-D-04/access-control-building/pkg/response"
)

type CardHandler struct {
	svc *services.CardService
}

func NewCardHandler(db *gorm.DB) (*CardHandler, error) {
	svc, err := services.NewCardService(db)
	if err != nil {
		return nil, err
	}
	return &CardHandler{svc: svc}, nil
}

type issueCardRequest struct {
	UID       string     `json:"uid" validate:"required,min=4,max=64"`
	UserID    *string    `json:"user_id" validate:"omitempty,uuid4"`
	ExpiresAt *time.Time `json:"expires_at"`
}

type updateCardRequest struct {
	UserID      *string    `json:"user_id" validate:"omitempty,uuid4"`
	ExpiresAt   *time.Time `json:"expires_at"`
	ClearExpiry bool       `json:"clear_expiry"`
}

// POST /api/cards
func (h *CardHandler) Issue(c *gin.Context) {
	var body issueCardRequest
	if !bindAndValidate(c, &body) {
		return
	}

	uid := strings.TrimSpace(body.UID)
	if uid == "" {
		response.Error(c, errors.NewBadRequest("uid is required"))
		return
	}

	card, err := h.svc.Issue(requestContext(c), services.IssueCardInput{
		UID:       uid,
		UserID:    body.UserID,
		ExpiresAt: body.ExpiresAt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, card)
}

// GET /api/cards
func (h *CardHandler) List(c *gin.Context) {
	opts := services.ListCardsOptions{
		Page:     parseIntQuery(c, "page", 1),
		PageSize: parseIntQuery(c, "page_size", 50),
		UserID:   strings.TrimSpace(c.Query("user_id")),
	}

	cards, total, err := h.svc.List(requestContext(c), opts)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, cards, paginationMeta(opts.Page, opts.PageSize, total))
}

// GET /api/cards/:id
func (h *CardHandler) Get(c *gin.Context) {
	card, err := h.svc.GetByID(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, card)
}

// PATCH /api/cards/:id
func (h *CardHandler) Update(c *gin.Context) {
	var body updateCardRequest
	if !bindAndValidate(c, &body) {
		return
	}

	card, err := h.svc.Update(requestContext(c), c.Param("id"), services.UpdateCardInput{
		UserID:      body.UserID,
		ExpiresAt:   body.ExpiresAt,
		ClearExpiry: body.ClearExpiry,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, card)
}

// POST /api/cards/:id/deactivate
func (h *CardHandler) Deactivate(c *gin.Context) {
	if err := h.svc.Deactivate(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deactivated": true})
}

// POST /api/cards/:id/reactivate
func (h *CardHandler) Reactivate(c *gin.Context) {
	if err := h.svc.Reactivate(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reactivated": true})
}

// DELETE /api/cards/:id
func (h *CardHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
