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

// AssignmentHandler manages the bindings between cards and permissions.
type AssignmentHandler struct {
	svc *services.CardPermissionService
}

func NewAssignmentHandler(db *gorm.DB) (*AssignmentHandler, error) {
	svc, err := services.NewCardPermissionService(db)
	if err != nil {
		return nil, err
	}
	return &AssignmentHandler{svc: svc}, nil
}

type assignPermissionRequest struct {
	CardID       string `json:"card_id" validate:"required,uuid4"`
	PermissionID string `json:"permission_id" validate:"required,uuid4"`

	ValidFrom  *time.Time `json:"valid_from"`
	ValidUntil *time.Time `json:"valid_until"`

	OverrideDoors     bool     `json:"override_doors"`
	CustomDoorIDs     []string `json:"custom_door_ids" validate:"omitempty,dive,uuid4"`
	AdditionalDoorIDs []string `json:"additional_door_ids" validate:"omitempty,dive,uuid4"`

	OverrideTimeRestriction *timeRestrictionPayload `json:"override_time_restriction"`
}

type updateAssignmentRequest struct {
	ValidFrom  *time.Time `json:"valid_from"`
	ValidUntil *time.Time `json:"valid_until"`

	OverrideDoors     *bool    `json:"override_doors"`
	CustomDoorIDs     []string `json:"custom_door_ids" validate:"omitempty,dive,uuid4"`
	AdditionalDoorIDs []string `json:"additional_door_ids" validate:"omitempty,dive,uuid4"`

	OverrideTimeRestriction *timeRestrictionPayload `json:"override_time_restriction"`
	ClearTimeOverride       bool                    `json:"clear_time_override"`

	IsActive *bool `json:"is_active"`
}

// POST /api/assignments
func (h *AssignmentHandler) Assign(c *gin.Context) {
	var body assignPermissionRequest
	if !bindAndValidate(c, &body) {
		return
	}

	if body.ValidFrom != nil && body.ValidUntil != nil && body.ValidUntil.Before(*body.ValidFrom) {
		response.Error(c, errors.NewBadRequest("valid_until must not precede valid_from"))
		return
	}

	assignment, err := h.svc.Assign(requestContext(c), services.AssignPermissionInput{
		CardID:                  body.CardID,
		PermissionID:            body.PermissionID,
		ValidFrom:               body.ValidFrom,
		ValidUntil:              body.ValidUntil,
		OverrideDoors:           body.OverrideDoors,
		CustomDoorIDs:           body.CustomDoorIDs,
		AdditionalDoorIDs:       body.AdditionalDoorIDs,
		OverrideTimeRestriction: body.OverrideTimeRestriction.toModel(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, assignment)
}

// GET /api/assignments?card_id=...
func (h *AssignmentHandler) ListByCard(c *gin.Context) {
	cardID := strings.TrimSpace(c.Query("card_id"))
	if cardID == "" {
		response.Error(c, errors.NewBadRequest("card_id query parameter is required"))
		return
	}

	assignments, err := h.svc.ListByCard(requestContext(c), cardID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, assignments)
}

// GET /api/assignments/:id
func (h *AssignmentHandler) Get(c *gin.Context) {
	assignment, err := h.svc.GetByID(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, assignment)
}

// PATCH /api/assignments/:id
func (h *AssignmentHandler) Update(c *gin.Context) {
	var body updateAssignmentRequest
	if !bindAndValidate(c, &body) {
		return
	}

	assignment, err := h.svc.Update(requestContext(c), c.Param("id"), services.UpdateAssignmentInput{
		ValidFrom:               body.ValidFrom,
		ValidUntil:              body.ValidUntil,
		OverrideDoors:           body.OverrideDoors,
		CustomDoorIDs:           body.CustomDoorIDs,
		AdditionalDoorIDs:       body.AdditionalDoorIDs,
		OverrideTimeRestriction: body.OverrideTimeRestriction.toModel(),
		ClearTimeOverride:       body.ClearTimeOverride,
		IsActive:                body.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, assignment)
}

// DELETE /api/assignments/:id
func (h *AssignmentHandler) Revoke(c *gin.Context) {
	if err := h.svc.Revoke(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"revoked": true})
}
