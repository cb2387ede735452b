package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Sam-D-04/access-control-building/internal/models"
	"github.com/Sam-D-04/access-control-building/internal/services"
	"github.com/Sam-D-04/access-control-building/pkg/errors"
	"github.com/Sam-D-04/access-control-building/pkg/response"
)

type PermissionHandler struct {
	svc *services.PermissionService
}

func NewPermissionHandler(db *gorm.DB) (*PermissionHandler, error) {
	svc, err := services.NewPermissionService(db)
	if err != nil {
		return nil, err
	}
	return &PermissionHandler{svc: svc}, nil
}

type timeRestrictionPayload struct {
	Days      []string `json:"days" validate:"required,min=1"`
	StartTime string   `json:"start_time" validate:"omitempty,len=5"`
	EndTime   string   `json:"end_time" validate:"omitempty,len=5"`
}

func (p *timeRestrictionPayload) toModel() *models.TimeRestriction {
	if p == nil {
		return nil
	}
	return &models.TimeRestriction{
		Days:      p.Days,
		StartTime: p.StartTime,
		EndTime:   p.EndTime,
	}
}

type createPermissionRequest struct {
	Name            string                  `json:"name" validate:"required,min=2,max=128"`
	Description     string                  `json:"description" validate:"omitempty,max=512"`
	DoorAccessMode  string                  `json:"door_access_mode" validate:"required"`
	DoorIDs         []string                `json:"door_ids" validate:"omitempty,dive,uuid4"`
	TimeRestriction *timeRestrictionPayload `json:"time_restriction"`
	Priority        int                     `json:"priority" validate:"gte=0,lte=1000"`
}

type updatePermissionRequest struct {
	Name             *string                 `json:"name" validate:"omitempty,min=2,max=128"`
	Description      *string                 `json:"description" validate:"omitempty,max=512"`
	DoorAccessMode   *string                 `json:"door_access_mode"`
	DoorIDs          []string                `json:"door_ids" validate:"omitempty,dive,uuid4"`
	TimeRestriction  *timeRestrictionPayload `json:"time_restriction"`
	ClearRestriction bool                    `json:"clear_restriction"`
	Priority         *int                    `json:"priority" validate:"omitempty,gte=0,lte=1000"`
	IsActive         *bool                   `json:"is_active"`
}

// POST /api/permissions
func (h *PermissionHandler) Create(c *gin.Context) {
	var body createPermissionRequest
	if !bindAndValidate(c, &body) {
		return
	}

	mode := models.DoorAccessMode(strings.ToLower(strings.TrimSpace(body.DoorAccessMode)))
	if !models.ValidDoorAccessMode(mode) {
		response.Error(c, errors.NewBadRequest("door_access_mode must be one of all, specific, none"))
		return
	}

	perm, err := h.svc.Create(requestContext(c), services.CreatePermissionInput{
		Name:            strings.TrimSpace(body.Name),
		Description:     strings.TrimSpace(body.Description),
		DoorAccessMode:  mode,
		DoorIDs:         body.DoorIDs,
		TimeRestriction: body.TimeRestriction.toModel(),
		Priority:        body.Priority,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, perm)
}

// GET /api/permissions
func (h *PermissionHandler) List(c *gin.Context) {
	perms, err := h.svc.List(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, perms)
}

// GET /api/permissions/:id
func (h *PermissionHandler) Get(c *gin.Context) {
	perm, err := h.svc.GetByID(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, perm)
}

// PATCH /api/permissions/:id
func (h *PermissionHandler) Update(c *gin.Context) {
	var body updatePermissionRequest
	if !bindAndValidate(c, &body) {
		return
	}

	input := services.UpdatePermissionInput{
		Name:             body.Name,
		Description:      body.Description,
		DoorIDs:          body.DoorIDs,
		TimeRestriction:  body.TimeRestriction.toModel(),
		ClearRestriction: body.ClearRestriction,
		Priority:         body.Priority,
		IsActive:         body.IsActive,
	}
	if body.DoorAccessMode != nil {
		mode := models.DoorAccessMode(strings.ToLower(strings.TrimSpace(*body.DoorAccessMode)))
		if !models.ValidDoorAccessMode(mode) {
			response.Error(c, errors.NewBadRequest("door_access_mode must be one of all, specific, none"))
			return
		}
		input.DoorAccessMode = &mode
	}

	perm, err := h.svc.Update(requestContext(c), c.Param("id"), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, perm)
}

// DELETE /api/permissions/:id
func (h *PermissionHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
