package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Sam-D-04/access-control-building/internal/services"
	"github.com/Sam-D-04/access-control-building/pkg/errors"
	"github.com/Sam-D-04/access-control-building/pkg/response"
)

type DoorHandler struct {
	svc *services.DoorService
}

func NewDoorHandler(db *gorm.DB, notifier services.AccessNotifier) (*DoorHandler, error) {
	svc, err := services.NewDoorService(db, notifier)
	if err != nil {
		return nil, err
	}
	return &DoorHandler{svc: svc}, nil
}

type createDoorRequest struct {
	Name         string  `json:"name" validate:"required,min=2,max=128"`
	Location     string  `json:"location" validate:"omitempty,max=256"`
	DepartmentID *string `json:"department_id" validate:"omitempty,uuid4"`
}

type updateDoorRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=2,max=128"`
	Location     *string `json:"location" validate:"omitempty,max=256"`
	DepartmentID *string `json:"department_id" validate:"omitempty,uuid4"`
	IsActive     *bool   `json:"is_active"`
}

// POST /api/doors
func (h *DoorHandler) Create(c *gin.Context) {
	var body createDoorRequest
	if !bindAndValidate(c, &body) {
		return
	}

	name := strings.TrimSpace(body.Name)
	if name == "" {
		response.Error(c, errors.NewBadRequest("name is required"))
		return
	}

	door, err := h.svc.Create(requestContext(c), services.CreateDoorInput{
		Name:         name,
		Location:     strings.TrimSpace(body.Location),
		DepartmentID: body.DepartmentID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, door)
}

// GET /api/doors
func (h *DoorHandler) List(c *gin.Context) {
	opts := services.ListDoorsOptions{
		Page:         parseIntQuery(c, "page", 1),
		PageSize:     parseIntQuery(c, "page_size", 50),
		DepartmentID: strings.TrimSpace(c.Query("department_id")),
	}

	doors, total, err := h.svc.List(requestContext(c), opts)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, doors, paginationMeta(opts.Page, opts.PageSize, total))
}

// GET /api/doors/:id
func (h *DoorHandler) Get(c *gin.Context) {
	door, err := h.svc.GetByID(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, door)
}

// PATCH /api/doors/:id
func (h *DoorHandler) Update(c *gin.Context) {
	var body updateDoorRequest
	if !bindAndValidate(c, &body) {
		return
	}

	door, err := h.svc.Update(requestContext(c), c.Param("id"), services.UpdateDoorInput{
		Name:         body.Name,
		Location:     body.Location,
		DepartmentID: body.DepartmentID,
		IsActive:     body.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, door)
}

// POST /api/doors/:id/lock
func (h *DoorHandler) Lock(c *gin.Context) {
	door, err := h.svc.Lock(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, door)
}

// POST /api/doors/:id/unlock
func (h *DoorHandler) Unlock(c *gin.Context) {
	door, err := h.svc.Unlock(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, door)
}

// DELETE /api/doors/:id
func (h *DoorHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
