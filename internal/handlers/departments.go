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

type DepartmentHandler struct {
	svc *services.DepartmentService
}

func NewDepartmentHandler(db *gorm.DB) (*DepartmentHandler, error) {
	svc, err := services.NewDepartmentService(db)
	if err != nil {
		return nil, err
	}
	return &DepartmentHandler{svc: svc}, nil
}

type createDepartmentRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=128"`
	Description string `json:"description" validate:"omitempty,max=512"`
}

type updateDepartmentRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=128"`
	Description *string `json:"description" validate:"omitempty,max=512"`
	IsActive    *bool   `json:"is_active"`
}

// POST /api/departments
func (h *DepartmentHandler) Create(c *gin.Context) {
	var body createDepartmentRequest
	if !bindAndValidate(c, &body) {
		return
	}

	name := strings.TrimSpace(body.Name)
	if name == "" {
		response.Error(c, errors.NewBadRequest("name is required"))
		return
	}

	dept, err := h.svc.Create(requestContext(c), services.CreateDepartmentInput{
		Name:        name,
		Description: strings.TrimSpace(body.Description),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, dept)
}

// GET /api/departments
func (h *DepartmentHandler) List(c *gin.Context) {
	depts, err := h.svc.List(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, depts)
}

// GET /api/departments/:id
func (h *DepartmentHandler) Get(c *gin.Context) {
	dept, err := h.svc.GetByID(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, dept)
}

// PATCH /api/departments/:id
func (h *DepartmentHandler) Update(c *gin.Context) {
	var body updateDepartmentRequest
	if !bindAndValidate(c, &body) {
		return
	}

	dept, err := h.svc.Update(requestContext(c), c.Param("id"), services.UpdateDepartmentInput{
		Name:        body.Name,
		Description: body.Description,
		IsActive:    body.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, dept)
}

// DELETE /api/departments/:id
func (h *DepartmentHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
