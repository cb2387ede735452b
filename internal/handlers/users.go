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

type UserHandler struct {
	svc *services.UserService
}

func NewUserHandler(db *gorm.DB) (*UserHandler, error) {
	svc, err := services.NewUserService(db)
	if err != nil {
		return nil, err
	}
	return &UserHandler{svc: svc}, nil
}

type createUserRequest struct {
	Username     string  `json:"username" validate:"required,min=3,max=64"`
	FullName     string  `json:"full_name" validate:"required,max=128"`
	Email        string  `json:"email" validate:"omitempty,email"`
	EmployeeID   string  `json:"employee_id" validate:"required,max=64"`
	Role         string  `json:"role" validate:"required"`
	Position     string  `json:"position" validate:"omitempty,max=128"`
	DepartmentID *string `json:"department_id" validate:"omitempty,uuid4"`
}

type updateUserRequest struct {
	FullName     *string `json:"full_name" validate:"omitempty,max=128"`
	Email        *string `json:"email" validate:"omitempty,email"`
	Role         *string `json:"role"`
	Position     *string `json:"position" validate:"omitempty,max=128"`
	DepartmentID *string `json:"department_id" validate:"omitempty,uuid4"`
	IsActive     *bool   `json:"is_active"`
}

// POST /api/users
func (h *UserHandler) Create(c *gin.Context) {
	var body createUserRequest
	if !bindAndValidate(c, &body) {
		return
	}

	role := models.UserRole(strings.ToLower(strings.TrimSpace(body.Role)))
	if !models.ValidRole(role) {
		response.Error(c, errors.NewBadRequest("role must be one of admin, security, employee"))
		return
	}

	user, err := h.svc.Create(requestContext(c), services.CreateUserInput{
		Username:     strings.TrimSpace(body.Username),
		FullName:     strings.TrimSpace(body.FullName),
		Email:        strings.TrimSpace(body.Email),
		EmployeeID:   strings.TrimSpace(body.EmployeeID),
		Role:         role,
		Position:     strings.TrimSpace(body.Position),
		DepartmentID: body.DepartmentID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, user)
}

// GET /api/users
func (h *UserHandler) List(c *gin.Context) {
	opts := services.ListUsersOptions{
		Page:         parseIntQuery(c, "page", 1),
		PageSize:     parseIntQuery(c, "page_size", 50),
		DepartmentID: strings.TrimSpace(c.Query("department_id")),
		Role:         strings.TrimSpace(c.Query("role")),
	}

	users, total, err := h.svc.List(requestContext(c), opts)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, users, paginationMeta(opts.Page, opts.PageSize, total))
}

// GET /api/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.svc.GetByID(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// PATCH /api/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	var body updateUserRequest
	if !bindAndValidate(c, &body) {
		return
	}

	input := services.UpdateUserInput{
		FullName:     body.FullName,
		Email:        body.Email,
		Position:     body.Position,
		DepartmentID: body.DepartmentID,
		IsActive:     body.IsActive,
	}
	if body.Role != nil {
		role := models.UserRole(strings.ToLower(strings.TrimSpace(*body.Role)))
		if !models.ValidRole(role) {
			response.Error(c, errors.NewBadRequest("role must be one of admin, security, employee"))
			return
		}
		input.Role = &role
	}

	user, err := h.svc.Update(requestContext(c), c.Param("id"), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// DELETE /api/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
