package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Sam-D-04/access-control-building/internal/services"
	"github.com/Sam-D-04/access-control-building/pkg/response"
)

// PassHandler issues short-lived QR passes for the mobile credential flow.
type PassHandler struct {
	svc *services.QRService
}

func NewPassHandler(db *gorm.DB) (*PassHandler, error) {
	svc, err := services.NewQRService(db)
	if err != nil {
		return nil, err
	}
	return &PassHandler{svc: svc}, nil
}

// POST /api/users/:id/qr-pass
func (h *PassHandler) Issue(c *gin.Context) {
	pass, err := h.svc.IssuePass(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, pass)
}

// GET /api/users/:id/qr-pass.png
func (h *PassHandler) RenderPNG(c *gin.Context) {
	pass, err := h.svc.IssuePass(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	size := parseIntQuery(c, "size", 0)
	png, err := h.svc.RenderPNG(pass, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
