package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Sam-D-04/access-control-building/internal/services"
	"github.com/Sam-D-04/access-control-building/pkg/response"
)

// AccessOptions carries operator-controlled decision settings into the
// handler. Diagnostics is a deployment switch, never a request field: the
// failure breakdown names permissions and policy details that unauthenticated
// readers must not be able to request.
type AccessOptions struct {
	Diagnostics bool
	QRFreshness time.Duration
}

// AccessHandler exposes the two scan endpoints the door readers call.
type AccessHandler struct {
	svc         *services.AccessService
	diagnostics bool
}

// NewAccessHandler wires the access decision service into HTTP.
func NewAccessHandler(db *gorm.DB, notifier services.AccessNotifier, opts AccessOptions) (*AccessHandler, error) {
	logs, err := services.NewAccessLogService(db)
	if err != nil {
		return nil, err
	}

	var svcOpts []services.AccessOption
	if opts.QRFreshness > 0 {
		svcOpts = append(svcOpts, services.WithQRFreshness(opts.QRFreshness))
	}
	svc, err := services.NewAccessService(db, logs, notifier, svcOpts...)
	if err != nil {
		return nil, err
	}
	return &AccessHandler{svc: svc, diagnostics: opts.Diagnostics}, nil
}

type cardScanRequest struct {
	CardUID string `json:"card_uid" validate:"required,min=4,max=64"`
	DoorID  string `json:"door_id" validate:"required,uuid4"`
}

type qrScanRequest struct {
	UserID     string `json:"user_id" validate:"required,uuid4"`
	EmployeeID string `json:"employee_id" validate:"required,max=64"`
	Timestamp  int64  `json:"timestamp" validate:"required"`
	DoorID     string `json:"door_id" validate:"required,uuid4"`
}

// POST /api/access/check
func (h *AccessHandler) CheckCard(c *gin.Context) {
	var body cardScanRequest
	if !bindAndValidate(c, &body) {
		return
	}

	decision, err := h.svc.CheckCard(requestContext(c), services.CardScanInput{
		CardUID:     body.CardUID,
		DoorID:      body.DoorID,
		Diagnostics: h.diagnostics,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, decision)
}

// POST /api/access/qr
func (h *AccessHandler) CheckQR(c *gin.Context) {
	var body qrScanRequest
	if !bindAndValidate(c, &body) {
		return
	}

	decision, err := h.svc.CheckQR(requestContext(c), services.QRScanInput{
		UserID:      body.UserID,
		EmployeeID:  body.EmployeeID,
		Timestamp:   body.Timestamp,
		DoorID:      body.DoorID,
		Diagnostics: h.diagnostics,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, decision)
}
