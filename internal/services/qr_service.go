package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	qrcode "github.com/skip2/go-qrcode"
	"gorm.io/gorm"

	"github.com/Sam-D-04/access-control-building/internal/models"
	apperrors "github.com/Sam-D-04/access-control-building/pkg/errors"
)

// QRPass is the payload embedded in a generated QR code. Timestamp is
// milliseconds since the Unix epoch; readers reject passes older than the
// freshness window.
type QRPass struct {
	UserID     string `json:"user_id"`
	EmployeeID string `json:"employee_id"`
	Timestamp  int64  `json:"timestamp"`
}

// QRService issues short-lived QR passes for card holders.
type QRService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewQRService constructs a QRService instance.
func NewQRService(db *gorm.DB, opts ...QROption) (*QRService, error) {
	if db == nil {
		return nil, errors.New("qr service: db is required")
	}

	s := &QRService{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// QROption customises the QRService.
type QROption func(*QRService)

// WithQRClock overrides the clock, primarily for tests.
func WithQRClock(now func() time.Time) QROption {
	return func(s *QRService) {
		if now != nil {
			s.now = now
		}
	}
}

// IssuePass creates a fresh pass for an active user.
func (s *QRService) IssuePass(ctx context.Context, userID string) (*QRPass, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("qr service: load user: %w", err)
	}

	if !user.IsActive {
		return nil, apperrors.NewBadRequest("cannot issue a pass for a deactivated account")
	}

	return &QRPass{
		UserID:     user.ID,
		EmployeeID: user.EmployeeID,
		Timestamp:  s.now().UnixMilli(),
	}, nil
}

// RenderPNG encodes the pass as a QR code image.
func (s *QRService) RenderPNG(pass *QRPass, size int) ([]byte, error) {
	if pass == nil {
		return nil, errors.New("qr service: pass is required")
	}
	if size <= 0 {
		size = 256
	}

	payload, err := json.Marshal(pass)
	if err != nil {
		return nil, fmt.Errorf("qr service: marshal pass: %w", err)
	}

	png, err := qrcode.Encode(string(payload), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("qr service: encode qr: %w", err)
	}
	return png, nil
}
