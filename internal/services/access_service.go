package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Sam-D-04/access-control-building/internal/access"
	"github.com/Sam-D-04/access-control-building/internal/models"
	apperrors "github.com/Sam-D-04/access-control-building/pkg/errors"
	"github.com/Sam-D-04/access-control-building/pkg/logger"
	"github.com/Sam-D-04/access-control-building/pkg/metrics"
)

// DefaultQRFreshness is the maximum age of a QR payload before it is
// rejected as stale, independent of any permission time window.
const DefaultQRFreshness = 120 * time.Second

var (
	// ErrDoorNotFound means the requested door id does not exist; the attempt
	// is ambiguous and is rejected without an audit entry.
	ErrDoorNotFound = apperrors.New("DOOR_NOT_FOUND", "Door not found", http.StatusNotFound)
	// ErrQRExpired rejects QR payloads outside the freshness window.
	ErrQRExpired = apperrors.New("QR_EXPIRED", "QR code has expired", http.StatusBadRequest)
	// ErrAuditWriteFailed surfaces a failed audit write as a hard error
	// rather than silently completing the decision.
	ErrAuditWriteFailed = apperrors.New("AUDIT_WRITE_FAILED", "Failed to record access attempt", http.StatusInternalServerError)
)

// CardScanInput is a physical card swipe against a door.
type CardScanInput struct {
	CardUID string
	DoorID  string
	// Diagnostics includes the per-permission failure breakdown in denial
	// responses. Set from deployment configuration, never from request data.
	Diagnostics bool
}

// QRScanInput is a QR code presentation against a door. Timestamp is
// milliseconds since the Unix epoch, stamped when the code was issued.
type QRScanInput struct {
	UserID      string
	EmployeeID  string
	Timestamp   int64
	DoorID      string
	Diagnostics bool
}

// AccessService resolves credentials, runs the decision engine, writes the
// audit trail, and publishes the outcome. The engine itself stays pure; all
// I/O lives here.
type AccessService struct {
	db          *gorm.DB
	logs        *AccessLogService
	notifier    AccessNotifier
	now         func() time.Time
	qrFreshness time.Duration
	log         *zap.Logger
}

// AccessOption customises the AccessService.
type AccessOption func(*AccessService)

// WithClock overrides the clock, primarily for tests.
func WithClock(now func() time.Time) AccessOption {
	return func(s *AccessService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithQRFreshness overrides the QR staleness window.
func WithQRFreshness(window time.Duration) AccessOption {
	return func(s *AccessService) {
		if window > 0 {
			s.qrFreshness = window
		}
	}
}

// NewAccessService constructs an AccessService. The notifier may be nil, in
// which case events are simply not published.
func NewAccessService(db *gorm.DB, logs *AccessLogService, notifier AccessNotifier, opts ...AccessOption) (*AccessService, error) {
	if db == nil {
		return nil, errors.New("access service: db is required")
	}
	if logs == nil {
		return nil, errors.New("access service: access log service is required")
	}

	s := &AccessService{
		db:          db,
		logs:        logs,
		notifier:    notifier,
		now:         time.Now,
		qrFreshness: DefaultQRFreshness,
		log:         logger.WithModule("access"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// CheckCard evaluates a physical card swipe. Policy denials are normal
// decisions, always audited; only validation failures, unknown doors, and
// audit write failures return an error.
func (s *AccessService) CheckCard(ctx context.Context, input CardScanInput) (*access.Decision, error) {
	ctx = ensureContext(ctx)

	uid := strings.TrimSpace(input.CardUID)
	doorID := strings.TrimSpace(input.DoorID)
	if uid == "" {
		return nil, apperrors.NewBadRequest("card uid is required")
	}
	if doorID == "" {
		return nil, apperrors.NewBadRequest("door id is required")
	}

	now := s.now()

	door, err := s.loadDoor(ctx, doorID)
	if err != nil {
		return s.failClosed(ctx, nil, nil, &doorID, now, err)
	}
	if door == nil {
		return nil, ErrDoorNotFound
	}

	card, err := s.loadCard(ctx, uid)
	if err != nil {
		return s.failClosed(ctx, nil, nil, &door.ID, now, err)
	}
	if card == nil {
		// An unknown card presented at a real door is itself a deny outcome
		// worth auditing.
		decision := access.Deny(access.ReasonCardNotFound)
		if err := s.audit(ctx, nil, nil, &door.ID, now, decision); err != nil {
			return nil, err
		}
		s.publish(decisionEvent(decision, uid, nil, door, now))
		return &decision, nil
	}

	return s.decide(ctx, card, door, now, input.Diagnostics)
}

// CheckQR evaluates a QR code presentation. Stale payloads are rejected
// before any entity lookup.
func (s *AccessService) CheckQR(ctx context.Context, input QRScanInput) (*access.Decision, error) {
	ctx = ensureContext(ctx)

	userID := strings.TrimSpace(input.UserID)
	employeeID := strings.TrimSpace(input.EmployeeID)
	doorID := strings.TrimSpace(input.DoorID)
	if userID == "" || employeeID == "" {
		return nil, apperrors.NewBadRequest("qr payload is missing user identification")
	}
	if doorID == "" {
		return nil, apperrors.NewBadRequest("door id is required")
	}
	if input.Timestamp <= 0 {
		return nil, apperrors.NewBadRequest("qr payload is missing its timestamp")
	}

	now := s.now()
	if now.UnixMilli()-input.Timestamp > s.qrFreshness.Milliseconds() {
		return nil, ErrQRExpired
	}

	door, err := s.loadDoor(ctx, doorID)
	if err != nil {
		return s.failClosed(ctx, nil, nil, &doorID, now, err)
	}
	if door == nil {
		return nil, ErrDoorNotFound
	}

	var user models.User
	err = s.db.WithContext(ctx).First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && user.EmployeeID != employeeID) {
		decision := access.Deny("invalid QR credential")
		if auditErr := s.audit(ctx, nil, nil, &door.ID, now, decision); auditErr != nil {
			return nil, auditErr
		}
		s.publish(decisionEvent(decision, "", nil, door, now))
		return &decision, nil
	}
	if err != nil {
		return s.failClosed(ctx, nil, &userID, &door.ID, now, err)
	}

	card, err := s.activeCardForUser(ctx, user.ID)
	if err != nil {
		return s.failClosed(ctx, nil, &user.ID, &door.ID, now, err)
	}
	if card == nil {
		decision := access.Deny("no active card")
		if auditErr := s.audit(ctx, nil, &user.ID, &door.ID, now, decision); auditErr != nil {
			return nil, auditErr
		}
		s.publish(decisionEvent(decision, "", &user, door, now))
		return &decision, nil
	}
	card.User = &user

	return s.decide(ctx, card, door, now, input.Diagnostics)
}

func (s *AccessService) decide(ctx context.Context, card *models.Card, door *models.Door, now time.Time, diagnostics bool) (*access.Decision, error) {
	var userID *string
	if card.User != nil {
		userID = &card.User.ID
	}

	assignments, err := s.loadAssignments(ctx, card.ID)
	if err != nil {
		return s.failClosed(ctx, &card.ID, userID, &door.ID, now, err)
	}

	decision := access.Evaluate(access.Input{
		Card:        card,
		User:        card.User,
		Door:        door,
		Assignments: assignments,
		Now:         now,
	})

	if err := s.audit(ctx, &card.ID, userID, &door.ID, now, decision); err != nil {
		return nil, err
	}

	s.publish(decisionEvent(decision, card.UID, card.User, door, now))

	if !diagnostics {
		decision.Checked = nil
	}
	return &decision, nil
}

// failClosed converts a system error into a denial, still attempting to
// audit the failure. Uncertainty never resolves to a grant.
func (s *AccessService) failClosed(ctx context.Context, cardID, userID, doorID *string, now time.Time, cause error) (*access.Decision, error) {
	s.log.Error("access evaluation failed", zap.Error(cause))

	decision := access.Deny(access.ReasonSystemError)
	if err := s.audit(ctx, cardID, userID, doorID, now, decision); err != nil {
		return nil, err
	}
	return &decision, nil
}

func (s *AccessService) audit(ctx context.Context, cardID, userID, doorID *string, now time.Time, decision access.Decision) error {
	status := models.AccessDenied
	if decision.Granted {
		status = models.AccessGranted
	}

	_, err := s.logs.Record(ctx, AccessEntry{
		CardID:     cardID,
		UserID:     userID,
		DoorID:     doorID,
		AccessTime: now,
		Status:     status,
		Reason:     decision.Reason,
	})
	if err != nil {
		s.log.Error("audit write failed", zap.Error(err))
		return ErrAuditWriteFailed.WithInternal(err)
	}

	metrics.AccessDecisions.WithLabelValues(string(status), decision.Reason).Inc()
	return nil
}

func (s *AccessService) publish(event AccessEvent) {
	if s.notifier == nil {
		return
	}
	s.notifier.PublishAccessEvent(event)
	metrics.AccessEventsPublished.Inc()
}

func (s *AccessService) loadDoor(ctx context.Context, doorID string) (*models.Door, error) {
	var door models.Door
	err := s.db.WithContext(ctx).First(&door, "id = ?", doorID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("access service: load door: %w", err)
	}
	return &door, nil
}

func (s *AccessService) loadCard(ctx context.Context, uid string) (*models.Card, error) {
	var card models.Card
	err := s.db.WithContext(ctx).Preload("User").First(&card, "uid = ?", uid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("access service: load card: %w", err)
	}
	return &card, nil
}

func (s *AccessService) activeCardForUser(ctx context.Context, userID string) (*models.Card, error) {
	var card models.Card
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("issued_at DESC").
		First(&card).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("access service: load user card: %w", err)
	}
	return &card, nil
}

func (s *AccessService) loadAssignments(ctx context.Context, cardID string) ([]models.CardPermission, error) {
	var assignments []models.CardPermission
	err := s.db.WithContext(ctx).
		Preload("Permission").
		Where("card_id = ? AND is_active = ?", cardID, true).
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("access service: load assignments: %w", err)
	}
	return assignments, nil
}

func decisionEvent(decision access.Decision, cardUID string, user *models.User, door *models.Door, now time.Time) AccessEvent {
	event := AccessEvent{
		Granted:    decision.Granted,
		Reason:     decision.Reason,
		CardUID:    cardUID,
		OccurredAt: now,
	}
	if user != nil {
		event.UserName = user.FullName
	}
	if door != nil {
		event.DoorID = door.ID
		event.DoorName = door.Name
	}
	return event
}
