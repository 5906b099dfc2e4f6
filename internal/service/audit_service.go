package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/haras-web/internal/events"
)

// AuditService writes structured audit lines for authentication events.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger.Named("audit"),
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventUserSignedUp, a.handleUserSignedUp)
	a.dispatcher.Subscribe(events.EventLoginSucceeded, a.handleSessionEvent)
	a.dispatcher.Subscribe(events.EventSessionRefreshed, a.handleSessionEvent)
	a.dispatcher.Subscribe(events.EventLoggedOut, a.handleSessionEvent)
	a.dispatcher.Subscribe(events.EventLoginFailed, a.handleLoginFailed)
}

func (a *AuditService) handleUserSignedUp(_ context.Context, event events.Event) error {
	fields := a.baseFields(event)
	if payload, ok := event.Payload.(events.UserSignedUpPayload); ok {
		fields = append(fields, zap.String("role", payload.Role), zap.String("email_domain", payload.EmailDomain))
	}
	a.logger.Info(string(event.Type), fields...)
	return nil
}

func (a *AuditService) handleSessionEvent(_ context.Context, event events.Event) error {
	a.logger.Info(string(event.Type), a.baseFields(event)...)
	return nil
}

func (a *AuditService) handleLoginFailed(_ context.Context, event events.Event) error {
	fields := a.baseFields(event)
	if payload, ok := event.Payload.(events.LoginFailedPayload); ok {
		fields = append(fields, zap.String("email_domain", payload.EmailDomain))
	}
	a.logger.Warn(string(event.Type), fields...)
	return nil
}

func (a *AuditService) baseFields(event events.Event) []zap.Field {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.Time("at", event.Timestamp),
	}
	if event.UserID != 0 {
		fields = append(fields, zap.Int64("user_id", event.UserID))
	}
	return fields
}
