// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/sandoghapp/sandogh/internal/app/store/audit"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for authentication events.
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off"
	Auth string
	// Fund controls logging for fund events (member CRUD, payments,
	// assignment runs, policy changes). Same values as Auth.
	Fund string
}

// Logger provides convenience methods for logging audit events to both
// MongoDB (via audit.Store) and structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{store: store, zapLog: zapLog, config: config}
}

// ClientIP extracts the client IP from the request, honoring proxy headers.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.MemberID != nil {
		fields = append(fields, zap.String("member_id", event.MemberID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration. A nil logger is a
// no-op so tests can skip auditing entirely.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	mode := l.config.Fund
	if event.Category == audit.CategoryAuth {
		mode = l.config.Auth
	}

	switch mode {
	case "off":
		return
	case "db":
		l.logToDB(ctx, event)
	case "log":
		l.logToZap(event)
	default: // "all" and unrecognized modes keep full logging
		l.logToDB(ctx, event)
		l.logToZap(event)
	}
}

func (l *Logger) logToDB(ctx context.Context, event audit.Event) {
	if l.store == nil {
		return
	}
	if err := l.store.Log(ctx, event); err != nil {
		l.zapLog.Error("audit event persist failed",
			zap.String("event_type", event.EventType), zap.Error(err))
	}
}

// Auth logs an authentication event.
func (l *Logger) Auth(ctx context.Context, r *http.Request, eventType string, memberID *primitive.ObjectID, success bool, failureReason string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     eventType,
		MemberID:      memberID,
		IP:            ClientIP(r),
		Success:       success,
		FailureReason: failureReason,
	})
}

// Fund logs a fund event performed by actorID against memberID (either may
// be nil for system-level events).
func (l *Logger) Fund(ctx context.Context, r *http.Request, eventType string, actorID, memberID *primitive.ObjectID, details map[string]string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryFund,
		EventType: eventType,
		MemberID:  memberID,
		ActorID:   actorID,
		IP:        ClientIP(r),
		Success:   true,
		Details:   details,
	})
}
