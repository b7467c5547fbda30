package console

import (
	"context"

	"github.com/diallo/callreview/internal/upload"
	"github.com/diallo/callreview/pkg/errors"
	"github.com/diallo/callreview/pkg/i18n"
)

// Severity of a notification
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarn    Severity = "warn"
	SeverityError   Severity = "error"
)

// Display lifetimes in milliseconds
const (
	lifeSuccess = 2000
	lifeError   = 3000
)

// Notification is a transient message for the operator. A failed operation
// carries exactly one.
type Notification struct {
	Severity Severity `json:"severity"`
	Summary  string   `json:"summary"`
	Detail   string   `json:"detail"`
	LifeMs   int      `json:"life_ms"`
}

func uploadedNotification(ctx context.Context) Notification {
	return Notification{
		Severity: SeveritySuccess,
		Summary:  i18n.TFromContext(ctx, "notifications.uploaded"),
		Detail:   i18n.TFromContext(ctx, "notifications.analysis_complete"),
		LifeMs:   lifeSuccess,
	}
}

// uploadFailure maps an upload error to its notification
func uploadFailure(ctx context.Context, err error) Notification {
	n := Notification{
		Severity: SeverityError,
		Summary:  i18n.TFromContext(ctx, "notifications.upload_failed"),
		Detail:   localize(ctx, err),
		LifeMs:   lifeError,
	}

	switch {
	case errors.Is(err, errors.ErrMissingFields):
		n.Summary = i18n.TFromContext(ctx, "notifications.missing_fields")
	case errors.Is(err, errors.ErrInvalidFileType):
		n.Summary = i18n.TFromContext(ctx, "notifications.invalid_file")
	case errors.Is(err, upload.ErrJobInFlight), errors.Is(err, upload.ErrTerminal), errors.Is(err, upload.ErrNotIdle):
		n.Severity = SeverityWarn
		n.Summary = i18n.TFromContext(ctx, "notifications.error")
	}
	return n
}

// fetchFailure is the notification of a failed read; detailKey names the fixed text
func fetchFailure(ctx context.Context, detailKey string) Notification {
	return Notification{
		Severity: SeverityError,
		Summary:  i18n.TFromContext(ctx, "notifications.error"),
		Detail:   i18n.TFromContext(ctx, detailKey),
		LifeMs:   lifeError,
	}
}

func requestFailure(ctx context.Context, err error) Notification {
	return Notification{
		Severity: SeverityError,
		Summary:  i18n.TFromContext(ctx, "notifications.error"),
		Detail:   localize(ctx, err),
		LifeMs:   lifeError,
	}
}

func localize(ctx context.Context, err error) string {
	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		return appErr.Localize(ctx)
	}
	return i18n.TFromContext(ctx, "errors.internal")
}
