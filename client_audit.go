package parkgate

import (
	"context"
	"time"
)

const (
	auditEventBootstrapResolved = "bootstrap_resolved"
	auditEventBootstrapSkipped  = "bootstrap_skipped_expired"
	auditEventLoginSuccess      = "login_success"
	auditEventLoginFailure      = "login_failure"
	auditEventLogout            = "logout"
	auditEventForcedInvalidate  = "forced_invalidation"
	auditEventStaleDropped      = "stale_result_dropped"
	auditEventEpisodeOpened     = "episode_opened"
	auditEventEpisodeAbsorbed   = "episode_absorbed"
	auditEventGuardRedirect     = "guard_redirect"
)

func (c *Client) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	user *UserProfile,
	failure error,
	metadata func() map[string]string,
) {
	if c == nil || c.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: time.Now(),
		EventType: eventType,
		Success:   success,
	}
	if user != nil {
		event.UserID = user.ID
		event.Role = string(user.Role)
	}
	if failure != nil {
		event.Error = failure.Error()
	}
	if metadata != nil {
		event.Metadata = metadata()
	}
	if label := callLabelFromContext(ctx); label != "" {
		if event.Metadata == nil {
			event.Metadata = map[string]string{}
		}
		event.Metadata["caller"] = label
	}

	c.audit.Emit(ctx, event)
}
