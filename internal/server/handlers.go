package server

import (
	"time"

	"github.com/gin-gonic/gin"

	"hr-admin-platform/backend/internal/audit"
	auditdomain "hr-admin-platform/backend/internal/audit/domain"
	auditrepo "hr-admin-platform/backend/internal/audit/repository"
	"hr-admin-platform/backend/internal/errs"
	"hr-admin-platform/backend/internal/policy/scheduler"
	sessiondomain "hr-admin-platform/backend/internal/session/domain"
	sessionrepo "hr-admin-platform/backend/internal/session/repository"
	sessionservice "hr-admin-platform/backend/internal/session/service"
	settingsdomain "hr-admin-platform/backend/internal/settings/domain"
	settingsrepo "hr-admin-platform/backend/internal/settings/repository"
)

// Handlers holds the dependencies of the admin API.
type Handlers struct {
	lifecycle   *sessionservice.Lifecycle
	sched       *scheduler.Scheduler
	sessions    sessionrepo.Repository
	settings    settingsrepo.Repository
	auditRepo   auditrepo.Repository
	auditLogger audit.ActionLogger
	auditLimit  int32
}

// NewHandlers wires the admin API handlers.
func NewHandlers(
	lifecycle *sessionservice.Lifecycle,
	sched *scheduler.Scheduler,
	sessions sessionrepo.Repository,
	settings settingsrepo.Repository,
	auditRepo auditrepo.Repository,
	auditLogger audit.ActionLogger,
	auditLimit int32,
) *Handlers {
	if auditLimit <= 0 {
		auditLimit = 100
	}
	return &Handlers{
		lifecycle:   lifecycle,
		sched:       sched,
		sessions:    sessions,
		settings:    settings,
		auditRepo:   auditRepo,
		auditLogger: auditLogger,
		auditLimit:  auditLimit,
	}
}

type sessionResp struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
	ExpiresAt    time.Time `json:"expires_at"`
	IPAddress    string    `json:"ip_address,omitempty"`
	UserAgent    string    `json:"user_agent,omitempty"`
}

// The session token never leaves the store through this API.
func toSessionResp(s *sessiondomain.UserSession) sessionResp {
	return sessionResp{
		ID:           s.ID,
		UserID:       s.UserID,
		IsActive:     s.IsActive,
		CreatedAt:    s.CreatedAt,
		LastActivity: s.LastActivity,
		ExpiresAt:    s.ExpiresAt,
		IPAddress:    s.IPAddress,
		UserAgent:    s.UserAgent,
	}
}

type createSessionReq struct {
	SessionToken string    `json:"session_token" binding:"required"`
	ExpiresAt    time.Time `json:"expires_at" binding:"required"`
	IPAddress    string    `json:"ip_address"`
	UserAgent    string    `json:"user_agent"`
}

// CreateSession opens a session for the calling user.
func (h *Handlers) CreateSession(c *gin.Context) {
	var req createSessionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResp(c, errs.MissingField)
		return
	}
	s, err := h.lifecycle.CreateSession(c.Request.Context(), callerID(c), req.SessionToken, req.ExpiresAt, req.IPAddress, req.UserAgent)
	if err != nil {
		ErrorResp(c, err)
		return
	}
	SuccessResp(c, toSessionResp(s))
}

// TerminateSession marks a session inactive. Callers may terminate their own
// sessions; terminating another user's session requires the system admin role.
func (h *Handlers) TerminateSession(c *gin.Context) {
	id := c.Param("id")
	s, err := h.sessions.GetByID(c.Request.Context(), id)
	if err != nil {
		ErrorResp(c, err)
		return
	}
	if s == nil {
		ErrorResp(c, errs.SessionNotFound)
		return
	}
	if s.UserID != callerID(c) && !isSystemAdmin(c) {
		c.AbortWithStatusJSON(403, Resp{Code: 403, Message: "cannot terminate another user's session"})
		return
	}
	s, err = h.lifecycle.TerminateSession(c.Request.Context(), callerID(c), id)
	if err != nil {
		ErrorResp(c, err)
		return
	}
	SuccessResp(c, toSessionResp(s))
}

// ListMySessions returns the caller's active sessions, newest activity first.
func (h *Handlers) ListMySessions(c *gin.Context) {
	list, err := h.sessions.List(c.Request.Context(), sessionrepo.Filter{
		UserID:     callerID(c),
		ActiveOnly: true,
	})
	if err != nil {
		ErrorResp(c, err)
		return
	}
	out := make([]sessionResp, len(list))
	for i, s := range list {
		out[i] = toSessionResp(s)
	}
	SuccessResp(c, out)
}

type listSessionsQuery struct {
	UserID     string `form:"user_id"`
	ActiveOnly bool   `form:"active_only"`
	Limit      int32  `form:"limit"`
	Offset     int32  `form:"offset"`
}

// ListSessions returns sessions for any user. Admin only.
func (h *Handlers) ListSessions(c *gin.Context) {
	var q listSessionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		ErrorResp(c, errs.MissingField)
		return
	}
	if q.Limit <= 0 || q.Limit > 500 {
		q.Limit = 100
	}
	list, err := h.sessions.List(c.Request.Context(), sessionrepo.Filter{
		UserID:     q.UserID,
		ActiveOnly: q.ActiveOnly,
		Limit:      q.Limit,
		Offset:     q.Offset,
	})
	if err != nil {
		ErrorResp(c, err)
		return
	}
	out := make([]sessionResp, len(list))
	for i, s := range list {
		out[i] = toSessionResp(s)
	}
	SuccessResp(c, out)
}

type cleanupResp struct {
	Deactivated int64 `json:"deactivated"`
}

// CleanupSessions deactivates sessions idle past the configured timeout.
// Cleanup is an explicit administrative action; the scheduler only detects.
func (h *Handlers) CleanupSessions(c *gin.Context) {
	n, err := h.lifecycle.CleanupExpiredSessions(c.Request.Context(), callerID(c), time.Now().UTC())
	if err != nil {
		ErrorResp(c, err)
		return
	}
	// Refresh the published snapshots so pollers see the post-cleanup state.
	h.sched.RunComplianceCycle(c.Request.Context())
	h.sched.RunStatisticsCycle(c.Request.Context())
	SuccessResp(c, cleanupResp{Deactivated: n})
}

type complianceResp struct {
	Status      string          `json:"status"` // ok or unknown
	Policies    map[string]bool `json:"policies,omitempty"`
	EvaluatedAt time.Time       `json:"evaluated_at"`
}

// GetCompliance returns the latest policy compliance snapshot, evaluating on
// demand when no cycle has run yet.
func (h *Handlers) GetCompliance(c *gin.Context) {
	snap := h.sched.LatestCompliance()
	if snap.EvaluatedAt.IsZero() {
		snap = h.sched.RunComplianceCycle(c.Request.Context())
	}
	resp := complianceResp{Status: "ok", Policies: snap.Report, EvaluatedAt: snap.EvaluatedAt}
	if snap.Err != nil {
		resp.Status = "unknown"
		resp.Policies = nil
	}
	SuccessResp(c, resp)
}

type statisticsResp struct {
	Status      string    `json:"status"`
	Statistics  any       `json:"statistics,omitempty"`
	EvaluatedAt time.Time `json:"evaluated_at"`
}

// GetStatistics returns the latest session statistics snapshot. Admin only.
func (h *Handlers) GetStatistics(c *gin.Context) {
	snap := h.sched.LatestStatistics()
	if snap.EvaluatedAt.IsZero() {
		snap = h.sched.RunStatisticsCycle(c.Request.Context())
	}
	resp := statisticsResp{Status: "ok", EvaluatedAt: snap.EvaluatedAt}
	if snap.Err != nil {
		resp.Status = "unknown"
	} else {
		resp.Statistics = snap.Stats
	}
	SuccessResp(c, resp)
}

type auditEntryResp struct {
	ID           string    `json:"id"`
	Actor        string    `json:"actor"`
	Action       string    `json:"action"`
	ResourceType string    `json:"resource_type"`
	ResourceID   string    `json:"resource_id,omitempty"`
	Details      string    `json:"details,omitempty"`
	Severity     string    `json:"severity"`
	CreatedAt    time.Time `json:"created_at"`
}

// ListAuditLog returns the most recent audit entries. Admin only.
func (h *Handlers) ListAuditLog(c *gin.Context) {
	list, err := h.auditRepo.ListRecent(c.Request.Context(), h.auditLimit)
	if err != nil {
		ErrorResp(c, err)
		return
	}
	out := make([]auditEntryResp, len(list))
	for i, e := range list {
		out[i] = auditEntryResp{
			ID:           e.ID,
			Actor:        e.Actor,
			Action:       e.Action,
			ResourceType: e.ResourceType,
			ResourceID:   e.ResourceID,
			Details:      e.Details,
			Severity:     string(e.Severity),
			CreatedAt:    e.CreatedAt,
		}
	}
	SuccessResp(c, out)
}

type logActionReq struct {
	Action       string `json:"action" binding:"required"`
	ResourceType string `json:"resource_type" binding:"required"`
	ResourceID   string `json:"resource_id"`
	Details      string `json:"details"`
	Severity     string `json:"severity"`
}

// LogAction records an audit event on behalf of the UI layer.
func (h *Handlers) LogAction(c *gin.Context) {
	var req logActionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResp(c, errs.MissingField)
		return
	}
	h.auditLogger.LogAction(c.Request.Context(), callerID(c), req.Action, req.ResourceType,
		req.ResourceID, req.Details, auditdomain.Severity(req.Severity))
	SuccessResp(c)
}

type settingResp struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	Category  string    `json:"category"`
	UpdatedBy string    `json:"updated_by,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListSettings returns all security settings ordered by category. Admin only.
func (h *Handlers) ListSettings(c *gin.Context) {
	list, err := h.settings.List(c.Request.Context())
	if err != nil {
		ErrorResp(c, err)
		return
	}
	out := make([]settingResp, len(list))
	for i, s := range list {
		out[i] = settingResp{
			ID: s.ID, Key: s.Key, Value: s.Raw, Category: s.Category,
			UpdatedBy: s.UpdatedBy, UpdatedAt: s.UpdatedAt,
		}
	}
	SuccessResp(c, out)
}

type updateSettingReq struct {
	Value string `json:"value" binding:"required"`
}

// UpdateSetting validates and stores a new value for a setting. Admin only.
func (h *Handlers) UpdateSetting(c *gin.Context) {
	var req updateSettingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResp(c, errs.MissingField)
		return
	}
	id := c.Param("id")
	existing, err := h.settings.GetByID(c.Request.Context(), id)
	if err != nil {
		ErrorResp(c, err)
		return
	}
	if existing == nil {
		ErrorResp(c, errs.SettingNotFound)
		return
	}
	// Validate against the key's type before the value reaches the store.
	if _, err := settingsdomain.ParseValue(existing.Key, req.Value); err != nil {
		ErrorResp(c, err)
		return
	}
	updated, err := h.settings.Update(c.Request.Context(), id, req.Value, callerID(c))
	if err != nil {
		ErrorResp(c, err)
		return
	}
	if updated == nil {
		ErrorResp(c, errs.SettingNotFound)
		return
	}
	h.auditLogger.LogAction(c.Request.Context(), callerID(c), "setting.updated", "security_setting",
		updated.ID, existing.Key+"="+req.Value, auditdomain.SeverityInfo)
	SuccessResp(c, settingResp{
		ID: updated.ID, Key: updated.Key, Value: updated.Raw, Category: updated.Category,
		UpdatedBy: updated.UpdatedBy, UpdatedAt: updated.UpdatedAt,
	})
}
