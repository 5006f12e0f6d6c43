package attendance

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"absensi-backend/internal/platform/access"
	"absensi-backend/internal/platform/apperr"
	"absensi-backend/internal/platform/auth"
)

type Handler struct {
	svc    *Service
	scopes *access.Resolver
}

func RegisterRoutes(r gin.IRoutes, svc *Service, scopes *access.Resolver) {
	h := &Handler{svc: svc, scopes: scopes}

	// kiosk entry point
	r.POST("/scan", h.Scan)
	// slot table for the kiosk display
	r.GET("/schedule", h.Schedule)

	// manual override + ledger reads
	r.POST("/attendance", h.SetStatus)
	r.GET("/attendance", h.List)
	r.GET("/attendance/board", h.DayBoard)
}

func (h *Handler) scope(c *gin.Context) (access.Scope, bool) {
	sess, ok := auth.SessionFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session"})
		return access.Scope{}, false
	}
	scope, err := h.scopes.Resolve(c.Request.Context(), sess)
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return access.Scope{}, false
	}
	return scope, true
}

// POST /scan
func (h *Handler) Scan(c *gin.Context) {
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apperr.Invalid("nis is required"))
		return
	}

	resp, err := h.svc.Scan(c.Request.Context(), req)
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	// unregistered keeps its own status so the kiosk can say "NIS not
	// registered" instead of a generic failure
	if resp.Result == ScanUnregistered {
		c.JSON(http.StatusNotFound, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GET /schedule
func (h *Handler) Schedule(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"slots": h.svc.schedule.Slots()})
}

// POST /attendance
func (h *Handler) SetStatus(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}

	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apperr.Invalid("date, studentId, status are required"))
		return
	}

	resp, err := h.svc.SetStatus(c.Request.Context(), scope, req)
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GET /attendance
func (h *Handler) List(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}

	q := ListQuery{
		StudentID: c.Query("studentId"),
		On:        c.Query("on"),
		From:      c.Query("from"),
		To:        c.Query("to"),
		Limit:     parseIntDefault(c.Query("limit"), DefaultPageLimit),
		Offset:    parseIntDefault(c.Query("offset"), 0),
	}

	resp, err := h.svc.List(c.Request.Context(), scope, q)
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GET /attendance/board?classId=&date=
func (h *Handler) DayBoard(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}

	resp, err := h.svc.DayBoard(c.Request.Context(), scope, c.Query("classId"), c.Query("date"))
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
