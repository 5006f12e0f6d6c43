package report

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"absensi-backend/internal/platform/access"
	"absensi-backend/internal/platform/apperr"
	"absensi-backend/internal/platform/auth"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	svc    *Service
	scopes *access.Resolver
}

func RegisterRoutes(r gin.IRoutes, svc *Service, scopes *access.Resolver) {
	h := &Handler{svc: svc, scopes: scopes}
	r.GET("/rekap", h.Rollup)
	r.GET("/rekap/export", h.Export)
	r.GET("/rekap/top", h.TopByStatus)
	r.GET("/dashboard/classes", h.ClassDistribution)
	r.GET("/dashboard/today", h.TodayStatusCounts)
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

func rollupQuery(c *gin.Context) RollupQuery {
	return RollupQuery{
		ClassID:   c.Query("classId"),
		StudentID: c.Query("studentId"),
		Start:     c.Query("start"),
		End:       c.Query("end"),
	}
}

// GET /rekap
func (h *Handler) Rollup(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}

	resp, err := h.svc.Rollup(c.Request.Context(), scope, rollupQuery(c))
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GET /rekap/export?classId=&start=&end=
func (h *Handler) Export(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}

	filename, data, err := h.svc.Export(c.Request.Context(), scope, rollupQuery(c))
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}

// GET /rekap/top?status=&limit=
func (h *Handler) TopByStatus(c *gin.Context) {
	if _, ok := h.scope(c); !ok {
		return
	}

	limit := DefaultRankLimit
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	rows, err := h.svc.TopByStatus(c.Request.Context(), c.Query("status"), limit)
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

// GET /dashboard/classes
func (h *Handler) ClassDistribution(c *gin.Context) {
	if _, ok := h.scope(c); !ok {
		return
	}

	rows, err := h.svc.ClassDistribution(c.Request.Context())
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

// GET /dashboard/today?classId=
func (h *Handler) TodayStatusCounts(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}

	resp, err := h.svc.TodayStatusCounts(c.Request.Context(), scope, c.Query("classId"))
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}
