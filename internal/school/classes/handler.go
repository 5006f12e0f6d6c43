package classes

import (
	"net/http"

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
	r.GET("/classes", h.List)
	r.GET("/classes/:id", h.Get)
	r.POST("/classes", h.Create)
	r.PUT("/classes/:id", h.Update)
	r.DELETE("/classes/:id", h.Delete)
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

func (h *Handler) List(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), scope)
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Get(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), scope, c.Param("id"))
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apperr.Invalid("name, academicYear, semester are required"))
		return
	}

	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apperr.Invalid("name, academicYear, semester are required"))
		return
	}

	resp, err := h.svc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
