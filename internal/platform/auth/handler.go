package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"absensi-backend/internal/platform/apperr"
)

type Handler struct{ svc AuthService }

// RegisterPublicRoutes mounts the unauthenticated login endpoint.
func RegisterPublicRoutes(r gin.IRoutes, svc AuthService) {
	h := &Handler{svc: svc}
	r.POST("/login", h.Login)
}

// RegisterAdminRoutes mounts user management; callers must wrap the group
// with RequireAuth + RequireRole(RoleAdmin).
func RegisterAdminRoutes(r gin.IRoutes, svc AuthService) {
	h := &Handler{svc: svc}
	r.POST("/users", h.CreateUser)
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
	ID    string `json:"id"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type CreateUserRequest struct {
	Name      string  `json:"name" binding:"required"`
	Username  string  `json:"username" binding:"required"`
	Password  string  `json:"password" binding:"required"`
	Role      string  `json:"role" binding:"required"`
	TeacherID *string `json:"teacher_id,omitempty"`
	StudentID *string `json:"student_id,omitempty"`
	ClassID   *string `json:"class_id,omitempty"`
}

type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apperr.Invalid("username and password are required"))
		return
	}

	token, sess, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		// Login failures are always 401 to the client, whatever the cause.
		if apperr.ToHTTPStatus(err) >= 500 {
			c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token: token,
		ID:    sess.UserID,
		Name:  sess.Name,
		Role:  sess.Role,
	})
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apperr.Invalid("name, username, password, role are required"))
		return
	}

	resp, err := h.svc.CreateUser(c.Request.Context(), req)
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}

	c.JSON(http.StatusCreated, resp)
}
