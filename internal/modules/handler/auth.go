package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hossamdev/portfolio-api/internal/infra/identity"
	"github.com/hossamdev/portfolio-api/internal/middleware"
	"github.com/hossamdev/portfolio-api/internal/modules/serializer"
)

type AuthHandler struct {
	provider identity.Provider
}

func NewAuthHandler(p identity.Provider) *AuthHandler {
	return &AuthHandler{provider: p}
}

type LoginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login godoc
//
//	@Summary		Admin login
//	@Description	Exchange email and password for a bearer session. Bad credentials yield 401, never a fake success.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		LoginReq	true	"Credentials"
//	@Success		200		{object}	serializer.Response{data=identity.Session}
//	@Router			/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	req := LoginReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	session, err := h.provider.SignIn(req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr("invalid email or password"))
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Msg: "logged in", Data: session})
}

// Logout godoc
//
//	@Summary	Revoke the current session
//	@Tags		auth
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	serializer.Response{}
//	@Router		/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	auth := c.GetHeader("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}
	if err := h.provider.SignOut(strings.TrimPrefix(auth, "Bearer ")); err != nil {
		c.JSON(http.StatusInternalServerError, serializer.Err(http.StatusInternalServerError, "logout failed", err))
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Msg: "logged out"})
}

// Session godoc
//
//	@Summary	Current admin identity
//	@Tags		auth
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	serializer.Response{data=identity.User}
//	@Router		/admin/session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	user := c.MustGet(middleware.AdminKey).(*identity.User)
	c.JSON(http.StatusOK, serializer.Response{Data: user})
}
