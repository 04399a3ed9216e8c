package api

import (
	"errors"
	"net/http"

	reqdto "arequita-backend/internal/handler/dto/request"
	resdto "arequita-backend/internal/handler/dto/response"
	"arequita-backend/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	auth *commands.AuthCommands
}

func NewAuthHandler(auth *commands.AuthCommands) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// @Summary Admin login
// @Description Authenticate an operator and issue a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body reqdto.LoginRequest true "Credentials"
// @Success 200 {object} resdto.LoginResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req reqdto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Formato de solicitud inválido",
		})
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, commands.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Usuario o contraseña incorrectos",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error interno del servidor",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.LoginResponse{Token: token})
}
