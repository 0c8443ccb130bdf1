package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"simple-store/internal/domain"
	usersvc "simple-store/internal/service/user"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *handlers) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Username and password are required."})
		return
	}
	_, err := h.users.Register(c.Request.Context(), req.Username, req.Password)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, gin.H{"message": "User created successfully!"})
	case errors.Is(err, usersvc.ErrMissingCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Username and password are required."})
	case errors.Is(err, domain.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"message": "Username already exists."})
	default:
		h.logger.Printf("register request_id=%s error=%v", requestID(c), err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error registering new user.", "error": publicError(err)})
	}
}

func (h *handlers) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid username or password."})
		return
	}
	u, err := h.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, usersvc.ErrInvalidCredentials) || errors.Is(err, usersvc.ErrMissingCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid username or password."})
			return
		}
		h.logger.Printf("login request_id=%s error=%v", requestID(c), err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error during login.", "error": publicError(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful!",
		"user":    gin.H{"id": u.ID, "username": u.Username},
	})
}
