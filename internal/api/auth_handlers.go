package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"feedlink-backend/internal/models"
	"feedlink-backend/internal/services"
	"feedlink-backend/internal/upstream"
)

// AuthHandlers proxies the auth flows to the backend and owns the local
// session lifecycle around them
type AuthHandlers struct {
	client     *upstream.Client
	auth       *services.AuthService
	sessions   *services.SessionService
	sessionTTL time.Duration
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(client *upstream.Client, auth *services.AuthService, sessions *services.SessionService, sessionTTLSeconds int) *AuthHandlers {
	return &AuthHandlers{
		client:     client,
		auth:       auth,
		sessions:   sessions,
		sessionTTL: time.Duration(sessionTTLSeconds) * time.Second,
	}
}

// decodeLoginUser accepts both a bare user object and a {"user": {...}}
// wrapper from the backend's login response
func decodeLoginUser(body []byte) (*models.User, bool) {
	var wrapper struct {
		User *models.User `json:"user"`
	}
	if err := json.Unmarshal(body, &wrapper); err == nil && wrapper.User != nil && wrapper.User.ID != 0 {
		return wrapper.User, true
	}

	var user models.User
	if err := json.Unmarshal(body, &user); err == nil && user.ID != 0 {
		return &user, true
	}
	return nil, false
}

// Login forwards credentials to the backend and, when accepted, mints a
// dashboard session token
func (h *AuthHandlers) Login(c *gin.Context) {
	var req models.UserLogin
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request data: " + err.Error(),
		})
		return
	}

	if !requireFields(c, map[string]string{
		"email":    req.Email,
		"password": req.Password,
	}, []string{"email", "password"}) {
		return
	}

	resp, err := h.client.DoJSON(c.Request.Context(), http.MethodPost, "/login/", req)
	if err != nil {
		relayError(c, err)
		return
	}
	if !resp.OK() {
		relay(c, resp)
		return
	}

	user, ok := decodeLoginUser(resp.Body)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Backend login response could not be decoded",
		})
		return
	}

	token, err := h.auth.GenerateToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to create session token: " + err.Error(),
		})
		return
	}

	session, err := h.sessions.CreateSession(*user, token, h.sessionTTL)
	if err != nil {
		// The token alone is enough to use the dashboard; a session row is
		// bookkeeping, so its failure is logged, not fatal.
		log.Printf("Failed to persist session for user %d: %v", user.ID, err)
	}

	data := gin.H{
		"user":  user,
		"token": token,
	}
	if session != nil {
		data["sessionId"] = session.ID
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
		"message": "Login successful",
	})
}

// RestoreSession rehydrates a dashboard session from its stored record.
// The dashboard calls this on load with the pair it was handed at login;
// the session row, not client-side state, is the source of truth.
func (h *AuthHandlers) RestoreSession(c *gin.Context) {
	var req struct {
		SessionID string `json:"sessionId"`
		Token     string `json:"token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request data: " + err.Error(),
		})
		return
	}

	if !requireFields(c, map[string]string{
		"sessionId": req.SessionID,
		"token":     req.Token,
	}, []string{"sessionId", "token"}) {
		return
	}

	user, err := h.sessions.ValidateSession(req.SessionID, req.Token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "Invalid session: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"user":  user,
			"token": req.Token,
		},
	})
}

// Signup forwards a registration to the backend
func (h *AuthHandlers) Signup(c *gin.Context) {
	var req models.UserSignup
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request data: " + err.Error(),
		})
		return
	}

	if !requireFields(c, map[string]string{
		"first_name": req.FirstName,
		"last_name":  req.LastName,
		"email":      req.Email,
		"password":   req.Password,
		"role":       req.Role,
	}, []string{"first_name", "last_name", "email", "password", "role"}) {
		return
	}

	resp, err := h.client.DoJSON(c.Request.Context(), http.MethodPost, "/signup/", req)
	if err != nil {
		relayError(c, err)
		return
	}
	relay(c, resp)
}

// ResetPassword forwards a password reset to the backend, recording the
// email so the multi-step flow survives across requests
func (h *AuthHandlers) ResetPassword(c *gin.Context) {
	var req struct {
		Email       string `json:"email"`
		Token       string `json:"token,omitempty"`
		NewPassword string `json:"new_password,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request data: " + err.Error(),
		})
		return
	}

	if !requireFields(c, map[string]string{"email": req.Email}, []string{"email"}) {
		return
	}

	resp, err := h.client.DoJSON(c.Request.Context(), http.MethodPost, "/reset-password/", req)
	if err != nil {
		relayError(c, err)
		return
	}

	if resp.OK() {
		if req.NewPassword == "" {
			// First step of the flow: remember which email asked for a reset
			if _, err := h.sessions.RecordResetRequest(req.Email); err != nil {
				log.Printf("Failed to record reset request for %s: %v", req.Email, err)
			}
		} else {
			if _, err := h.sessions.ConsumeResetRequest(req.Email); err != nil {
				log.Printf("Failed to consume reset request for %s: %v", req.Email, err)
			}
		}
	}

	relay(c, resp)
}

// Logout revokes the session token and deletes the session record
func (h *AuthHandlers) Logout(c *gin.Context) {
	token := c.GetString("sessionToken")
	if token != "" {
		if err := h.auth.BlacklistToken(token); err != nil {
			log.Printf("Failed to blacklist token: %v", err)
		}
	}

	var req struct {
		SessionID string `json:"sessionId"`
	}
	if err := c.ShouldBindJSON(&req); err == nil && req.SessionID != "" {
		if err := h.sessions.DeleteSession(req.SessionID); err != nil {
			log.Printf("Failed to delete session %s: %v", req.SessionID, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logged out successfully",
	})
}
