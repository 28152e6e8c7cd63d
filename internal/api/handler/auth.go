package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"wanderlink/backend/internal/models"
)

const tokenTTL = 72 * time.Hour

type tokenRequest struct {
	Pseudo string `json:"pseudo" binding:"required"`
	UserID string `json:"userId"`
}

// IssueToken mints a JWT for a pseudonymous user. Clients without an id
// get a fresh one; there is no password, identity is the device's token.
func (h *Handler) IssueToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pseudo is required"})
		return
	}
	if req.UserID == "" {
		req.UserID = "user_" + uuid.NewString()
	}

	claims := jwt.MapClaims{
		"sub":    req.UserID,
		"pseudo": req.Pseudo,
		"exp":    time.Now().Add(tokenTTL).Unix(),
		"iss":    "wanderlink-engine",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(h.JWTSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": signed, "userId": req.UserID, "pseudo": req.Pseudo})
}

func (h *Handler) parseToken(tokenString string) (models.User, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return h.JWTSecret, nil
	})
	if err != nil || !token.Valid {
		return models.User{}, errors.New("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.User{}, errors.New("invalid claims")
	}
	sub, _ := claims["sub"].(string)
	pseudo, _ := claims["pseudo"].(string)
	if sub == "" || pseudo == "" {
		return models.User{}, errors.New("incomplete claims")
	}
	return models.User{ID: sub, Pseudo: pseudo}, nil
}

// AuthRequired validates the bearer token and stores the caller on the
// context. WebSocket clients may pass the token as a query parameter
// since browsers cannot set headers on upgrade requests.
func (h *Handler) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			tokenString = strings.TrimPrefix(auth, "Bearer ")
		} else {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization token missing"})
			return
		}
		user, err := h.parseToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.Set("user", user)
		c.Next()
	}
}

// currentUser reads the authenticated caller set by AuthRequired.
func currentUser(c *gin.Context) models.User {
	u, _ := c.Get("user")
	user, _ := u.(models.User)
	return user
}
