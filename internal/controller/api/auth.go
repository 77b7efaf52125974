package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Freeeeeet/calendar_booking/internal/lifecycle"
	"github.com/Freeeeeet/calendar_booking/internal/model"
	"github.com/Freeeeeet/calendar_booking/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	actorKey   = "actor"
	profileKey = "profile"
)

// Claims токен выдаёт внешний сервис авторизации: sub идентификатор пользователя,
// role его роль при первом входе, name и email профиль
type Claims struct {
	Role  string `json:"role"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// ParseActor проверяет подпись HS256 и возвращает инициатора запроса
func ParseActor(secret []byte, tokenString string) (lifecycle.Actor, error) {
	profile, err := parseProfile(secret, tokenString)
	if err != nil {
		return lifecycle.Actor{}, err
	}
	return lifecycle.Actor{ID: profile.ID, Role: profile.Role}, nil
}

func parseProfile(secret []byte, tokenString string) (service.Profile, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return service.Profile{}, fmt.Errorf("parse token: %w", err)
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return service.Profile{}, fmt.Errorf("invalid subject: %w", err)
	}

	role := model.Role(claims.Role)
	if role == "" {
		role = model.RoleUser
	}
	if !role.Valid() {
		return service.Profile{}, errors.New("unknown role")
	}

	return service.Profile{ID: id, Role: role, Name: claims.Name, Email: claims.Email}, nil
}

// RequireAuth пропускает только запросы с валидным Bearer токеном
func RequireAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractBearer(c)
		if tokenString == "" {
			abortWithError(c, http.StatusUnauthorized, codeUnauthorized, "missing or invalid token")
			return
		}

		profile, err := parseProfile(secret, tokenString)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, codeUnauthorized, "missing or invalid token")
			return
		}

		c.Set(profileKey, profile)
		c.Set(actorKey, lifecycle.Actor{ID: profile.ID, Role: profile.Role})
		c.Next()
	}
}

// ProvisionUser создаёт пользователя при первом запросе и подставляет роль из базы.
// Роль в токене учитывается только для новой строки, дальше её меняют через /api/users.
func (h *Handler) ProvisionUser(c *gin.Context) {
	v, _ := c.Get(profileKey)
	profile, ok := v.(service.Profile)
	if !ok {
		abortWithError(c, http.StatusUnauthorized, codeUnauthorized, "missing or invalid token")
		return
	}

	user, err := h.users.EnsureUser(c.Request.Context(), profile)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Set(actorKey, lifecycle.Actor{ID: user.ID, Role: user.Role})
	c.Next()
}

func extractBearer(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}

func actorFrom(c *gin.Context) lifecycle.Actor {
	v, _ := c.Get(actorKey)
	actor, _ := v.(lifecycle.Actor)
	return actor
}
