package middlewares

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"otakufest/src/db"
	"otakufest/src/lib"
	"otakufest/src/models"
	"otakufest/src/types"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

var jwtKey = []byte(os.Getenv("JWT_SECRET"))

func DenylistKey(token string) string {
	return fmt.Sprintf("denylist:%s", token)
}

func authenticate(ctx *gin.Context, token string) bool {
	rd := lib.GetRedisClient()
	if rd != nil {
		if _, err := rd.Get(context.Background(), DenylistKey(token)).Result(); err == nil {
			return false
		}
	}
	claims := &types.Claims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return jwtKey, nil
	})
	if err != nil {
		log.Printf("token error: %s\n", err.Error())
		return false
	}
	if !tkn.Valid {
		return false
	}

	uid, err := uuid.Parse(claims.Subject)
	if err != nil {
		log.Println("error parsing claims:", err.Error())
		return false
	}
	db := db.GetDb()
	var user models.User
	if err := db.
		Model(&models.User{}).
		Where(&models.User{ID: uid}).
		First(&user).
		Error; err != nil {
		return false
	}

	ctx.Set("id", user.ID)
	ctx.Set("email", user.Email)
	ctx.Set("username", user.Username)
	ctx.Set("token", token)
	return true
}

func bearerToken(ctx *gin.Context) string {
	header := ctx.Request.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer") {
		return ""
	}
	parts := strings.Split(header, " ")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

func AuthMiddleware(ctx *gin.Context) {
	token := bearerToken(ctx)
	if token == "" {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	if !authenticate(ctx, token) {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
}

// OptionalAuth resolves the caller when a bearer token is presented but lets
// anonymous requests through untouched. Guest checkout relies on this.
func OptionalAuth(ctx *gin.Context) {
	token := bearerToken(ctx)
	if token == "" {
		return
	}
	if !authenticate(ctx, token) {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
}

// CallerID returns the authenticated user's id from the request context, or
// nil for guests.
func CallerID(ctx *gin.Context) *uuid.UUID {
	v, ok := ctx.Get("id")
	if !ok {
		return nil
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return nil
	}
	return &id
}
