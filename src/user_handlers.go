package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"otakufest/src/db"
	"otakufest/src/lib"
	"otakufest/src/middlewares"
	"otakufest/src/models"
	"otakufest/src/types"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func userPayload(user *models.User) gin.H {
	return gin.H{
		"id":         user.ID,
		"username":   user.Username,
		"email":      user.Email,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
	}
}

func userPublicHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/users/register", func(ctx *gin.Context) {
			var body types.RegisterUserRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var count int64
			if err := db.
				Model(&models.User{}).
				Where("username = ?", body.Username).
				Count(&count).
				Error; err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if count > 0 {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "Username sudah digunakan"})
				return
			}
			if err := db.
				Model(&models.User{}).
				Where("email = ?", body.Email).
				Count(&count).
				Error; err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if count > 0 {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "Email sudah digunakan"})
				return
			}

			hashed, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			user := models.User{
				Username:  body.Username,
				Email:     body.Email,
				Password:  string(hashed),
				FirstName: body.FirstName,
				LastName:  body.LastName,
			}
			err = db.Transaction(func(tx *gorm.DB) error {
				if err := tx.Create(&user).Error; err != nil {
					return err
				}
				// The profile is created here, as a direct follow-up to the
				// user row, rather than behind a lifecycle hook.
				return createProfileForUser(tx, user.ID)
			})
			if err != nil {
				log.Printf("error registering user: %s", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{
				"message": "Registrasi berhasil",
				"user":    userPayload(&user),
			})
		}).
		POST("/users/login", func(ctx *gin.Context) {
			var body types.LoginRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var user models.User
			if err := db.
				Where(&models.User{Username: body.Username}).
				First(&user).
				Error; err != nil {
				if errors.Is(gorm.ErrRecordNotFound, err) {
					ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Username atau password salah"})
					return
				}
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(body.Password)); err != nil {
				ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Username atau password salah"})
				return
			}
			token, err := issueToken(&user)
			if err != nil {
				log.Printf("error signing token: %s", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{
				"token": token,
				"user":  userPayload(&user),
			})
		}).
		POST("/users/newsletter-subscribe", func(ctx *gin.Context) {
			var body types.NewsletterSubscribeRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "Email diperlukan"})
				return
			}
			db := db.GetDb()
			var subscription models.NewsletterSubscription
			err := db.
				Where(&models.NewsletterSubscription{Email: body.Email}).
				First(&subscription).
				Error
			if err != nil {
				if !errors.Is(gorm.ErrRecordNotFound, err) {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				subscription = models.NewsletterSubscription{Email: body.Email, IsActive: true}
				if err := db.Create(&subscription).Error; err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				go sendNewsletterWelcome(body.Email)
				ctx.JSON(http.StatusOK, gin.H{"message": "Berhasil berlangganan newsletter"})
				return
			}
			if subscription.IsActive {
				ctx.JSON(http.StatusOK, gin.H{"message": "Email sudah terdaftar"})
				return
			}
			if err := db.
				Model(&models.NewsletterSubscription{}).
				Where("id = ?", subscription.ID).
				Update("is_active", true).
				Error; err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"message": "Berhasil berlangganan newsletter kembali"})
		})
	return g
}

func userHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/users/logout", func(ctx *gin.Context) {
			token := ctx.GetString("token")
			rd := lib.GetRedisClient()
			if rd != nil && token != "" {
				claims := &types.Claims{}
				if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err == nil && claims.ExpiresAt != nil {
					ttl := time.Until(claims.ExpiresAt.Time)
					if ttl > 0 {
						rd.SetEx(context.Background(), middlewares.DenylistKey(token), "1", ttl)
					}
				}
			}
			ctx.JSON(http.StatusOK, gin.H{"message": "Logout berhasil"})
		}).
		GET("/users/profile", func(ctx *gin.Context) {
			userId := ctx.MustGet("id").(uuid.UUID)
			var profile models.UserProfile
			db := db.GetDb()
			if err := db.
				Where(&models.UserProfile{UserID: userId}).
				Preload("User").
				First(&profile).
				Error; err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{
				"profile": profile,
				"user":    userPayload(&profile.User),
			})
		})
	return g
}

func createProfileForUser(tx *gorm.DB, userId uuid.UUID) error {
	profile := models.UserProfile{UserID: userId}
	return tx.Create(&profile).Error
}

func issueToken(user *models.User) (string, error) {
	claims := types.Claims{
		Username: user.Username,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtKey)
}

func sendNewsletterWelcome(email string) {
	from := os.Getenv("NEWSLETTER_FROM")
	if from == "" {
		return
	}
	err := lib.SendMail(&lib.SendMailInput{
		From:     from,
		FromName: "OtakuFest",
		To:       []string{email},
		Subject:  "Selamat datang di newsletter OtakuFest",
		Body:     "Terima kasih sudah berlangganan newsletter OtakuFest!",
	})
	if err != nil {
		log.Printf("Error sending welcome mail to %s: %s\n", email, err.Error())
	}
}
