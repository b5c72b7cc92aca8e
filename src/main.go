package main

import (
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"otakufest/src/boot"
	"otakufest/src/config"
	"otakufest/src/middlewares"

	"github.com/covalenthq/lumberjack"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
)

var jwtKey = []byte(os.Getenv("JWT_SECRET"))

const (
	apiPrefix string = "/api/v1"
)

var futureDateValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	datetime, err := time.Parse(config.TIME_PARSE_FORMAT, date)
	if err != nil {
		return false
	}
	return time.Now().Before(datetime)
}

func setupRouter() *gin.Engine {
	router := gin.Default()
	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("futuredate", futureDateValidatorFunc)
	}
}

func publicRoutes(g *gin.Engine) *gin.RouterGroup {
	apiv1 := g.Group(apiPrefix)
	eventHandlers(apiv1)
	userPublicHandlers(apiv1)
	return apiv1
}

func guestRoutes(g *gin.Engine) *gin.RouterGroup {
	guest := g.Group(apiPrefix)
	guest.Use(middlewares.OptionalAuth)
	ticketGuestHandlers(guest)
	return guest
}

func authorizedRoutes(g *gin.Engine) *gin.RouterGroup {
	authorized := g.Group(apiPrefix)
	authorized.Use(middlewares.AuthMiddleware)
	eventAuthHandlers(authorized)
	ticketHandlers(authorized)
	userHandlers(authorized)
	return authorized
}

func main() {
	if logFile := os.Getenv("LOG_FILE"); logFile != "" {
		log.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		}))
	}
	registerValidators()

	boot.InitDb()
	boot.InitScheduler()
	defer boot.StopScheduler()

	router := setupRouter()
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		cc := cors.DefaultConfig()
		cc.AllowOrigins = strings.Split(origins, ",")
		cc.AllowHeaders = append(cc.AllowHeaders, "Authorization")
		router.Use(cors.New(cc))
	} else {
		router.Use(cors.Default())
	}

	publicRoutes(router)
	guestRoutes(router)
	authorizedRoutes(router)

	if err := router.Run(":9090"); err != nil {
		log.Fatalf("Error starting server: %s\n", err.Error())
	}
}
