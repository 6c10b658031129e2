package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"postlogin/internal/config"
	"postlogin/internal/database"
	"postlogin/internal/domain"
	"postlogin/internal/middleware"
	"postlogin/internal/modules/postlogin"
	"postlogin/internal/modules/verifymock"
	"postlogin/internal/pkg/token"
	redisconn "postlogin/internal/redis"
	"postlogin/internal/repository"
	"postlogin/internal/store"
	"postlogin/internal/verifier"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	if err := db.AutoMigrate(&domain.ChannelSetting{}); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	redisClient, err := redisconn.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatalf("redis connect failed: %v", err)
	}
	defer redisClient.Close()

	verifyBaseURL := cfg.VerifyBaseURL
	if cfg.MockVerifier && verifyBaseURL == "" {
		verifyBaseURL = "http://localhost:" + cfg.Port + "/api/v1"
	}

	channelRepo := repository.NewChannelRepository(db)
	sessions := store.NewRedisStore(redisClient)
	verifyClient := verifier.New(verifyBaseURL, cfg.VerifyAPIKey, cfg.VerifyTimeout)
	codec := token.New(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL)

	service := postlogin.NewService(
		channelRepo,
		sessions,
		verifyClient,
		codec,
		cfg.SessionTTL,
		cfg.RenewalMode == config.RenewalModeStrict,
	)
	handler := postlogin.NewHandler(service)

	if env := cfg.AppEnv; env == "prod" || env == "production" || env == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger(), middleware.ErrorLogger(), middleware.CORS())

	v1 := r.Group("/api/v1")
	{
		handler.RegisterRoutes(v1)

		if cfg.MockVerifier {
			log.Println("mounting mock verifier endpoints")
			verifymock.NewHandler().RegisterRoutes(v1)
		}
	}

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
