package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pantrypal/pantrypal/backend/go-services/handlers"
	"github.com/pantrypal/pantrypal/backend/go-services/internal/catalog"
	"github.com/pantrypal/pantrypal/backend/go-services/internal/category"
	"github.com/pantrypal/pantrypal/backend/go-services/internal/config"
	"github.com/pantrypal/pantrypal/backend/go-services/internal/database"
	"github.com/pantrypal/pantrypal/backend/go-services/internal/oidc"
	"github.com/pantrypal/pantrypal/backend/go-services/internal/pantry"
	"github.com/pantrypal/pantrypal/backend/go-services/internal/preferences"
	"github.com/pantrypal/pantrypal/backend/go-services/internal/recipes"
	"github.com/pantrypal/pantrypal/backend/go-services/internal/storage"
	"github.com/pantrypal/pantrypal/backend/go-services/pkg/logger"
	"github.com/pantrypal/pantrypal/backend/go-services/pkg/metrics"
	"github.com/pantrypal/pantrypal/backend/go-services/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// logging first (LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: mongo=%v redis=%v minio=%v", cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.MinIO.Endpoint != "")

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// Lightweight CORS for dev/test; production should use a stricter policy.
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	})

	// Redis: recipe cache + optional distributed rate limiter
	var rdb *redis.Client
	if cfg.Redis.Host != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			rdb = nil
		} else {
			logger.Infof("connected to Redis at %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && rdb != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(rdb, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	// MongoDB; without it the service falls back to in-memory repositories
	// (data does not survive a restart -- local development only).
	ctx := context.Background()
	var client *mongo.Client
	if cfg.MongoDB.URI != "" {
		const maxAttempts = 5
		backoff := time.Second
		var errConn error
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			client, errConn = database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
			if errConn == nil {
				break
			}
			logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, errConn)
			if attempt < maxAttempts {
				time.Sleep(backoff)
				backoff *= 2
			}
		}
		if errConn != nil {
			logger.Warnf("could not connect to MongoDB after %d attempts: %v", maxAttempts, errConn)
			client = nil
		} else {
			defer func() { _ = client.Disconnect(ctx) }()
		}
	}

	var (
		itemRepo  pantry.Repository
		catRepo   category.Repository
		prefRepo  preferences.Repository
		likedRepo recipes.Repository
		savedRepo recipes.Repository
	)
	if client != nil {
		db := client.Database(cfg.MongoDB.Database)
		itemRepo = pantry.NewMongoRepo(db.Collection(database.CollPantry))
		catRepo = category.NewMongoRepo(db.Collection(database.CollCategories))
		prefRepo = preferences.NewMongoRepo(db.Collection(database.CollPreferences))
		likedRepo = recipes.NewMongoRepo(db.Collection(database.CollLikedRecipes))
		savedRepo = recipes.NewMongoRepo(db.Collection(database.CollSavedRecipes))
	} else {
		logger.Warnf("running with in-memory repositories")
		itemRepo = pantry.NewMemoryRepo()
		catRepo = category.NewMemoryRepo()
		prefRepo = preferences.NewMemoryRepo()
		likedRepo = recipes.NewMemoryRepo()
		savedRepo = recipes.NewMemoryRepo()
	}

	engine := catalog.NewEngine(itemRepo, catRepo)
	prefAgg := preferences.NewAggregator(prefRepo)
	recipeClient := recipes.NewClient(cfg.Recipes.BaseURL, cfg.Recipes.APIKey, rdb, cfg.Recipes.CacheTTL)

	// token verification: OIDC when an issuer is configured, HMAC for
	// self-hosted token minting, insecure parsing only on explicit opt-in
	var verifier middleware.Verifier
	switch {
	case cfg.Auth.Issuer != "" && cfg.Auth.ClientID != "":
		ver, err := oidc.NewVerifier(ctx, cfg.Auth.Issuer, cfg.Auth.ClientID)
		if err != nil {
			logger.Fatalf("failed to initialize OIDC verifier: %v", err)
		}
		verifier = ver
	case cfg.Auth.JWTSecret != "":
		verifier = oidc.NewHMACVerifier(cfg.Auth.JWTSecret)
	case cfg.Auth.Insecure:
		logger.Warn("enabling insecure token verifier (development mode)")
		verifier = oidc.NewInsecureVerifier()
	default:
		logger.Fatalf("no token verifier configured: set AUTH_ISSUER/AUTH_CLIENT_ID, JWT_SECRET, or AUTH_INSECURE=true")
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{}
		// storage readiness: Mongo configured implies Mongo must answer
		if cfg.MongoDB.URI != "" {
			deps["mongodb"] = client != nil && client.Ping(c.Request.Context(), nil) == nil
			ready = ready && deps["mongodb"]
		} else {
			deps["mongodb"] = true
		}
		if cfg.Redis.Host != "" {
			deps["redis"] = rdb != nil && rdb.Ping(c.Request.Context()).Err() == nil
			if cfg.RateLimit.UseRedis {
				ready = ready && deps["redis"]
			}
		} else {
			deps["redis"] = true
		}
		status := http.StatusOK
		state := "ready"
		if !ready {
			status = http.StatusServiceUnavailable
			state = "not_ready"
		}
		c.JSON(status, gin.H{"status": state, "deps": deps, "uptime": time.Since(startTime).String()})
	})

	api := r.Group("/api", middleware.AuthMiddleware(verifier))
	handlers.RegisterPantryRoutes(api, itemRepo)
	handlers.RegisterCategoryRoutes(api, engine)
	handlers.RegisterPreferenceRoutes(api, prefAgg)
	handlers.RegisterRecipeRoutes(api, recipeClient, itemRepo, likedRepo, savedRepo)

	if cfg.MinIO.Endpoint != "" {
		photos, err := storage.NewPhotoStore(storage.FromConfig(cfg.MinIO))
		if err != nil {
			logger.Warnf("photo storage unavailable: %v", err)
		} else {
			handlers.RegisterPhotoRoutes(api, photos)
		}
	}

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("starting pantry service on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
