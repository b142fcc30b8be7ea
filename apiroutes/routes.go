package apiroutes

import (
	"crypto/ed25519"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/zynexa/go-zynexa-server/api"
	"github.com/zynexa/go-zynexa-server/api/interceptors"
	"github.com/zynexa/go-zynexa-server/global"
	"github.com/zynexa/go-zynexa-server/metrics"
	"github.com/zynexa/go-zynexa-server/repository"
	"github.com/zynexa/go-zynexa-server/services"
	"github.com/zynexa/go-zynexa-server/types"
)

// Dependencies are the backends the REST API is built on (configured in main)
type Dependencies struct {
	Store        repository.Store
	SessionStore services.SessionStore
	Relay        services.Relay
	ReplayGuard  services.ReplayGuard
	SessionKey   ed25519.PrivateKey
}

func corsConfig() cors.Config {
	corsConf := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(global.Conf.Cors.AllowOrigins) > 0 {
		corsConf.AllowOrigins = global.Conf.Cors.AllowOrigins
	} else {
		// credentials can't be combined with a wildcard origin, reflect the caller instead
		corsConf.AllowOriginFunc = func(origin string) bool { return true }
	}
	return corsConf
}

// REST API routes
func ConfigRoutes(router *gin.Engine, deps Dependencies) *gin.Engine {
	router.Use(cors.New(corsConfig()))

	// init metrics
	if global.Conf.Prometheus.Enabled {

		metrics.InitMetrics()

		authorized := router.Group("/metrics", gin.BasicAuth(gin.Accounts{
			global.Conf.Prometheus.Username: global.Conf.Prometheus.Password,
		}))

		authorized.GET("", gin.WrapH(promhttp.Handler()))
	}

	if global.Conf.Mode == "debug" {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// SERVICE definitions
	sessionService := services.NewSessionService(deps.SessionStore, deps.Store, deps.SessionKey)
	identityService := services.NewIdentityService(deps.Store, deps.Relay, global.Conf.Ledger, global.Conf.Identity.PublishOnce)
	featureService := services.NewFeatureService(deps.Store, deps.Relay, global.Conf.Ledger)
	messageService := services.NewMessageService(deps.Store, deps.Relay, deps.ReplayGuard, global.Conf)

	// API definitions
	healthApi := api.NewHealthCheckAPI(deps.Relay)
	authApi := api.NewAuthApi(sessionService)
	identityApi := api.NewIdentityApi(identityService)
	featureApi := api.NewFeatureApi(featureService)
	messagingApi := api.NewMessagingApi(messageService)

	// PUBLIC API
	publicApi := router.Group("/api", metrics.MetricsMiddleware(), interceptors.RateLimitMiddleware("api", interceptors.LimitRequestsPerSecond))
	{
		publicApi.GET("/auth/session", authApi.Session)
		publicApi.POST("/auth/logout", authApi.Logout)

		publicApi.POST("/identity/register", identityApi.Register)
		publicApi.POST("/identity/verify", identityApi.VerifySignature)
		publicApi.GET("/identity/:publicKey", identityApi.GetIdentity)
		publicApi.PATCH("/identity/:publicKey", identityApi.UpdateDisplayName)

		publicApi.GET("/features/status/:publicKey", featureApi.Status)

		publicApi.GET("/health", healthApi.HealthCheck)
		publicApi.GET("/health/blockchain", healthApi.BlockchainHealth)
	}

	// login and everything that pays for a ledger transaction
	mutatingApi := router.Group("/api", metrics.MetricsMiddleware(), interceptors.RateLimitMiddleware("mutations", interceptors.LimitMutationsPerSecond))
	{
		mutatingApi.POST("/auth/login", authApi.Login)
		mutatingApi.POST("/identity/publish", identityApi.Publish)
		mutatingApi.POST("/features/verify", featureApi.Verify)
	}

	sessionApi := router.Group("/api", metrics.MetricsMiddleware(), interceptors.SessionMiddleware(sessionService))
	{
		sessionApi.GET("/messages/:publicKey", interceptors.RateLimitMiddleware("api", interceptors.LimitRequestsPerSecond), messagingApi.List)
		sessionApi.POST("/messages/send",
			interceptors.RateLimitMiddleware("mutations", interceptors.LimitMutationsPerSecond),
			interceptors.FeatureMiddleware(featureService, types.FeatureMessages),
			messagingApi.Send)
	}

	return router
}
