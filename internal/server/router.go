package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "aecofarm-backend/docs"
	"aecofarm-backend/internal/borrow"
	"aecofarm-backend/internal/contract"
	"aecofarm-backend/internal/member"
	"aecofarm-backend/internal/platform/auth"
	"aecofarm-backend/internal/platform/db"
	"aecofarm-backend/internal/platform/requestid"
)

// NewRouter wires every feature onto a gin engine.
func NewRouter(conn *sqlx.DB, cfg *db.Config) *gin.Engine {
	r := gin.New()
	r.Use(requestid.Middleware(), gin.Logger(), gin.Recovery())
	_ = r.SetTrustedProxies(nil)

	if cfg.Mode == "dev" {
		// CORS is only needed while developing against a local frontend
		if len(cfg.CORS.AllowOrigins) > 0 {
			r.Use(cors.New(cors.Config{
				AllowOrigins:     cfg.CORS.AllowOrigins,
				AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", requestid.Header},
				ExposeHeaders:    []string{"Content-Length", "Content-Disposition", requestid.Header},
				AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
				AllowCredentials: true,
			}))
		}
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// health
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	issuer := auth.NewIssuer([]byte(cfg.Auth.JWTSecret), cfg.TokenTTL())
	memberSvc := member.NewService(conn, issuer)
	member.RegisterPublicRoutes(r, memberSvc)

	authed := r.Group("/", auth.RequireAuth(issuer))
	member.RegisterRoutes(authed, memberSvc)
	contract.RegisterRoutes(authed, contract.NewService(conn))
	borrow.RegisterRoutes(authed, borrow.NewService(conn))

	return r
}
