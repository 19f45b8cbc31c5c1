package httpx

import (
	"github.com/gin-gonic/gin"

	"github.com/teamparagoncapstone/lms-authsvc/internal/http/handlers"
	"github.com/teamparagoncapstone/lms-authsvc/internal/http/middleware"
)

func BuildRouter(ah *handlers.AuthHandlers, ach *handlers.AccountHandlers, audh *handlers.AuditHandlers, jwtmw *middleware.AuthMW) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	auth := r.Group("/auth")
	auth.POST("/login", ah.Login)
	auth.POST("/otp/verify", ah.VerifyOTP)
	auth.POST("/otp/resend", ah.ResendOTP)
	auth.POST("/reset/request", ah.RequestReset)
	auth.POST("/reset/verify", ah.VerifyReset)
	auth.POST("/reset/complete", ah.CompleteReset)

	v := r.Group("/").Use(jwtmw.WithJWT())
	v.GET("/auth/me", ah.Me)
	v.POST("/auth/logout", ah.Logout)
	v.POST("/auth/refresh", ah.Refresh)

	adm := r.Group("/admin").Use(jwtmw.WithJWT(), middleware.RequireManager())
	adm.POST("/accounts", ach.Create)
	adm.GET("/accounts/:id", ach.Get)
	adm.PUT("/accounts/:id", ach.Update)
	adm.DELETE("/accounts/:id", ach.Deactivate)
	adm.GET("/audit", audh.Query)
	adm.GET("/audit/export", audh.Export)

	return r
}
