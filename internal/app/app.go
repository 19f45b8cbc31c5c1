package app

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/teamparagoncapstone/lms-authsvc/internal/config"
	httpx "github.com/teamparagoncapstone/lms-authsvc/internal/http"
	"github.com/teamparagoncapstone/lms-authsvc/internal/http/handlers"
	"github.com/teamparagoncapstone/lms-authsvc/internal/http/middleware"
)

func Run(cfg *config.Config) error {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	c, err := NewContainer(cfg)
	if err != nil {
		return err
	}
	if err := c.RedisClient.Ping(context.Background()).Err(); err != nil {
		return err
	}

	authH := handlers.NewAuthHandlers(c.AuthSvc, c.OTPSvc, c.ResetSvc, c.AuditSvc, c.AccountRepo)
	accountH := handlers.NewAccountHandlers(c.AuthSvc)
	auditH := handlers.NewAuditHandlers(c.AuditSvc)
	jwtMW := middleware.NewAuthMW(c.TokenSvc, c.SessionRepo)

	r := httpx.BuildRouter(authH, accountH, auditH, jwtMW)

	addr := ":" + cfg.Port
	log.Printf("listening on %s", addr)
	return http.ListenAndServe(addr, r)
}
