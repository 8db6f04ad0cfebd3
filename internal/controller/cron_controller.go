package controller

import (
	"crypto/subtle"
	"solveit_backend/internal/service"
	"solveit_backend/internal/util"
	"solveit_backend/pkg/logger"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CronController struct {
	SweepService *service.SweepService

	mu     sync.RWMutex
	secret string
}

func NewCronController(sweepService *service.SweepService, secret string) *CronController {
	return &CronController{SweepService: sweepService, secret: secret}
}

// SetSecret replaces the shared secret; used on config reload.
func (c *CronController) SetSecret(secret string) {
	c.mu.Lock()
	c.secret = secret
	c.mu.Unlock()
}

// DailyStreak godoc
// @Summary Run the daily streak reset sweep
// @Description Called by an external scheduler with Authorization: Bearer <cron secret>
// @Tags cron
// @Produce  json
// @Success 200 {object} util.Response{data=model.SweepResult} "Success"
// @Failure 401 {object} util.Response "Unauthorized"
// @Failure 503 {object} util.Response "Temporarily unavailable"
// @Router /api/cron/daily-streak [get]
func (c *CronController) DailyStreak(ctx *gin.Context) {
	if !c.authorized(ctx) {
		util.Unauthorized(ctx)
		return
	}

	result, err := c.SweepService.RunToday(ctx.Request.Context())
	if err != nil {
		util.LogRetryableError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

func (c *CronController) authorized(ctx *gin.Context) bool {
	c.mu.RLock()
	secret := c.secret
	c.mu.RUnlock()

	if secret == "" {
		logger.Log.Warn("Cron secret not configured, accepting unauthenticated sweep trigger",
			zap.String("client_ip", ctx.ClientIP()))
		return true
	}

	token := strings.TrimPrefix(ctx.GetHeader("Authorization"), "Bearer ")
	return subtle.ConstantTimeCompare([]byte(token), []byte(secret)) == 1
}
