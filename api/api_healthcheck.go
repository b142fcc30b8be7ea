package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-kit/log/level"
	"github.com/zynexa/go-zynexa-server/global"
	"github.com/zynexa/go-zynexa-server/services"
	"github.com/zynexa/go-zynexa-server/types"
)

const lamportsPerSol = 1_000_000_000

type HealthCheckAPI struct {
	relay services.Relay
}

func NewHealthCheckAPI(relay services.Relay) *HealthCheckAPI {
	return &HealthCheckAPI{relay: relay}
}

func (ha *HealthCheckAPI) HealthCheck(c *gin.Context) {
	version := global.Conf.Version
	mode := global.Conf.Mode
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version, "mode": mode, "network": global.Conf.Ledger.Network})
}

// Blockchain health
// @Summary Fee payer balance and ledger connectivity
// @Tags Health
// @Success 200 {object} types.OutputBlockchainHealth
// @Failure 500 {object} map[string]string "status error with code"
// @Produce json
// @Router /api/health/blockchain [get]
func (ha *HealthCheckAPI) BlockchainHealth(c *gin.Context) {
	health, err := ha.relay.Health(c.Request.Context())
	if err != nil {
		level.Error(global.Logger).Log("msg", "blockchain health check failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "code": ToApiError(err).Code, "error": err.Error()})
		return
	}
	var estimated uint64
	if health.MinBalanceLamports > 0 {
		estimated = health.BalanceLamports / health.MinBalanceLamports
	}
	c.JSON(http.StatusOK, types.OutputBlockchainHealth{
		Status:                         "ok",
		Network:                        health.Network,
		RpcEndpoint:                    health.RpcEndpoint,
		FeePayerPublicKey:              health.FeePayerPublicKey,
		Balance:                        float64(health.BalanceLamports) / lamportsPerSol,
		BalanceLamports:                health.BalanceLamports,
		IsBalanceSufficient:            health.BalanceLamports >= health.MinBalanceLamports,
		MinBalanceRequired:             strconv.FormatFloat(float64(health.MinBalanceLamports)/lamportsPerSol, 'f', -1, 64) + " SOL",
		EstimatedTransactionsRemaining: estimated,
	})
}
