package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/pirate-slots/internal/config"
	"github.com/wfunc/pirate-slots/internal/game"
	"github.com/wfunc/pirate-slots/internal/game/slot"
	"go.uber.org/zap"
)

// GameHandler 游戏回合处理器
type GameHandler struct {
	ctrl   *game.RoundController
	cfg    *config.GameConfig
	logger *zap.Logger
}

// NewGameHandler 创建游戏处理器
func NewGameHandler(ctrl *game.RoundController, cfg *config.GameConfig, logger *zap.Logger) *GameHandler {
	return &GameHandler{
		ctrl:   ctrl,
		cfg:    cfg,
		logger: logger,
	}
}

// SpinRequest 旋转请求
type SpinRequest struct {
	Name string `json:"name" binding:"required"`
	Bet  int64  `json:"bet"`
}

// Spin 执行一个游戏回合
//
// POST /api/spin
// bet 省略时使用配置的默认下注额。
func (h *GameHandler) Spin(c *gin.Context) {
	var req SpinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	if req.Bet == 0 {
		req.Bet = h.cfg.DefaultBet
	}

	result, err := h.ctrl.PlaceBet(c.Request.Context(), req.Name, req.Bet)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"result":  result,
	})
}

// ResetBalance 重置玩家余额
//
// POST /api/players/:name/reset
// 余额不足后由玩家显式发起的恢复操作。
func (h *GameHandler) ResetBalance(c *gin.Context) {
	player, err := h.ctrl.ResetBalance(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"player":  player,
	})
}

// GetPlayer 查询玩家完整状态
//
// GET /api/players/:name
func (h *GameHandler) GetPlayer(c *gin.Context) {
	player, err := h.ctrl.GetPlayer(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"player":  player,
	})
}

// GetStats 查询排行榜统计
//
// GET /api/leaderboard/stats
func (h *GameHandler) GetStats(c *gin.Context) {
	stats := h.ctrl.GetStats(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   stats,
	})
}

// GetConfig 查询客户端需要的游戏配置
//
// GET /api/config
func (h *GameHandler) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"reel_count":      h.cfg.ReelCount,
		"initial_balance": h.cfg.InitialBalance,
		"default_bet":     h.cfg.DefaultBet,
		"min_bet":         h.cfg.MinBet,
		"max_bet":         h.cfg.MaxBet,
		"bet_increment":   h.cfg.BetIncrement,
		"symbols":         slot.AllSymbols(),
	})
}
