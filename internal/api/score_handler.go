package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/pirate-slots/internal/errors"
	"github.com/wfunc/pirate-slots/internal/game"
	"github.com/wfunc/pirate-slots/internal/models"
	"go.uber.org/zap"
)

// ScoreHandler 高分榜处理器
//
// 保持与历史版本完全一致的请求/响应形状，
// 旧版前端可以不加修改地对接这些接口。
type ScoreHandler struct {
	ctrl   *game.RoundController
	logger *zap.Logger
}

// NewScoreHandler 创建高分榜处理器
func NewScoreHandler(ctrl *game.RoundController, logger *zap.Logger) *ScoreHandler {
	return &ScoreHandler{
		ctrl:   ctrl,
		logger: logger,
	}
}

// ScoreRequest 单条分数写入请求
type ScoreRequest struct {
	Name      string `json:"name"`
	Score     *int64 `json:"score"`
	Timestamp string `json:"timestamp"`
}

// BatchUpdateRequest 批量分数写入请求
type BatchUpdateRequest struct {
	Updates []ScoreRequest `json:"updates"`
}

// GetHighScores 获取完整高分榜
//
// GET /api/high-scores
// 返回按分数降序排列的数组。
func (h *ScoreHandler) GetHighScores(c *gin.Context) {
	players := h.ctrl.Snapshot(c.Request.Context())
	c.JSON(http.StatusOK, models.HighScoresOf(players))
}

// GetHighScore 获取单个玩家的分数
//
// GET /api/high-scores/:name
func (h *ScoreHandler) GetHighScore(c *gin.Context) {
	name := c.Param("name")

	player, err := h.ctrl.GetPlayer(c.Request.Context(), name)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Player not found"})
		return
	}

	c.JSON(http.StatusOK, player.ToHighScore())
}

// SaveHighScore 写入单条玩家分数
//
// POST /api/high-scores
// 无条件覆盖已有分数：诅咒分配会合法地降低余额。
func (h *ScoreHandler) SaveHighScore(c *gin.Context) {
	var req ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" || req.Score == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name and score are required"})
		return
	}

	_, err := h.ctrl.UpsertScore(c.Request.Context(), req.Name, *req.Score, parseTimestamp(req.Timestamp))
	if err != nil {
		h.logger.Error("保存分数失败", zap.String("player", req.Name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save high score"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "High score saved"})
}

// BatchUpdate 批量写入玩家分数
//
// POST /api/high-scores/batch-update
// 诅咒分配专用：整批作为单个逻辑批次落库，
// 非法条目被跳过而不是使整个请求失败。
func (h *ScoreHandler) BatchUpdate(c *gin.Context) {
	var req BatchUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Updates == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Updates array is required"})
		return
	}

	updates := make([]game.ScoreUpdate, 0, len(req.Updates))
	for _, u := range req.Updates {
		if u.Name == "" || u.Score == nil {
			continue
		}
		updates = append(updates, game.ScoreUpdate{
			Name:      u.Name,
			Score:     *u.Score,
			Timestamp: parseTimestamp(u.Timestamp),
		})
	}

	count := 0
	if len(updates) > 0 {
		var err error
		count, err = h.ctrl.UpsertScores(c.Request.Context(), updates)
		if err != nil {
			h.logger.Error("批量保存分数失败", zap.Int("count", len(updates)), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save high scores"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("%d player scores updated successfully", count),
	})
}

func parseTimestamp(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return ts
}

// respondError 将应用错误映射为HTTP响应
func respondError(c *gin.Context, err error) {
	appErr, ok := err.(*errors.AppError)
	if !ok {
		appErr = errors.Wrap(err, errors.ErrUnknown)
	}

	c.JSON(appErr.HTTPStatus(), gin.H{
		"success": false,
		"error": gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
			"details": appErr.Details,
		},
	})
}
