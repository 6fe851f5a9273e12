package api

import (
	"github.com/gin-gonic/gin"
	"github.com/wfunc/pirate-slots/internal/config"
	"github.com/wfunc/pirate-slots/internal/game"
	"github.com/wfunc/pirate-slots/internal/game/slot"
	"github.com/wfunc/pirate-slots/internal/middleware"
	"github.com/wfunc/pirate-slots/internal/models"
	"github.com/wfunc/pirate-slots/internal/repository"
	"github.com/wfunc/pirate-slots/internal/websocket"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Router API路由器
type Router struct {
	engine *gin.Engine
	db     *gorm.DB
	ctrl   *game.RoundController
	hub    *websocket.Hub

	scoreHandler *ScoreHandler
	gameHandler  *GameHandler
	wsHandler    *WebSocketHandler

	staticDir string
	log       *zap.Logger
}

// NewRouter 创建路由器
func NewRouter(db *gorm.DB, cfg *config.Config, log *zap.Logger) *Router {
	engine := gin.New()

	// 全局中间件
	engine.Use(middleware.Recovery())
	engine.Use(middleware.RequestLogger())
	engine.Use(middleware.CORS())

	// 组装游戏核心
	//
	// 存储初始化失败时db为nil，换用占位仓储让每次访问都返回
	// 存储错误，控制器的内存镜像回退逻辑由此接管而不是崩溃。
	var repo repository.PlayerRepository
	if db != nil {
		repo = repository.NewPlayerRepository(db)
	} else {
		repo = repository.NewUnavailableRepository()
	}
	ctrl := game.NewRoundController(&cfg.Game, repo, slot.NewCryptoRandomGenerator())
	hub := websocket.NewHub(log)

	// 排行榜变化实时推送
	size := cfg.Game.LeaderboardSize
	ctrl.OnChange(func(players []*models.Player) {
		if size > 0 && len(players) > size {
			players = players[:size]
		}
		hub.PushLeaderboard(models.HighScoresOf(players))
	})

	router := &Router{
		engine:       engine,
		db:           db,
		ctrl:         ctrl,
		hub:          hub,
		scoreHandler: NewScoreHandler(ctrl, log),
		gameHandler:  NewGameHandler(ctrl, &cfg.Game, log),
		wsHandler:    NewWebSocketHandler(hub, log),
		staticDir:    cfg.Server.StaticDir,
		log:          log,
	}

	router.setupRoutes()

	return router
}

// setupRoutes 设置路由
func (r *Router) setupRoutes() {
	// 健康检查
	r.engine.GET("/health", r.healthCheck)

	api := r.engine.Group("/api")
	{
		// 历史版本的高分榜接口（形状保持不变）
		api.GET("/high-scores", r.scoreHandler.GetHighScores)
		api.POST("/high-scores", r.scoreHandler.SaveHighScore)
		api.POST("/high-scores/batch-update", r.scoreHandler.BatchUpdate)
		api.GET("/high-scores/:name", r.scoreHandler.GetHighScore)

		// 游戏回合接口
		api.POST("/spin", r.gameHandler.Spin)
		api.GET("/config", r.gameHandler.GetConfig)

		// 玩家接口
		api.GET("/players/:name", r.gameHandler.GetPlayer)
		api.POST("/players/:name/reset", r.gameHandler.ResetBalance)

		// 排行榜统计
		api.GET("/leaderboard/stats", r.gameHandler.GetStats)
	}

	// WebSocket路由
	r.engine.GET("/ws/leaderboard", r.wsHandler.ServeLeaderboard)

	// 前端静态资源
	if r.staticDir != "" {
		r.engine.Static("/static", r.staticDir)
	}

	// 404处理
	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"code":    "NOT_FOUND",
			"message": "接口不存在",
		})
	})
}

// healthCheck 健康检查
//
// 存储只是镜像，连接失败时服务仍然可用，报告为降级状态。
func (r *Router) healthCheck(c *gin.Context) {
	storeStatus := "connected"
	status := "healthy"

	if r.db == nil {
		storeStatus = "unavailable"
		status = "degraded"
	} else if sqlDB, err := r.db.DB(); err != nil || sqlDB.Ping() != nil {
		storeStatus = "unavailable"
		status = "degraded"
	}

	c.JSON(200, gin.H{
		"status":  status,
		"store":   storeStatus,
		"clients": r.hub.GetOnlineCount(),
	})
}

// Run 运行服务器
func (r *Router) Run(addr string) error {
	go r.hub.Run()
	r.log.Info("Starting API server", zap.String("address", addr))
	return r.engine.Run(addr)
}

// GetEngine 获取Gin引擎（用于测试）
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

// GetHub 获取推送中心
func (r *Router) GetHub() *websocket.Hub {
	return r.hub
}
