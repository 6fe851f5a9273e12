package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/wfunc/pirate-slots/internal/config"
	"github.com/wfunc/pirate-slots/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func testConfig() *config.Config {
	return &config.Config{
		Game: config.GameConfig{
			ReelCount:            3,
			InitialBalance:       1000,
			DefaultBet:           10,
			MinBet:               5,
			MaxBet:               100,
			BetIncrement:         5,
			SkullCursePercent:    50,
			TwoSkullCursePercent: 33,
			LeaderboardSize:      10,
		},
	}
}

// APITestSuite 接口测试套件
type APITestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *Router
}

func (suite *APITestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.db = repository.SetupTestDB()
	suite.router = NewRouter(suite.db, testConfig(), zap.NewNop())
}

func (suite *APITestSuite) TearDownTest() {
	repository.CleanupTestDB(suite.db)
}

func (suite *APITestSuite) request(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(suite.T(), json.NewEncoder(&buf).Encode(body))
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	suite.router.GetEngine().ServeHTTP(w, req)
	return w
}

func (suite *APITestSuite) decode(w *httptest.ResponseRecorder, out interface{}) {
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), out))
}

// TestHealthCheck 测试健康检查
func (suite *APITestSuite) TestHealthCheck() {
	w := suite.request("GET", "/health", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var resp map[string]interface{}
	suite.decode(w, &resp)
	assert.Equal(suite.T(), "healthy", resp["status"])
	assert.Equal(suite.T(), "connected", resp["store"])
}

// TestGetHighScores_Empty 测试空排行榜
func (suite *APITestSuite) TestGetHighScores_Empty() {
	w := suite.request("GET", "/api/high-scores", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.JSONEq(suite.T(), "[]", w.Body.String())
}

// TestSaveHighScore 测试单条分数写入与读回
func (suite *APITestSuite) TestSaveHighScore() {
	w := suite.request("POST", "/api/high-scores", gin.H{
		"name":  "BlackBeard",
		"score": 1500,
	})
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var resp map[string]interface{}
	suite.decode(w, &resp)
	assert.Equal(suite.T(), true, resp["success"])
	assert.Equal(suite.T(), "High score saved", resp["message"])

	w = suite.request("GET", "/api/high-scores/BlackBeard", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var score map[string]interface{}
	suite.decode(w, &score)
	assert.Equal(suite.T(), "BlackBeard", score["name"])
	assert.Equal(suite.T(), float64(1500), score["score"])
	assert.NotEmpty(suite.T(), score["timestamp"])
}

// TestSaveHighScore_AlwaysOverwrites 测试低分也会覆盖
func (suite *APITestSuite) TestSaveHighScore_AlwaysOverwrites() {
	suite.request("POST", "/api/high-scores", gin.H{"name": "BlackBeard", "score": 1500})
	w := suite.request("POST", "/api/high-scores", gin.H{"name": "BlackBeard", "score": 300})
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	w = suite.request("GET", "/api/high-scores/BlackBeard", nil)
	var score map[string]interface{}
	suite.decode(w, &score)
	assert.Equal(suite.T(), float64(300), score["score"])
}

// TestSaveHighScore_MissingFields 测试缺失字段返回400
func (suite *APITestSuite) TestSaveHighScore_MissingFields() {
	w := suite.request("POST", "/api/high-scores", gin.H{"name": "BlackBeard"})
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	var resp map[string]interface{}
	suite.decode(w, &resp)
	assert.Equal(suite.T(), "Name and score are required", resp["error"])

	w = suite.request("POST", "/api/high-scores", gin.H{"score": 100})
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestGetHighScore_NotFound 测试未知玩家返回404
func (suite *APITestSuite) TestGetHighScore_NotFound() {
	w := suite.request("GET", "/api/high-scores/Nobody", nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)

	var resp map[string]interface{}
	suite.decode(w, &resp)
	assert.Equal(suite.T(), "Player not found", resp["error"])
}

// TestGetHighScores_SortedDescending 测试排行榜降序
func (suite *APITestSuite) TestGetHighScores_SortedDescending() {
	suite.request("POST", "/api/high-scores", gin.H{"name": "Low", "score": 100})
	suite.request("POST", "/api/high-scores", gin.H{"name": "High", "score": 2000})
	suite.request("POST", "/api/high-scores", gin.H{"name": "Middle", "score": 900})

	w := suite.request("GET", "/api/high-scores", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var scores []map[string]interface{}
	suite.decode(w, &scores)
	require.Len(suite.T(), scores, 3)
	assert.Equal(suite.T(), "High", scores[0]["name"])
	assert.Equal(suite.T(), "Middle", scores[1]["name"])
	assert.Equal(suite.T(), "Low", scores[2]["name"])
}

// TestBatchUpdate 测试批量分数写入
func (suite *APITestSuite) TestBatchUpdate() {
	w := suite.request("POST", "/api/high-scores/batch-update", gin.H{
		"updates": []gin.H{
			{"name": "Anne", "score": 500},
			{"name": "Mary", "score": 800},
			{"score": 100}, // 非法条目被跳过
		},
	})
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var resp map[string]interface{}
	suite.decode(w, &resp)
	assert.Equal(suite.T(), true, resp["success"])
	assert.Equal(suite.T(), "2 player scores updated successfully", resp["message"])
}

// TestBatchUpdate_MissingUpdates 测试缺失updates返回400
func (suite *APITestSuite) TestBatchUpdate_MissingUpdates() {
	w := suite.request("POST", "/api/high-scores/batch-update", gin.H{})
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	var resp map[string]interface{}
	suite.decode(w, &resp)
	assert.Equal(suite.T(), "Updates array is required", resp["error"])
}

// TestBatchUpdate_EmptyArray 测试空数组计数为零
func (suite *APITestSuite) TestBatchUpdate_EmptyArray() {
	w := suite.request("POST", "/api/high-scores/batch-update", gin.H{
		"updates": []gin.H{},
	})
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var resp map[string]interface{}
	suite.decode(w, &resp)
	assert.Equal(suite.T(), "0 player scores updated successfully", resp["message"])
}

// TestSpin 测试游戏回合接口
func (suite *APITestSuite) TestSpin() {
	w := suite.request("POST", "/api/spin", gin.H{"name": "BlackBeard", "bet": 10})
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Result  struct {
			RoundID string   `json:"round_id"`
			Player  string   `json:"player"`
			Bet     int64    `json:"bet"`
			Outcome []int    `json:"outcome"`
			Symbols []string `json:"symbols"`
			Balance int64    `json:"balance"`
			Spins   int64    `json:"spins"`
			Payout  struct {
				Kind    string `json:"kind"`
				Message string `json:"message"`
			} `json:"payout"`
		} `json:"result"`
	}
	suite.decode(w, &resp)

	assert.True(suite.T(), resp.Success)
	assert.Equal(suite.T(), "BlackBeard", resp.Result.Player)
	assert.Len(suite.T(), resp.Result.Outcome, 3)
	assert.NotEmpty(suite.T(), resp.Result.RoundID)
	assert.NotEmpty(suite.T(), resp.Result.Payout.Kind)
	assert.NotEmpty(suite.T(), resp.Result.Payout.Message)
	assert.Equal(suite.T(), int64(1), resp.Result.Spins)
	// 首轮玩家从初始余额起步，扣注后余额不可能超过 990+最大可能奖金
	assert.GreaterOrEqual(suite.T(), resp.Result.Balance, int64(495))
}

// TestSpin_DefaultBet 测试省略下注额时使用默认值
func (suite *APITestSuite) TestSpin_DefaultBet() {
	w := suite.request("POST", "/api/spin", gin.H{"name": "BlackBeard"})
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var resp struct {
		Result struct {
			Bet int64 `json:"bet"`
		} `json:"result"`
	}
	suite.decode(w, &resp)
	assert.Equal(suite.T(), int64(10), resp.Result.Bet)
}

// TestSpin_InvalidBet 测试非法下注额返回400
func (suite *APITestSuite) TestSpin_InvalidBet() {
	for _, bet := range []int64{3, 7, 101} {
		w := suite.request("POST", "/api/spin", gin.H{"name": "BlackBeard", "bet": bet})
		assert.Equal(suite.T(), http.StatusBadRequest, w.Code, fmt.Sprintf("bet=%d", bet))
	}
}

// TestSpin_MissingName 测试缺失名称返回400
func (suite *APITestSuite) TestSpin_MissingName() {
	w := suite.request("POST", "/api/spin", gin.H{"bet": 10})
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestSpin_InsufficientFunds 测试余额不足返回400
func (suite *APITestSuite) TestSpin_InsufficientFunds() {
	suite.request("POST", "/api/high-scores", gin.H{"name": "Broke", "score": 3})

	w := suite.request("POST", "/api/spin", gin.H{"name": "Broke", "bet": 10})
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Error   struct {
			Code int `json:"code"`
		} `json:"error"`
	}
	suite.decode(w, &resp)
	assert.False(suite.T(), resp.Success)
	assert.Equal(suite.T(), 2000, resp.Error.Code)
}

// TestResetBalance 测试余额重置接口
func (suite *APITestSuite) TestResetBalance() {
	suite.request("POST", "/api/high-scores", gin.H{"name": "Broke", "score": 2})

	w := suite.request("POST", "/api/players/Broke/reset", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Player  struct {
			Balance int64 `json:"balance"`
		} `json:"player"`
	}
	suite.decode(w, &resp)
	assert.True(suite.T(), resp.Success)
	assert.Equal(suite.T(), int64(1000), resp.Player.Balance)
}

// TestGetPlayer 测试玩家查询接口
func (suite *APITestSuite) TestGetPlayer() {
	suite.request("POST", "/api/high-scores", gin.H{"name": "Anne", "score": 700})

	w := suite.request("GET", "/api/players/Anne", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var resp struct {
		Player struct {
			Name    string `json:"name"`
			Balance int64  `json:"balance"`
		} `json:"player"`
	}
	suite.decode(w, &resp)
	assert.Equal(suite.T(), "Anne", resp.Player.Name)
	assert.Equal(suite.T(), int64(700), resp.Player.Balance)

	// 未知玩家
	w = suite.request("GET", "/api/players/Nobody", nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

// TestGetStats 测试排行榜统计接口
func (suite *APITestSuite) TestGetStats() {
	suite.request("POST", "/api/high-scores", gin.H{"name": "Anne", "score": 700})
	suite.request("POST", "/api/high-scores", gin.H{"name": "Mary", "score": 300})

	w := suite.request("GET", "/api/leaderboard/stats", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var resp struct {
		Stats struct {
			TotalPlayers int64 `json:"total_players"`
		} `json:"stats"`
	}
	suite.decode(w, &resp)
	assert.Equal(suite.T(), int64(2), resp.Stats.TotalPlayers)
}

// TestGetConfig 测试游戏配置接口
func (suite *APITestSuite) TestGetConfig() {
	w := suite.request("GET", "/api/config", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var resp map[string]interface{}
	suite.decode(w, &resp)
	assert.Equal(suite.T(), float64(3), resp["reel_count"])
	assert.Equal(suite.T(), float64(1000), resp["initial_balance"])
	assert.Len(suite.T(), resp["symbols"], 6)
}

// TestNoRoute 测试未知路由返回404
func (suite *APITestSuite) TestNoRoute() {
	w := suite.request("GET", "/api/unknown", nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}

// TestStaticFiles 测试静态资源目录挂载
func TestStaticFiles(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>pirate</html>"), 0o644))

	db := repository.SetupTestDB()
	defer repository.CleanupTestDB(db)

	cfg := testConfig()
	cfg.Server.StaticDir = dir
	router := NewRouter(db, cfg, zap.NewNop())

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/static/index.html", nil)
	router.GetEngine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pirate")
}

// DegradedAPITestSuite 存储不可用时的降级模式测试套件
//
// 存储初始化失败后db为nil，游戏必须继续以内存镜像运行。
type DegradedAPITestSuite struct {
	suite.Suite
	router *Router
}

func (suite *DegradedAPITestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = NewRouter(nil, testConfig(), zap.NewNop())
}

func (suite *DegradedAPITestSuite) request(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(suite.T(), json.NewEncoder(&buf).Encode(body))
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	suite.router.GetEngine().ServeHTTP(w, req)
	return w
}

// TestHealthReportsDegraded 测试健康检查报告降级状态
func (suite *DegradedAPITestSuite) TestHealthReportsDegraded() {
	w := suite.request("GET", "/health", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(suite.T(), "degraded", resp["status"])
	assert.Equal(suite.T(), "unavailable", resp["store"])
}

// TestSpinWithoutStore 测试无存储时回合照常完成
func (suite *DegradedAPITestSuite) TestSpinWithoutStore() {
	w := suite.request("POST", "/api/spin", gin.H{"name": "BlackBeard", "bet": 10})
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Result  struct {
			Balance int64 `json:"balance"`
			Spins   int64 `json:"spins"`
		} `json:"result"`
	}
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(suite.T(), resp.Success)
	assert.Equal(suite.T(), int64(1), resp.Result.Spins)
	assert.GreaterOrEqual(suite.T(), resp.Result.Balance, int64(495))

	// 内存镜像在请求之间保持状态
	w = suite.request("POST", "/api/spin", gin.H{"name": "BlackBeard", "bet": 10})
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(suite.T(), int64(2), resp.Result.Spins)
}

// TestHighScoresWithoutStore 测试无存储时高分榜读写照常工作
func (suite *DegradedAPITestSuite) TestHighScoresWithoutStore() {
	w := suite.request("POST", "/api/high-scores", gin.H{"name": "Anne", "score": 500})
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	w = suite.request("GET", "/api/high-scores/Anne", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var score map[string]interface{}
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &score))
	assert.Equal(suite.T(), float64(500), score["score"])

	w = suite.request("GET", "/api/high-scores", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var scores []map[string]interface{}
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &scores))
	require.Len(suite.T(), scores, 1)
	assert.Equal(suite.T(), "Anne", scores[0]["name"])
}

func TestDegradedAPISuite(t *testing.T) {
	suite.Run(t, new(DegradedAPITestSuite))
}
