package game

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wfunc/pirate-slots/internal/config"
	"github.com/wfunc/pirate-slots/internal/errors"
	"github.com/wfunc/pirate-slots/internal/game/slot"
	"github.com/wfunc/pirate-slots/internal/logger"
	"github.com/wfunc/pirate-slots/internal/models"
	"github.com/wfunc/pirate-slots/internal/repository"
	"go.uber.org/zap"
)

// RoundResult 单轮游戏的完整结果
type RoundResult struct {
	RoundID    string             `json:"round_id"`
	Player     string             `json:"player"`
	Bet        int64              `json:"bet"`
	Outcome    slot.SpinOutcome   `json:"outcome"`
	Symbols    []string           `json:"symbols"`
	Payout     *slot.PayoutResult `json:"payout"`
	Balance    int64              `json:"balance"`
	BiggestWin int64              `json:"biggest_win"`
	Spins      int64              `json:"spins"`
}

// RoundController 游戏回合控制器
//
// 内存中的玩家状态是权威数据，存储层只是镜像：
// 持久化失败会被记录并吸收，已经展示给玩家的余额变化不回滚。
// 同一玩家同一时刻只允许一个进行中的回合。
type RoundController struct {
	mu  sync.Mutex
	cfg *config.GameConfig

	repo repository.PlayerRepository
	rng  slot.RandomGenerator

	inFlight map[string]bool
	mirror   map[string]*models.Player

	// onChange 在玩家状态变化后收到最新的排行榜快照
	onChange func([]*models.Player)
}

// NewRoundController 创建回合控制器
func NewRoundController(cfg *config.GameConfig, repo repository.PlayerRepository, rng slot.RandomGenerator) *RoundController {
	if rng == nil {
		rng = slot.NewCryptoRandomGenerator()
	}
	return &RoundController{
		cfg:      cfg,
		repo:     repo,
		rng:      rng,
		inFlight: make(map[string]bool),
		mirror:   make(map[string]*models.Player),
	}
}

// OnChange 注册排行榜变更回调
func (c *RoundController) OnChange(fn func([]*models.Player)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// PlaceBet 执行一个完整的游戏回合
//
// 顺序固定：校验 -> 扣注 -> 抽取 -> 结算 -> 应用 -> 持久化。
// 诅咒金额以扣注后的余额为基数。
func (c *RoundController) PlaceBet(ctx context.Context, name string, bet int64) (*RoundResult, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := c.validateBet(bet); err != nil {
		return nil, err
	}

	if err := c.acquire(name); err != nil {
		return nil, err
	}
	defer c.release(name)

	c.mu.Lock()
	defer c.mu.Unlock()

	player := c.loadPlayerLocked(ctx, name)

	if player.Balance < bet {
		return nil, errors.Newf(errors.ErrInsufficientFunds,
			"余额不足：当前 %d，需要 %d", player.Balance, bet)
	}

	player.Balance -= bet

	outcome := slot.DrawOutcome(c.rng, c.cfg.ReelCount)
	others := c.otherBalancesLocked(ctx, name)
	payout := slot.EvaluateWithRules(outcome, bet, player.Balance, others, slot.Rules{
		SkullCursePercent:    c.cfg.SkullCursePercent,
		TwoSkullCursePercent: c.cfg.TwoSkullCursePercent,
	})

	changed := c.applyLocked(player, payout)

	roundID := uuid.New().String()
	logger.LogRoundEvent("round_settled", name, roundID, map[string]interface{}{
		"bet":     bet,
		"outcome": outcome.Names(),
		"kind":    string(payout.Kind),
		"amount":  payout.Amount,
		"balance": player.Balance,
	})

	c.persistLocked(ctx, changed)
	c.notifyLocked()

	return &RoundResult{
		RoundID:    roundID,
		Player:     player.Name,
		Bet:        bet,
		Outcome:    outcome,
		Symbols:    outcome.Display(),
		Payout:     payout,
		Balance:    player.Balance,
		BiggestWin: player.BiggestWin,
		Spins:      player.Spins,
	}, nil
}

// ResetBalance 将玩家余额重置为初始值
//
// 这是余额不足后由玩家显式发起的恢复操作，不会自动触发。
func (c *RoundController) ResetBalance(ctx context.Context, name string) (*models.Player, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	player := c.loadPlayerLocked(ctx, name)
	player.Balance = c.cfg.InitialBalance
	player.LastPlayed = time.Now()

	logger.LogRoundEvent("balance_reset", name, "", map[string]interface{}{
		"balance": player.Balance,
	})

	c.persistLocked(ctx, []*models.Player{player})
	c.notifyLocked()

	snapshot := *player
	return &snapshot, nil
}

// GetPlayer 查询单个玩家的当前状态
func (c *RoundController) GetPlayer(ctx context.Context, name string) (*models.Player, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if p, ok := c.mirror[name]; ok {
		snapshot := *p
		return &snapshot, nil
	}

	p, err := c.repo.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	c.mirror[name] = p
	snapshot := *p
	return &snapshot, nil
}

// Snapshot 返回按余额降序排列的全部玩家快照
func (c *RoundController) Snapshot(ctx context.Context) []*models.Player {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked(ctx)
}

// UpsertScore 写入单条玩家分数（无条件覆盖）
//
// 服务于历史版本的高分接口：score 直接映射为余额。
func (c *RoundController) UpsertScore(ctx context.Context, name string, score int64, timestamp time.Time) (*models.Player, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	player := c.loadPlayerLocked(ctx, name)
	player.Balance = score
	if !timestamp.IsZero() {
		player.LastPlayed = timestamp
	} else {
		player.LastPlayed = time.Now()
	}

	c.persistLocked(ctx, []*models.Player{player})
	c.notifyLocked()

	snapshot := *player
	return &snapshot, nil
}

// UpsertScores 批量写入玩家分数（单个逻辑批次）
func (c *RoundController) UpsertScores(ctx context.Context, updates []ScoreUpdate) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	changed := make([]*models.Player, 0, len(updates))
	for _, u := range updates {
		if validateName(u.Name) != nil {
			continue
		}
		player := c.loadPlayerLocked(ctx, u.Name)
		player.Balance = u.Score
		if u.Timestamp.IsZero() {
			player.LastPlayed = time.Now()
		} else {
			player.LastPlayed = u.Timestamp
		}
		changed = append(changed, player)
	}

	if len(changed) == 0 {
		return 0, errors.New(errors.ErrInvalidParam, "没有可更新的记录")
	}

	c.persistLocked(ctx, changed)
	c.notifyLocked()
	return len(changed), nil
}

// ScoreUpdate 批量分数更新条目
type ScoreUpdate struct {
	Name      string
	Score     int64
	Timestamp time.Time
}

// Stats 排行榜统计信息
type Stats struct {
	TotalPlayers int64  `json:"total_players"`
	BiggestWin   int64  `json:"biggest_win"`
	RecentWinner string `json:"recent_winner"`
}

// GetStats 汇总排行榜统计
func (c *RoundController) GetStats(ctx context.Context) *Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	players := c.snapshotLocked(ctx)
	stats := &Stats{TotalPlayers: int64(len(players))}

	var latest time.Time
	for _, p := range players {
		if p.BiggestWin > stats.BiggestWin {
			stats.BiggestWin = p.BiggestWin
		}
		if p.LastPlayed.After(latest) {
			latest = p.LastPlayed
			stats.RecentWinner = p.Name
		}
	}
	return stats
}

// acquire 获取玩家回合锁
func (c *RoundController) acquire(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight[name] {
		return errors.Newf(errors.ErrSpinInProgress, "玩家 %s 有进行中的回合", name)
	}
	c.inFlight[name] = true
	return nil
}

func (c *RoundController) release(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inFlight, name)
}

// loadPlayerLocked 读取玩家状态，不存在时按初始余额创建
//
// 镜像优先；镜像缺失时回源存储；存储不可用时直接在镜像中创建。
func (c *RoundController) loadPlayerLocked(ctx context.Context, name string) *models.Player {
	if p, ok := c.mirror[name]; ok {
		return p
	}

	p, err := c.repo.FindByName(ctx, name)
	if err == nil {
		c.mirror[name] = p
		return p
	}
	if errors.GetCode(err) != errors.ErrPlayerNotFound {
		logger.Warn("读取玩家记录失败，使用内存镜像",
			zap.String("player", name), zap.Error(err))
	}

	p = &models.Player{
		Name:       name,
		Balance:    c.cfg.InitialBalance,
		LastPlayed: time.Now(),
	}
	c.mirror[name] = p
	return p
}

// otherBalancesLocked 采集其余玩家的余额快照
func (c *RoundController) otherBalancesLocked(ctx context.Context, caller string) []slot.PlayerBalance {
	c.refreshMirrorLocked(ctx)

	others := make([]slot.PlayerBalance, 0, len(c.mirror))
	for _, p := range c.mirror {
		if p.Name == caller {
			continue
		}
		others = append(others, slot.PlayerBalance{Name: p.Name, Balance: p.Balance})
	}
	sort.Slice(others, func(i, j int) bool { return others[i].Name < others[j].Name })
	return others
}

// refreshMirrorLocked 从存储补齐镜像中缺失的玩家
//
// 镜像中已有的条目是权威数据，不会被存储内容覆盖。
func (c *RoundController) refreshMirrorLocked(ctx context.Context) {
	stored, err := c.repo.GetAll(ctx)
	if err != nil {
		logger.Warn("读取玩家列表失败，使用内存镜像", zap.Error(err))
		return
	}
	for _, p := range stored {
		if _, ok := c.mirror[p.Name]; !ok {
			c.mirror[p.Name] = p
		}
	}
}

// applyLocked 将赔付结果应用到玩家状态，返回全部被修改的记录
func (c *RoundController) applyLocked(player *models.Player, payout *slot.PayoutResult) []*models.Player {
	now := time.Now()
	player.Spins++
	player.LastPlayed = now
	changed := []*models.Player{player}

	switch {
	case payout.Amount > 0:
		player.Balance += payout.Amount
		if payout.Amount > player.BiggestWin {
			player.BiggestWin = payout.Amount
		}
	case payout.IsCurse() && payout.CurseOutcome == slot.CurseDistributed:
		player.Balance -= payout.DistributedTotal
		for name, p := range c.mirror {
			if name == player.Name || p.Balance <= 0 {
				continue
			}
			p.Balance += payout.PerPlayerAmount
			changed = append(changed, p)
		}
	}
	return changed
}

// persistLocked 将变更批量写入存储
//
// 写入失败只记录日志，不影响已应用的内存状态。
func (c *RoundController) persistLocked(ctx context.Context, players []*models.Player) {
	if len(players) == 0 {
		return
	}
	start := time.Now()
	err := c.repo.UpsertMany(ctx, players)
	logger.LogStoreOperation("upsert_many", "players", time.Since(start), err)
	if err != nil {
		logger.Error("持久化玩家状态失败，内存状态保持生效",
			zap.Int("count", len(players)), zap.Error(err))
	}
}

// snapshotLocked 合并存储与镜像后按余额降序返回
func (c *RoundController) snapshotLocked(ctx context.Context) []*models.Player {
	c.refreshMirrorLocked(ctx)

	players := make([]*models.Player, 0, len(c.mirror))
	for _, p := range c.mirror {
		snapshot := *p
		players = append(players, &snapshot)
	}
	sort.Slice(players, func(i, j int) bool {
		if players[i].Balance != players[j].Balance {
			return players[i].Balance > players[j].Balance
		}
		return players[i].Name < players[j].Name
	})
	return players
}

func (c *RoundController) notifyLocked() {
	if c.onChange == nil {
		return
	}
	c.onChange(c.snapshotLocked(context.Background()))
}

// validateBet 校验下注额在配置范围内且为增量的整数倍
func (c *RoundController) validateBet(bet int64) error {
	if bet < c.cfg.MinBet || bet > c.cfg.MaxBet {
		return errors.Newf(errors.ErrInvalidBet,
			"下注额 %d 超出范围 [%d, %d]", bet, c.cfg.MinBet, c.cfg.MaxBet)
	}
	if c.cfg.BetIncrement > 0 && bet%c.cfg.BetIncrement != 0 {
		return errors.Newf(errors.ErrInvalidBet,
			"下注额 %d 必须是 %d 的整数倍", bet, c.cfg.BetIncrement)
	}
	return nil
}

func validateName(name string) error {
	if name == "" || len(name) > 100 {
		return errors.New(errors.ErrInvalidPlayerName, "玩家名称不能为空且不超过100字符")
	}
	return nil
}
