package game

import (
	"context"
	"time"

	"github.com/wfunc/pirate-slots/internal/game/slot"
	"github.com/wfunc/pirate-slots/internal/models"
	"github.com/wfunc/pirate-slots/internal/repository"
)

// demoRoster 示例海盗玩家名单
var demoRoster = []string{
	"Blackbeard",
	"Captain Hook",
	"Long John Silver",
	"Anne Bonny",
	"Calico Jack",
	"Mary Read",
	"Captain Kidd",
	"Bartholomew Roberts",
	"Grace O'Malley",
	"Henry Morgan",
}

// SeedDemoRoster 在存储为空时写入一批示例玩家
//
// 余额在 [100, 5000) 内随机，最近游戏时间落在过去30天内。
// 已存在任何玩家记录时不做写入，返回写入的玩家数量。
func SeedDemoRoster(ctx context.Context, repo repository.PlayerRepository, rng slot.RandomGenerator) (int, error) {
	count, err := repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	if rng == nil {
		rng = slot.NewCryptoRandomGenerator()
	}

	players := make([]*models.Player, 0, len(demoRoster))
	for _, name := range demoRoster {
		players = append(players, &models.Player{
			Name:       name,
			Balance:    int64(rng.NextInt(100, 5000)),
			LastPlayed: time.Now().AddDate(0, 0, -rng.NextInt(0, 30)),
		})
	}

	if err := repo.UpsertMany(ctx, players); err != nil {
		return 0, err
	}
	return len(players), nil
}
