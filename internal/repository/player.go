package repository

import (
	"context"
	"time"

	"github.com/wfunc/pirate-slots/internal/errors"
	"github.com/wfunc/pirate-slots/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PlayerRepository 玩家记录仓储接口
//
// GetAll/TopN 始终按余额降序返回，排行榜视图依赖这一顺序。
// Upsert 采用无条件覆盖策略：诅咒分配会合法地降低余额，
// 「仅更高才覆盖」的策略会让分配结果丢失。
type PlayerRepository interface {
	BaseRepository
	GetAll(ctx context.Context) ([]*models.Player, error)
	TopN(ctx context.Context, n int) ([]*models.Player, error)
	FindByName(ctx context.Context, name string) (*models.Player, error)
	Upsert(ctx context.Context, player *models.Player) error
	UpsertMany(ctx context.Context, players []*models.Player) error
	Count(ctx context.Context) (int64, error)
	MostRecent(ctx context.Context) (*models.Player, error)
}

// playerRepo 玩家记录仓储实现
type playerRepo struct {
	*BaseRepo
}

// NewPlayerRepository 创建玩家记录仓储
func NewPlayerRepository(db *gorm.DB) PlayerRepository {
	return &playerRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// upsertColumns 覆盖写入的字段集合
var upsertColumns = []string{"balance", "biggest_win", "spins", "last_played", "updated_at"}

// GetAll 获取全部玩家记录（按余额降序）
func (r *playerRepo) GetAll(ctx context.Context) ([]*models.Player, error) {
	var players []*models.Player
	err := r.db.WithContext(ctx).
		Order("balance DESC").
		Find(&players).Error
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrStorageQuery)
	}
	return players, nil
}

// TopN 获取余额最高的前N名玩家
func (r *playerRepo) TopN(ctx context.Context, n int) ([]*models.Player, error) {
	var players []*models.Player
	err := r.db.WithContext(ctx).
		Order("balance DESC").
		Limit(n).
		Find(&players).Error
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrStorageQuery)
	}
	return players, nil
}

// FindByName 根据名称查找玩家（精确、区分大小写）
func (r *playerRepo) FindByName(ctx context.Context, name string) (*models.Player, error) {
	var player models.Player
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&player).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.Newf(errors.ErrPlayerNotFound, "玩家 %s 不存在", name)
		}
		return nil, errors.Wrap(err, errors.ErrStorageQuery)
	}
	return &player, nil
}

// Upsert 插入或无条件覆盖单条玩家记录
func (r *playerRepo) Upsert(ctx context.Context, player *models.Player) error {
	if player.LastPlayed.IsZero() {
		player.LastPlayed = time.Now()
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns(upsertColumns),
		}).
		Create(player).Error
	if err != nil {
		return errors.Wrap(err, errors.ErrStorageWrite)
	}
	return nil
}

// UpsertMany 批量插入或覆盖玩家记录
//
// 整批在单个事务内完成，诅咒分配不会被读到半套用状态。
func (r *playerRepo) UpsertMany(ctx context.Context, players []*models.Player) error {
	if len(players) == 0 {
		return nil
	}

	now := time.Now()
	for _, p := range players {
		if p.LastPlayed.IsZero() {
			p.LastPlayed = now
		}
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "name"}},
				DoUpdates: clause.AssignmentColumns(upsertColumns),
			}).
			CreateInBatches(players, 100).Error
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrTransaction)
	}
	return nil
}

// Count 统计玩家总数
func (r *playerRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Player{}).Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrStorageQuery)
	}
	return count, nil
}

// MostRecent 获取最近一次游戏的玩家
func (r *playerRepo) MostRecent(ctx context.Context) (*models.Player, error) {
	var player models.Player
	err := r.db.WithContext(ctx).
		Order("last_played DESC").
		First(&player).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New(errors.ErrPlayerNotFound, "暂无玩家记录")
		}
		return nil, errors.Wrap(err, errors.ErrStorageQuery)
	}
	return &player, nil
}

// WithTx 使用事务
func (r *playerRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &playerRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}
