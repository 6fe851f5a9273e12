package repository

import (
	"context"

	"github.com/wfunc/pirate-slots/internal/errors"
	"github.com/wfunc/pirate-slots/internal/models"
	"gorm.io/gorm"
)

// unavailableRepo 存储不可用时的占位仓储
//
// 存储初始化失败后服务以降级模式启动，此时没有可用的数据库句柄。
// 所有操作都返回存储错误，调用方的内存镜像回退逻辑由此接管。
type unavailableRepo struct{}

// NewUnavailableRepository 创建存储不可用时的占位仓储
func NewUnavailableRepository() PlayerRepository {
	return unavailableRepo{}
}

// GetDB 获取数据库实例
func (unavailableRepo) GetDB() *gorm.DB {
	return nil
}

// WithTx 使用事务
func (unavailableRepo) WithTx(tx *gorm.DB) BaseRepository {
	return unavailableRepo{}
}

// GetAll 获取全部玩家记录
func (unavailableRepo) GetAll(ctx context.Context) ([]*models.Player, error) {
	return nil, errors.New(errors.ErrStorageQuery, "存储不可用")
}

// TopN 获取余额最高的前N名玩家
func (unavailableRepo) TopN(ctx context.Context, n int) ([]*models.Player, error) {
	return nil, errors.New(errors.ErrStorageQuery, "存储不可用")
}

// FindByName 根据名称查找玩家
func (unavailableRepo) FindByName(ctx context.Context, name string) (*models.Player, error) {
	return nil, errors.New(errors.ErrStorageQuery, "存储不可用")
}

// Upsert 插入或覆盖单条玩家记录
func (unavailableRepo) Upsert(ctx context.Context, player *models.Player) error {
	return errors.New(errors.ErrStorageWrite, "存储不可用")
}

// UpsertMany 批量插入或覆盖玩家记录
func (unavailableRepo) UpsertMany(ctx context.Context, players []*models.Player) error {
	return errors.New(errors.ErrStorageWrite, "存储不可用")
}

// Count 统计玩家总数
func (unavailableRepo) Count(ctx context.Context) (int64, error) {
	return 0, errors.New(errors.ErrStorageQuery, "存储不可用")
}

// MostRecent 获取最近一次游戏的玩家
func (unavailableRepo) MostRecent(ctx context.Context) (*models.Player, error) {
	return nil, errors.New(errors.ErrStorageQuery, "存储不可用")
}
