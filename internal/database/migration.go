package database

import (
	"fmt"

	"github.com/wfunc/pirate-slots/internal/logger"
	"github.com/wfunc/pirate-slots/internal/models"
)

// AutoMigrate 自动迁移数据库表结构
func AutoMigrate() error {
	if DB == nil {
		return fmt.Errorf("数据库未初始化")
	}

	logger.Info("开始数据库迁移...")

	if err := DB.AutoMigrate(
		&models.Player{},
	); err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}

	logger.Info("数据库迁移完成")
	return nil
}
