package models

import (
	"time"

	"gorm.io/gorm"
)

// Player 玩家记录表
//
// 每个唯一的玩家名称在存储中只存在一条记录；
// 玩家在首次游戏时创建，之后只更新、不删除。
type Player struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name       string    `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Balance    int64     `gorm:"not null;default:0;index" json:"balance"`
	BiggestWin int64     `gorm:"not null;default:0" json:"biggest_win"`
	Spins      int64     `gorm:"not null;default:0" json:"spins"`
	LastPlayed time.Time `json:"last_played"`
}

// TableName 指定Player表名
func (Player) TableName() string {
	return "players"
}

// BeforeSave 保存前的钩子
func (p *Player) BeforeSave(tx *gorm.DB) error {
	if p.LastPlayed.IsZero() {
		p.LastPlayed = time.Now()
	}
	return nil
}

// HighScore 排行榜接口的传输结构
//
// 与历史版本的高分接口保持同一形状：score 即当前余额，
// timestamp 为 ISO-8601 字符串。biggestWin/spins 只出现在
// 完整的玩家结构中，不进入高分榜形状。
type HighScore struct {
	Name      string `json:"name"`
	Score     int64  `json:"score"`
	Timestamp string `json:"timestamp"`
}

// ToHighScore 转换为高分榜传输结构
func (p *Player) ToHighScore() HighScore {
	return HighScore{
		Name:      p.Name,
		Score:     p.Balance,
		Timestamp: p.LastPlayed.UTC().Format(time.RFC3339),
	}
}

// HighScoresOf 批量转换玩家记录
func HighScoresOf(players []*Player) []HighScore {
	scores := make([]HighScore, 0, len(players))
	for _, p := range players {
		scores = append(scores, p.ToHighScore())
	}
	return scores
}
