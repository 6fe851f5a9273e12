package slot

import "fmt"

// SpinOutcome 一次旋转的卷轴结果（每个卷轴一个符号ID）
type SpinOutcome []int

// Display 转换为显示字符序列
func (o SpinOutcome) Display() []string {
	out := make([]string, len(o))
	for i, s := range o {
		out[i] = GetSymbolInfo(s).Display
	}
	return out
}

// Names 转换为符号名称序列
func (o SpinOutcome) Names() []string {
	out := make([]string, len(o))
	for i, s := range o {
		out[i] = SymbolName(s)
	}
	return out
}

// ResultKind 赔付结果类别
type ResultKind string

const (
	// KindJackpot 三个相同的非骷髅符号
	KindJackpot ResultKind = "jackpot"
	// KindPartialMatch 两个相同的非骷髅符号
	KindPartialMatch ResultKind = "partial_match"
	// KindSkullCurse 三个骷髅，分走一半余额
	KindSkullCurse ResultKind = "skull_curse"
	// KindTwoSkullCurse 两个骷髅，分走33%余额
	KindTwoSkullCurse ResultKind = "two_skull_curse"
	// KindNoWin 未中奖
	KindNoWin ResultKind = "no_win"
)

// CurseOutcome 诅咒分配的执行情况
type CurseOutcome string

const (
	// CurseDistributed 正常分配
	CurseDistributed CurseOutcome = "distributed"
	// CurseNothingToGive 可分配总额为零
	CurseNothingToGive CurseOutcome = "nothing_to_give"
	// CurseNoRecipients 没有符合条件的接收者
	CurseNoRecipients CurseOutcome = "no_recipients"
	// CurseShareTooSmall 人均份额不足一枚金币
	CurseShareTooSmall CurseOutcome = "share_too_small"
)

// PayoutResult 单轮赔付结果
//
// 每轮恰好产生一个结果，只由旋转结果、下注额和
// （诅咒类别下）其余玩家的余额快照决定。
type PayoutResult struct {
	Kind   ResultKind `json:"kind"`
	Symbol int        `json:"symbol,omitempty"` // 中奖/诅咒符号ID
	Count  int        `json:"count,omitempty"`  // 匹配数量
	Amount int64      `json:"amount"`           // 赢取金额（诅咒为0）

	// 诅咒类别专用字段
	CurseOutcome     CurseOutcome `json:"curse_outcome,omitempty"`
	DistributedTotal int64        `json:"distributed_total,omitempty"` // 施法者被扣除的总额
	PerPlayerAmount  int64        `json:"per_player_amount,omitempty"`
	RecipientCount   int          `json:"recipient_count,omitempty"`

	Message string `json:"message"` // 面向玩家的结果文案
}

// IsCurse 判断结果是否为诅咒类别
func (r *PayoutResult) IsCurse() bool {
	return r.Kind == KindSkullCurse || r.Kind == KindTwoSkullCurse
}

// PlayerBalance 其余玩家的余额快照条目
type PlayerBalance struct {
	Name    string `json:"name"`
	Balance int64  `json:"balance"`
}

// 结果文案
func jackpotMessage(symbolID int, amount int64) string {
	return fmt.Sprintf("大奖！三个%s，赢得 %d 金币！", GetSymbolInfo(symbolID).Display, amount)
}

func partialMatchMessage(symbolID int, amount int64) string {
	return fmt.Sprintf("两个%s，赢得 %d 金币", GetSymbolInfo(symbolID).Display, amount)
}

func curseMessage(kind ResultKind, r *PayoutResult) string {
	prefix := "骷髅诅咒！"
	if kind == KindTwoSkullCurse {
		prefix = "双骷髅诅咒！"
	}
	switch r.CurseOutcome {
	case CurseNothingToGive:
		return prefix + "但你已一贫如洗，无物可分"
	case CurseNoRecipients:
		return prefix + "但海上空无一人，诅咒落空"
	case CurseShareTooSmall:
		return prefix + "但金币太少，不够分给任何人"
	default:
		return fmt.Sprintf("%s你的 %d 金币被瓜分，%d 名海盗每人获得 %d",
			prefix, r.DistributedTotal, r.RecipientCount, r.PerPlayerAmount)
	}
}
