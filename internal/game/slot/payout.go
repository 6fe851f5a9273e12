package slot

// Rules 诅咒分配比例（百分比整数）
type Rules struct {
	SkullCursePercent    int
	TwoSkullCursePercent int
}

// DefaultRules 默认规则
var DefaultRules = Rules{
	SkullCursePercent:    50,
	TwoSkullCursePercent: 33,
}

// Evaluate 按默认规则计算单轮赔付结果
func Evaluate(outcome SpinOutcome, bet int64, callerBalance int64, others []PlayerBalance) *PayoutResult {
	return EvaluateWithRules(outcome, bet, callerBalance, others, DefaultRules)
}

// EvaluateWithRules 计算单轮赔付结果
//
// 纯函数：对任意输入恰好返回一个结果，永不失败。
// callerBalance 是扣除本轮下注后的余额，诅咒金额以它为基数。
// others 只在诅咒类别下使用，传入其余玩家的余额快照。
//
// 规则按优先级匹配，先命中者生效：
//  1. 三个骷髅       -> 骷髅诅咒，分走 floor(余额*50/100)
//  2. 三个相同非骷髅 -> 大奖，bet * 符号基数
//  3. 恰好两个骷髅   -> 双骷髅诅咒，分走 floor(余额*33/100)
//  4. 两个相同符号   -> 小奖，floor(bet * 基数/2 * 数量/3)
//  5. 其余           -> 未中奖
func EvaluateWithRules(outcome SpinOutcome, bet int64, callerBalance int64, others []PlayerBalance, rules Rules) *PayoutResult {
	counts := countSymbols(outcome)
	skulls := counts[SYMBOL_SKULL]
	reels := len(outcome)

	// 规则1：全部骷髅
	if skulls == reels && reels > 0 {
		return evaluateCurse(KindSkullCurse, callerBalance*int64(rules.SkullCursePercent)/100, others)
	}

	// 规则2：三个相同的非骷髅符号
	for sym := 1; sym < SymbolCount; sym++ {
		if counts[sym] == reels {
			amount := bet * SymbolValue(sym)
			return &PayoutResult{
				Kind:    KindJackpot,
				Symbol:  sym,
				Count:   reels,
				Amount:  amount,
				Message: jackpotMessage(sym, amount),
			}
		}
	}

	// 规则3：恰好两个骷髅，第三个符号任意
	if skulls == 2 {
		return evaluateCurse(KindTwoSkullCurse, callerBalance*int64(rules.TwoSkullCursePercent)/100, others)
	}

	// 规则4：两个相同符号，多对并列时取索引最小者
	for sym := 0; sym < SymbolCount; sym++ {
		count := counts[sym]
		if count < 2 {
			continue
		}
		// 等价于 floor(bet * (value/2) * (count/3))
		amount := bet * SymbolValue(sym) * int64(count) / 6
		return &PayoutResult{
			Kind:    KindPartialMatch,
			Symbol:  sym,
			Count:   count,
			Amount:  amount,
			Message: partialMatchMessage(sym, amount),
		}
	}

	return &PayoutResult{
		Kind:    KindNoWin,
		Message: "未中奖，再试一次",
	}
}

// evaluateCurse 计算诅咒类别的分配方案
//
// 施法者恰好被扣除 DistributedTotal；人均份额向下取整后的
// 余数不再二次分配。三种退化情形不改变任何余额，
// 但作为可报告的结果返回，不视为错误。
func evaluateCurse(kind ResultKind, total int64, others []PlayerBalance) *PayoutResult {
	result := &PayoutResult{
		Kind:   kind,
		Symbol: SYMBOL_SKULL,
	}

	recipients := eligibleRecipients(others)

	switch {
	case total <= 0:
		result.CurseOutcome = CurseNothingToGive
	case len(recipients) == 0:
		result.CurseOutcome = CurseNoRecipients
	case total/int64(len(recipients)) == 0:
		result.CurseOutcome = CurseShareTooSmall
	default:
		result.CurseOutcome = CurseDistributed
		result.DistributedTotal = total
		result.PerPlayerAmount = total / int64(len(recipients))
		result.RecipientCount = len(recipients)
	}

	result.Message = curseMessage(kind, result)
	return result
}

// eligibleRecipients 过滤出余额为正的接收者
func eligibleRecipients(others []PlayerBalance) []PlayerBalance {
	recipients := make([]PlayerBalance, 0, len(others))
	for _, p := range others {
		if p.Balance > 0 {
			recipients = append(recipients, p)
		}
	}
	return recipients
}

func countSymbols(outcome SpinOutcome) [SymbolCount]int {
	var counts [SymbolCount]int
	for _, s := range outcome {
		if s >= 0 && s < SymbolCount {
			counts[s]++
		}
	}
	return counts
}
