package slot

// 符号索引定义
//
// 索引顺序即平局裁决顺序：多个符号对并列时取索引最小者。
const (
	SYMBOL_SKULL = 0 // 骷髅
	SYMBOL_COIN  = 1 // 金币
	SYMBOL_SWORD = 2 // 弯刀
	SYMBOL_MAP   = 3 // 藏宝图
	SYMBOL_SHIP  = 4 // 海盗船
	SYMBOL_CHEST = 5 // 宝箱

	// SymbolCount 符号集合大小
	SymbolCount = 6
)

// SymbolInfo 符号信息
type SymbolInfo struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Display string `json:"display"` // 显示字符
	Value   int64  `json:"value"`   // 赔付基数
}

// symbolTable 固定符号表（索引即符号ID）
var symbolTable = [SymbolCount]SymbolInfo{
	{ID: SYMBOL_SKULL, Name: "skull", Display: "💀", Value: 10},
	{ID: SYMBOL_COIN, Name: "coin", Display: "🪙", Value: 20},
	{ID: SYMBOL_SWORD, Name: "sword", Display: "⚔️", Value: 30},
	{ID: SYMBOL_MAP, Name: "map", Display: "🗺️", Value: 40},
	{ID: SYMBOL_SHIP, Name: "ship", Display: "🏴‍☠️", Value: 50},
	{ID: SYMBOL_CHEST, Name: "chest", Display: "💰", Value: 100},
}

// GetSymbolInfo 获取符号信息
func GetSymbolInfo(symbolID int) *SymbolInfo {
	if symbolID < 0 || symbolID >= SymbolCount {
		return &SymbolInfo{ID: symbolID, Name: "unknown", Display: "?", Value: 0}
	}
	info := symbolTable[symbolID]
	return &info
}

// SymbolName 获取符号名称
func SymbolName(symbolID int) string {
	return GetSymbolInfo(symbolID).Name
}

// SymbolValue 获取符号赔付基数
func SymbolValue(symbolID int) int64 {
	return GetSymbolInfo(symbolID).Value
}

// IsSkull 判断是否为骷髅符号
func IsSkull(symbolID int) bool {
	return symbolID == SYMBOL_SKULL
}

// AllSymbols 返回完整符号表
func AllSymbols() []SymbolInfo {
	symbols := make([]SymbolInfo, SymbolCount)
	copy(symbols, symbolTable[:])
	return symbols
}
