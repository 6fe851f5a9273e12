package slot

import (
	"crypto/rand"
	"math/big"
)

// RandomGenerator 随机数生成器接口
type RandomGenerator interface {
	// NextInt 生成 [min, max) 范围内的随机整数
	NextInt(min, max int) int
}

// CryptoRandomGenerator 加密安全的随机数生成器
type CryptoRandomGenerator struct{}

// NewCryptoRandomGenerator 创建加密随机数生成器
func NewCryptoRandomGenerator() *CryptoRandomGenerator {
	return &CryptoRandomGenerator{}
}

// NextInt 生成指定范围内的随机整数
func (g *CryptoRandomGenerator) NextInt(min, max int) int {
	if min >= max {
		return min
	}
	diff := big.NewInt(int64(max - min))
	n, _ := rand.Int(rand.Reader, diff)
	return min + int(n.Int64())
}

// DrawOutcome 为每个卷轴独立均匀抽取一个符号
func DrawOutcome(rng RandomGenerator, reelCount int) SpinOutcome {
	outcome := make(SpinOutcome, reelCount)
	for i := range outcome {
		outcome[i] = rng.NextInt(0, SymbolCount)
	}
	return outcome
}
