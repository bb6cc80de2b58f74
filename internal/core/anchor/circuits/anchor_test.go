package circuits

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend"
	"github.com/consensys/gnark/test"

	"github.com/rayls/eth-anchor/internal/core/anchor/commitment"
)

// validAssignment 构造一组满足全部约束的电路赋值
func validAssignment(t *testing.T) *AnchorCircuit {
	t.Helper()

	stateRoot := big.NewInt(123456789)
	blockNumber := big.NewInt(100)
	validatorID := big.NewInt(1)
	salt := big.NewInt(987654321)

	c, err := commitment.New().Derive(stateRoot, blockNumber, validatorID, salt)
	if err != nil {
		t.Fatalf("派生承诺失败: %v", err)
	}

	return &AnchorCircuit{
		Commitment:     c,
		BlockNumber:    blockNumber,
		MinBlockNumber: big.NewInt(50),
		StateRoot:      stateRoot,
		ValidatorID:    validatorID,
		Salt:           salt,
	}
}

func TestAnchorCircuit(t *testing.T) {
	assert := test.NewAssert(t)

	t.Run("正确赋值可证明", func(t *testing.T) {
		assert.ProverSucceeded(&AnchorCircuit{}, validAssignment(t),
			test.WithCurves(ecc.BN254), test.WithBackends(backend.GROTH16))
	})

	t.Run("承诺不匹配无法证明", func(t *testing.T) {
		assignment := validAssignment(t)
		assignment.Commitment = big.NewInt(1)
		assert.ProverFailed(&AnchorCircuit{}, assignment,
			test.WithCurves(ecc.BN254), test.WithBackends(backend.GROTH16))
	})

	t.Run("私有输入被篡改无法证明", func(t *testing.T) {
		assignment := validAssignment(t)
		assignment.StateRoot = big.NewInt(666)
		assert.ProverFailed(&AnchorCircuit{}, assignment,
			test.WithCurves(ecc.BN254), test.WithBackends(backend.GROTH16))
	})

	t.Run("区块号低于下限无法证明", func(t *testing.T) {
		assignment := validAssignment(t)
		assignment.MinBlockNumber = big.NewInt(101)
		assert.ProverFailed(&AnchorCircuit{}, assignment,
			test.WithCurves(ecc.BN254), test.WithBackends(backend.GROTH16))
	})

	t.Run("区块号等于下限可证明", func(t *testing.T) {
		assignment := validAssignment(t)
		assignment.MinBlockNumber = big.NewInt(100)
		assert.ProverSucceeded(&AnchorCircuit{}, assignment,
			test.WithCurves(ecc.BN254), test.WithBackends(backend.GROTH16))
	})
}

// TestCircuitMatchesOffChainHash 电路内MiMC与链下派生器逐比特一致
func TestCircuitMatchesOffChainHash(t *testing.T) {
	assert := test.NewAssert(t)

	// 链下派生的承诺直接作为电路公开输入，能证明即说明两侧哈希一致
	for _, salt := range []int64{1, 42, 1 << 30} {
		c, err := commitment.New().Derive(big.NewInt(999), big.NewInt(10), big.NewInt(2), big.NewInt(salt))
		if err != nil {
			t.Fatalf("派生承诺失败: %v", err)
		}
		assignment := &AnchorCircuit{
			Commitment:     c,
			BlockNumber:    big.NewInt(10),
			MinBlockNumber: big.NewInt(0),
			StateRoot:      big.NewInt(999),
			ValidatorID:    big.NewInt(2),
			Salt:           big.NewInt(salt),
		}
		assert.ProverSucceeded(&AnchorCircuit{}, assignment,
			test.WithCurves(ecc.BN254), test.WithBackends(backend.GROTH16))
	}
}
