// Package circuits 定义锚定系统的零知识电路
//
// 🎯 **状态根承诺电路 (State-Root Commitment Circuit)**
//
// 电路证明两件事：
// 1. 知识性：证明者知道 (stateRoot, validatorId, salt)，使得
//    MiMC(stateRoot, blockNumber, validatorId, salt) == commitment
// 2. 范围性：blockNumber >= minBlockNumber
//
// ⚠️ 电路内与链下的承诺派生必须逐比特一致：两侧都使用BN254标量域
// 上的MiMC，输入顺序固定为 stateRoot, blockNumber, validatorId, salt。
package circuits

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"
)

// AnchorCircuit 状态根承诺电路
//
// 公开输入在前，私有输入在后；公开输入的声明顺序决定了
// 验证时公开信号的排列：[commitment, blockNumber, minBlockNumber]。
type AnchorCircuit struct {
	// ================== 公开输入 ==================
	Commitment     frontend.Variable `gnark:",public"` // 哈希承诺
	BlockNumber    frontend.Variable `gnark:",public"` // 源链区块号
	MinBlockNumber frontend.Variable `gnark:",public"` // 允许的最小区块号

	// ================== 私有输入 ==================
	StateRoot   frontend.Variable // 源链状态根
	ValidatorID frontend.Variable // 验证者标识
	Salt        frontend.Variable // 盐值
}

// Define 定义电路约束
func (c *AnchorCircuit) Define(api frontend.API) error {
	h, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}

	// 承诺约束：MiMC(stateRoot, blockNumber, validatorId, salt) == commitment
	h.Write(c.StateRoot, c.BlockNumber, c.ValidatorID, c.Salt)
	api.AssertIsEqual(h.Sum(), c.Commitment)

	// 范围约束：blockNumber >= minBlockNumber
	api.AssertIsLessOrEqual(c.MinBlockNumber, c.BlockNumber)

	return nil
}
