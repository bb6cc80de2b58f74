// Package commitment 提供链下的哈希承诺派生
//
// 🎯 **承诺派生器 (Commitment Deriver)**
//
// 中继在生成证明前用它计算 MiMC(stateRoot, blockNumber, validatorId, salt)。
// 这里的计算与电路内的MiMC约束逐比特一致，否则证明无法通过验证。
package commitment

import (
	"errors"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"

	"github.com/rayls/eth-anchor/pkg/interfaces/anchor"
	"github.com/rayls/eth-anchor/pkg/types"
)

// 派生输入校验错误
var (
	// ErrNilInput 任一输入为nil
	ErrNilInput = errors.New("派生输入不能为nil")

	// ErrNegativeInput 任一输入为负数
	ErrNegativeInput = errors.New("派生输入不能为负数")
)

// Deriver MiMC承诺派生器
//
// 无状态且并发安全：每次派生使用全新的哈希器实例。
type Deriver struct{}

// New 创建承诺派生器
func New() *Deriver {
	return &Deriver{}
}

// Derive 由电路私有输入派生哈希承诺
//
// 输入按 stateRoot, blockNumber, validatorId, salt 的固定顺序吸收。
// 超出BN254标量域的输入按域模数归约后参与哈希，与电路内行为一致。
func (d *Deriver) Derive(stateRoot, blockNumber, validatorID, salt *big.Int) (*big.Int, error) {
	inputs := []*big.Int{stateRoot, blockNumber, validatorID, salt}
	for _, in := range inputs {
		if in == nil {
			return nil, ErrNilInput
		}
		if in.Sign() < 0 {
			return nil, ErrNegativeInput
		}
	}

	h := mimc.NewMiMC()
	for _, in := range inputs {
		// fr.Element.SetBigInt 对超域输入做模归约
		var elem fr.Element
		elem.SetBigInt(in)
		b := elem.Bytes()
		if _, err := h.Write(b[:]); err != nil {
			return nil, err
		}
	}

	return new(big.Int).SetBytes(h.Sum(nil)), nil
}

// DeriveFromEvent 由源链提交事件派生承诺
func (d *Deriver) DeriveFromEvent(ev types.SourceCommitEvent, validatorID, salt *big.Int) (*big.Int, error) {
	stateRoot := new(big.Int).SetBytes(ev.StateRoot[:])
	blockNumber := new(big.Int).SetUint64(ev.BlockNumber)
	return d.Derive(stateRoot, blockNumber, validatorID, salt)
}

// Modulus BN254标量域模数
func Modulus() *big.Int {
	return ecc.BN254.ScalarField()
}

// 编译期接口检查
var _ anchor.CommitmentDeriver = (*Deriver)(nil)
