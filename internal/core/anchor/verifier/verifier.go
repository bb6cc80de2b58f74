// Package verifier 提供8元素编码Groth16证明的验证
//
// 🎯 **证明验证器 (Proof Verifier)**
//
// 对应登记处在接受ZK提交前执行的配对检查。验证是确定性的纯函数：
// - 有效证明 + 匹配的公开信号 → true
// - 畸形输入（非曲线点、越域标量、nil元素）→ false，而非panic
// - 错误只用于表示验证器自身不可用（密钥缺失）
package verifier

import (
	"errors"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
	"github.com/consensys/gnark/backend/groth16"
	groth16bn254 "github.com/consensys/gnark/backend/groth16/bn254"
	"github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/frontend"
	"github.com/ethereum/go-ethereum/common"

	"github.com/rayls/eth-anchor/internal/core/anchor/circuits"
	"github.com/rayls/eth-anchor/pkg/interfaces/anchor"
	logInterface "github.com/rayls/eth-anchor/pkg/interfaces/infrastructure/log"
	"github.com/rayls/eth-anchor/pkg/types"
)

// ErrVerifierUnavailable 验证密钥缺失，验证器不可用
var ErrVerifierUnavailable = errors.New("验证密钥缺失，验证器不可用")

// Verifier Groth16证明验证器
type Verifier struct {
	vk          groth16.VerifyingKey
	fingerprint common.Hash
	logger      logInterface.Logger
}

// New 创建证明验证器
func New(vk groth16.VerifyingKey, fingerprint common.Hash, logger logInterface.Logger) *Verifier {
	return &Verifier{
		vk:          vk,
		fingerprint: fingerprint,
		logger:      logger,
	}
}

// Verify 根据公开信号验证8元素编码的Groth16证明
func (v *Verifier) Verify(proof [types.ProofElementCount]*big.Int, publicSignals [types.PublicSignalCount]*big.Int) (bool, error) {
	if v.vk == nil {
		return false, ErrVerifierUnavailable
	}

	decoded, ok := DecodeProof(proof)
	if !ok {
		return false, nil
	}

	publicWitness, err := buildPublicWitness(publicSignals)
	if err != nil {
		return false, nil
	}

	if err := groth16.Verify(decoded, v.vk, publicWitness); err != nil {
		if v.logger != nil {
			v.logger.Debugf("证明验证未通过: %v", err)
		}
		return false, nil
	}
	return true, nil
}

// VKFingerprint 验证密钥指纹
func (v *Verifier) VKFingerprint() common.Hash {
	return v.fingerprint
}

// DecodeProof 由8个字段元素重建Groth16证明
//
// 编码顺序：[Ar.X, Ar.Y, Bs.X.A1, Bs.X.A0, Bs.Y.A1, Bs.Y.A0, Krs.X, Krs.Y]。
// 任一元素为nil、负数、超出基域，或重建的点不在曲线/子群上时返回 (nil, false)。
func DecodeProof(elements [types.ProofElementCount]*big.Int) (*groth16bn254.Proof, bool) {
	modulus := fp.Modulus()
	for _, e := range elements {
		if e == nil || e.Sign() < 0 || e.Cmp(modulus) >= 0 {
			return nil, false
		}
	}

	var proof groth16bn254.Proof
	proof.Ar.X.SetBigInt(elements[0])
	proof.Ar.Y.SetBigInt(elements[1])
	proof.Bs.X.A1.SetBigInt(elements[2])
	proof.Bs.X.A0.SetBigInt(elements[3])
	proof.Bs.Y.A1.SetBigInt(elements[4])
	proof.Bs.Y.A0.SetBigInt(elements[5])
	proof.Krs.X.SetBigInt(elements[6])
	proof.Krs.Y.SetBigInt(elements[7])

	if !proof.Ar.IsOnCurve() || !proof.Krs.IsOnCurve() {
		return nil, false
	}
	// G2点的子群检查不可省略：曲线上存在非子群的点
	if !proof.Bs.IsOnCurve() || !proof.Bs.IsInSubGroup() {
		return nil, false
	}

	return &proof, true
}

// buildPublicWitness 由公开信号构建仅含公开输入的witness
func buildPublicWitness(signals [types.PublicSignalCount]*big.Int) (witness.Witness, error) {
	scalarField := ecc.BN254.ScalarField()
	for _, s := range signals {
		if s == nil || s.Sign() < 0 || s.Cmp(scalarField) >= 0 {
			return nil, errors.New("公开信号超出标量域")
		}
	}

	assignment := &circuits.AnchorCircuit{
		Commitment:     signals[0],
		BlockNumber:    signals[1],
		MinBlockNumber: signals[2],
	}
	return frontend.NewWitness(assignment, scalarField, frontend.PublicOnly())
}

// 编译期接口检查
var _ anchor.ProofVerifier = (*Verifier)(nil)
