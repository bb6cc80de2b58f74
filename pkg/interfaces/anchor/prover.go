// Package anchor 提供锚定系统的核心领域接口定义
//
// 📋 **证明流水线接口 (Proof Pipeline Interface)**
//
// 承诺派生 → 证明生成 → 证明验证 三个阶段的接口定义。
// 派生与生成在中继侧（链下）执行，验证在登记处接受ZK提交前执行。
package anchor

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/rayls/eth-anchor/pkg/types"
)

// CommitmentDeriver 承诺派生器
//
// 对同一组输入，派生结果必须与电路内计算逐比特一致，
// 否则生成的证明无法通过验证。
type CommitmentDeriver interface {
	// Derive 由电路私有输入派生哈希承诺
	// 输入超出标量域的部分按域模数归约；任一输入为nil或负数时报错
	Derive(stateRoot, blockNumber, validatorID, salt *big.Int) (*big.Int, error)

	// DeriveFromEvent 便捷方法：由源链提交事件派生承诺
	DeriveFromEvent(ev types.SourceCommitEvent, validatorID, salt *big.Int) (*big.Int, error)
}

// ProofGenerator 证明生成器
//
// 持有证明密钥与已编译的约束系统。密钥材料缺失或指纹不匹配时
// 构造即失败（fail-closed），不会退化为无证明模式。
type ProofGenerator interface {
	// Prove 为给定电路输入生成Groth16证明
	// 返回的证明束包含8个证明元素与3个公开信号
	Prove(ctx context.Context, inputs types.CircuitInputs) (*types.ProofBundle, error)

	// VerifyLocally 在提交前本地预验证证明束，避免浪费链上提交
	VerifyLocally(bundle *types.ProofBundle) (bool, error)

	// VKFingerprint 当前验证密钥的指纹
	VKFingerprint() common.Hash
}

// ProofVerifier 证明验证器
//
// 验证是确定性的纯函数：不修改任何状态，同样的输入永远得到同样的结果。
// 畸形输入（非曲线点、越域标量、nil元素）一律返回false而非panic。
type ProofVerifier interface {
	// Verify 根据公开信号验证8元素编码的Groth16证明
	// 返回的error仅表示验证器自身不可用（如密钥缺失），不表示证明无效
	Verify(proof [types.ProofElementCount]*big.Int, publicSignals [types.PublicSignalCount]*big.Int) (bool, error)

	// VKFingerprint 验证密钥指纹，供登记处与生成器做一致性比对
	VKFingerprint() common.Hash
}
