package prover

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	groth16bn254 "github.com/consensys/gnark/backend/groth16/bn254"
	"github.com/consensys/gnark/frontend"
	"github.com/ethereum/go-ethereum/common"

	"github.com/rayls/eth-anchor/internal/core/anchor/circuits"
	"github.com/rayls/eth-anchor/internal/core/anchor/commitment"
	"github.com/rayls/eth-anchor/internal/core/anchor/verifier"
	"github.com/rayls/eth-anchor/pkg/interfaces/anchor"
	logInterface "github.com/rayls/eth-anchor/pkg/interfaces/infrastructure/log"
	"github.com/rayls/eth-anchor/pkg/types"
)

// ErrIncompleteInputs 电路输入不完整
var ErrIncompleteInputs = errors.New("电路输入不完整")

// Generator Groth16证明生成器
//
// 🎯 **专门职责**：为状态根承诺电路生成证明
// 🏗️ **技术栈**：基于gnark库实现Groth16证明方案
type Generator struct {
	artifacts *Artifacts
	deriver   *commitment.Deriver
	logger    logInterface.Logger
}

// NewGenerator 创建证明生成器
// 工件必须完整（fail-closed），缺失时构造失败
func NewGenerator(artifacts *Artifacts, logger logInterface.Logger) (*Generator, error) {
	if artifacts == nil || artifacts.CCS == nil || artifacts.PK == nil || artifacts.VK == nil {
		return nil, errors.New("证明工件不完整，拒绝创建生成器")
	}
	return &Generator{
		artifacts: artifacts,
		deriver:   commitment.New(),
		logger:    logger,
	}, nil
}

// Prove 为给定电路输入生成Groth16证明
//
// Commitment 为nil时自动用派生器计算；其余输入缺一即错。
// 证明计算不可中断，超时通过ctx控制：ctx到期即返回错误，
// 后台计算结果被丢弃。
func (g *Generator) Prove(ctx context.Context, inputs types.CircuitInputs) (*types.ProofBundle, error) {
	if inputs.StateRoot == nil || inputs.ValidatorID == nil || inputs.Salt == nil ||
		inputs.BlockNumber == nil || inputs.MinBlockNumber == nil {
		return nil, ErrIncompleteInputs
	}

	commitmentValue := inputs.Commitment
	if commitmentValue == nil {
		derived, err := g.deriver.Derive(inputs.StateRoot, inputs.BlockNumber, inputs.ValidatorID, inputs.Salt)
		if err != nil {
			return nil, fmt.Errorf("派生承诺失败: %w", err)
		}
		commitmentValue = derived
	}

	startTime := time.Now()
	restore := silenceGnarkLogger()
	defer restore()

	assignment := &circuits.AnchorCircuit{
		Commitment:     commitmentValue,
		BlockNumber:    inputs.BlockNumber,
		MinBlockNumber: inputs.MinBlockNumber,
		StateRoot:      inputs.StateRoot,
		ValidatorID:    inputs.ValidatorID,
		Salt:           inputs.Salt,
	}

	fullWitness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("构建witness失败: %w", err)
	}

	type proveResult struct {
		proof groth16.Proof
		err   error
	}
	resultCh := make(chan proveResult, 1)
	go func() {
		proof, err := groth16.Prove(g.artifacts.CCS, g.artifacts.PK, fullWitness)
		resultCh <- proveResult{proof: proof, err: err}
	}()

	var proof groth16.Proof
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("证明生成被取消: %w", ctx.Err())
	case result := <-resultCh:
		if result.err != nil {
			return nil, fmt.Errorf("生成证明失败: %w", result.err)
		}
		proof = result.proof
	}

	elements, err := EncodeProof(proof)
	if err != nil {
		return nil, err
	}

	bundle := &types.ProofBundle{
		ProofElements: elements,
		PublicSignals: [types.PublicSignalCount]*big.Int{
			new(big.Int).Set(commitmentValue),
			new(big.Int).Set(inputs.BlockNumber),
			new(big.Int).Set(inputs.MinBlockNumber),
		},
		VKFingerprint: g.artifacts.Fingerprint,
	}

	if g.logger != nil {
		g.logger.Debugf("证明生成完成: block=%s, 耗时=%v", inputs.BlockNumber.String(), time.Since(startTime))
	}
	return bundle, nil
}

// VerifyLocally 在提交前本地预验证证明束
func (g *Generator) VerifyLocally(bundle *types.ProofBundle) (bool, error) {
	if bundle == nil {
		return false, nil
	}
	if bundle.VKFingerprint != g.artifacts.Fingerprint {
		return false, nil
	}
	v := verifier.New(g.artifacts.VK, g.artifacts.Fingerprint, g.logger)
	return v.Verify(bundle.ProofElements, bundle.PublicSignals)
}

// VKFingerprint 当前验证密钥的指纹
func (g *Generator) VKFingerprint() common.Hash {
	return g.artifacts.Fingerprint
}

// EncodeProof 将Groth16证明编码为8个字段元素
//
// 编码顺序：[Ar.X, Ar.Y, Bs.X.A1, Bs.X.A0, Bs.Y.A1, Bs.Y.A0, Krs.X, Krs.Y]，
// 与验证器的DecodeProof互逆。
func EncodeProof(proof groth16.Proof) ([types.ProofElementCount]*big.Int, error) {
	var elements [types.ProofElementCount]*big.Int

	bn254Proof, ok := proof.(*groth16bn254.Proof)
	if !ok {
		return elements, fmt.Errorf("非BN254证明类型: %T", proof)
	}

	elements[0] = bn254Proof.Ar.X.BigInt(new(big.Int))
	elements[1] = bn254Proof.Ar.Y.BigInt(new(big.Int))
	elements[2] = bn254Proof.Bs.X.A1.BigInt(new(big.Int))
	elements[3] = bn254Proof.Bs.X.A0.BigInt(new(big.Int))
	elements[4] = bn254Proof.Bs.Y.A1.BigInt(new(big.Int))
	elements[5] = bn254Proof.Bs.Y.A0.BigInt(new(big.Int))
	elements[6] = bn254Proof.Krs.X.BigInt(new(big.Int))
	elements[7] = bn254Proof.Krs.Y.BigInt(new(big.Int))

	return elements, nil
}

// 编译期接口检查
var _ anchor.ProofGenerator = (*Generator)(nil)
