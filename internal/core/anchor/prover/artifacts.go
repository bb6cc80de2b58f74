// Package prover 提供Groth16证明的可信设置管理与证明生成
package prover

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	gnarklogger "github.com/consensys/gnark/logger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"github.com/rayls/eth-anchor/internal/core/anchor/circuits"
	logInterface "github.com/rayls/eth-anchor/pkg/interfaces/infrastructure/log"
)

// 证明工件文件名
const (
	ccsFileName = "anchor.r1cs"
	pkFileName  = "anchor.pk"
	vkFileName  = "anchor.vk"
)

// Artifacts 证明流水线的可信设置工件
//
// 约束系统、证明密钥与验证密钥三者必须来自同一次Setup，
// 指纹由验证密钥的序列化字节计算，用于端到端的一致性比对。
type Artifacts struct {
	CCS         constraint.ConstraintSystem
	PK          groth16.ProvingKey
	VK          groth16.VerifyingKey
	Fingerprint common.Hash
}

// silenceGnarkLogger 临时禁用gnark库的日志输出
//
// ⚠️ gnark库会输出大量的调试信息（compiling circuit等），
// 这些日志会污染我们的日志系统，所以在执行期间禁用。
func silenceGnarkLogger() func() {
	old := gnarklogger.Logger()
	gnarklogger.Set(zerolog.New(io.Discard).Level(zerolog.Disabled))
	return func() { gnarklogger.Set(old) }
}

// Generate 编译电路并生成新的可信设置
func Generate() (*Artifacts, error) {
	restore := silenceGnarkLogger()
	defer restore()

	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &circuits.AnchorCircuit{})
	if err != nil {
		return nil, fmt.Errorf("编译电路失败: %w", err)
	}

	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, fmt.Errorf("生成可信设置失败: %w", err)
	}

	fingerprint, err := fingerprintVK(vk)
	if err != nil {
		return nil, err
	}

	return &Artifacts{
		CCS:         ccs,
		PK:          pk,
		VK:          vk,
		Fingerprint: fingerprint,
	}, nil
}

// Save 将工件持久化到目录
func (a *Artifacts) Save(dir string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("创建工件目录失败: %w", err)
	}

	writers := []struct {
		name string
		to   io.WriterTo
	}{
		{ccsFileName, a.CCS},
		{pkFileName, a.PK},
		{vkFileName, a.VK},
	}

	for _, w := range writers {
		f, err := os.Create(filepath.Join(dir, w.name))
		if err != nil {
			return fmt.Errorf("创建工件文件失败: %w", err)
		}
		if _, err := w.to.WriteTo(f); err != nil {
			f.Close()
			return fmt.Errorf("写入工件 %s 失败: %w", w.name, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("关闭工件文件失败: %w", err)
		}
	}

	return nil
}

// Load 从目录加载工件
//
// 任一文件缺失或损坏即失败（fail-closed）：证明流水线不会
// 在没有完整密钥材料的情况下退化运行。
func Load(dir string) (*Artifacts, error) {
	ccsData, err := os.ReadFile(filepath.Join(dir, ccsFileName))
	if err != nil {
		return nil, fmt.Errorf("读取约束系统失败: %w", err)
	}
	pkData, err := os.ReadFile(filepath.Join(dir, pkFileName))
	if err != nil {
		return nil, fmt.Errorf("读取证明密钥失败: %w", err)
	}
	vkData, err := os.ReadFile(filepath.Join(dir, vkFileName))
	if err != nil {
		return nil, fmt.Errorf("读取验证密钥失败: %w", err)
	}

	constraintSystem := groth16.NewCS(ecc.BN254)
	if _, err := constraintSystem.ReadFrom(bytes.NewReader(ccsData)); err != nil {
		return nil, fmt.Errorf("反序列化约束系统失败: %w", err)
	}

	pk := groth16.NewProvingKey(ecc.BN254)
	if _, err := pk.ReadFrom(bytes.NewReader(pkData)); err != nil {
		return nil, fmt.Errorf("反序列化证明密钥失败: %w", err)
	}

	vk := groth16.NewVerifyingKey(ecc.BN254)
	if _, err := vk.ReadFrom(bytes.NewReader(vkData)); err != nil {
		return nil, fmt.Errorf("反序列化验证密钥失败: %w", err)
	}

	fingerprint, err := fingerprintVK(vk)
	if err != nil {
		return nil, err
	}

	return &Artifacts{
		CCS:         constraintSystem,
		PK:          pk,
		VK:          vk,
		Fingerprint: fingerprint,
	}, nil
}

// LoadOrGenerate 优先加载已有工件，缺失时生成并持久化
func LoadOrGenerate(dir string, logger logInterface.Logger) (*Artifacts, error) {
	artifacts, err := Load(dir)
	if err == nil {
		if logger != nil {
			logger.Infof("加载证明工件成功: dir=%s, fingerprint=%s", dir, artifacts.Fingerprint.Hex())
		}
		return artifacts, nil
	}

	if logger != nil {
		logger.Warnf("加载证明工件失败，生成新的可信设置: %v", err)
	}

	artifacts, err = Generate()
	if err != nil {
		return nil, err
	}
	if err := artifacts.Save(dir); err != nil {
		return nil, err
	}

	if logger != nil {
		logger.Infof("可信设置已生成: dir=%s, constraints=%d, fingerprint=%s",
			dir, artifacts.CCS.GetNbConstraints(), artifacts.Fingerprint.Hex())
	}
	return artifacts, nil
}

// fingerprintVK 计算验证密钥指纹（序列化字节的SHA-256）
func fingerprintVK(vk groth16.VerifyingKey) (common.Hash, error) {
	var buf bytes.Buffer
	if _, err := vk.WriteTo(&buf); err != nil {
		return common.Hash{}, fmt.Errorf("序列化验证密钥失败: %w", err)
	}
	return common.Hash(sha256.Sum256(buf.Bytes())), nil
}
