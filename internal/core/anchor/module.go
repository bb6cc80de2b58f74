// Package anchor 组装锚定领域的全部服务
//
// 🏗️ **锚定域模块 (Anchor Domain Module)**
//
// 依赖注入的组装顺序：
//
//	证明工件 → 生成器/验证器 → 高度源 → 登记处 → 源链生成器 → 信箱 → 中继编排器
//
// 编排器挂接fx生命周期：应用启动即开始轮询与事件消费，
// 停止时等待在途流水线结束。
package anchor

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/fx"

	registryconfig "github.com/rayls/eth-anchor/internal/config/registry"
	relayconfig "github.com/rayls/eth-anchor/internal/config/relay"
	sourceconfig "github.com/rayls/eth-anchor/internal/config/source"
	zkproofconfig "github.com/rayls/eth-anchor/internal/config/zkproof"
	"github.com/rayls/eth-anchor/internal/core/anchor/messaging"
	"github.com/rayls/eth-anchor/internal/core/anchor/prover"
	"github.com/rayls/eth-anchor/internal/core/anchor/registry"
	"github.com/rayls/eth-anchor/internal/core/anchor/relay"
	"github.com/rayls/eth-anchor/internal/core/anchor/source"
	"github.com/rayls/eth-anchor/internal/core/anchor/verifier"
	"github.com/rayls/eth-anchor/internal/core/infrastructure/metrics"
	anchorInterface "github.com/rayls/eth-anchor/pkg/interfaces/anchor"
	eventInterface "github.com/rayls/eth-anchor/pkg/interfaces/infrastructure/event"
	logInterface "github.com/rayls/eth-anchor/pkg/interfaces/infrastructure/log"
	"github.com/rayls/eth-anchor/pkg/interfaces/infrastructure/storage"
)

// ModuleParams 定义锚定域模块的依赖参数
type ModuleParams struct {
	fx.In

	RegistryOptions *registryconfig.RegistryOptions
	RelayOptions    *relayconfig.RelayOptions
	SourceOptions   *sourceconfig.SourceOptions
	ZKProofOptions  *zkproofconfig.ZKProofOptions

	Store    storage.KVStore
	EventBus eventInterface.EventBus
	Logger   logInterface.Logger
	Metrics  *metrics.RelayMetrics
}

// ModuleOutput 定义锚定域模块的输出结构
type ModuleOutput struct {
	fx.Out

	Artifacts    *prover.Artifacts
	Generator    anchorInterface.ProofGenerator
	Verifier     anchorInterface.ProofVerifier
	Heights      anchorInterface.HeightSource
	Registry     anchorInterface.Registry
	Source       anchorInterface.SourceCommitter
	Outbox       anchorInterface.Outbox
	Inbox        anchorInterface.Inbox
	Orchestrator anchorInterface.Orchestrator
}

// Module 返回锚定域模块
func Module() fx.Option {
	return fx.Module("anchor",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 组装锚定域的全部服务并挂接生命周期
func ProvideServices(params ModuleParams, lc fx.Lifecycle) (ModuleOutput, error) {
	ctx := context.Background()
	logger := params.Logger.With("module", "anchor")

	artifacts, err := prover.LoadOrGenerate(params.ZKProofOptions.ArtifactDir, logger)
	if err != nil {
		return ModuleOutput{}, err
	}

	generator, err := prover.NewGenerator(artifacts, logger)
	if err != nil {
		return ModuleOutput{}, err
	}
	proofVerifier := verifier.New(artifacts.VK, artifacts.Fingerprint, logger)

	heights, heightsCleanup, err := buildHeightSource(params.RelayOptions, logger)
	if err != nil {
		return ModuleOutput{}, err
	}

	reg, err := registry.New(ctx, params.RegistryOptions, proofVerifier, heights, params.Store, params.EventBus, logger)
	if err != nil {
		return ModuleOutput{}, err
	}

	committer, err := source.New(ctx, params.SourceOptions, params.RegistryOptions.InitialSubmitter, params.Store, params.EventBus, logger)
	if err != nil {
		return ModuleOutput{}, err
	}

	outbox, err := messaging.NewOutbox(ctx, params.Store, params.EventBus, logger)
	if err != nil {
		return ModuleOutput{}, err
	}
	inbox, err := messaging.NewInbox(ctx, defaultCallHandler(logger), params.Store, logger)
	if err != nil {
		return ModuleOutput{}, err
	}

	orchestrator := relay.New(
		params.RelayOptions,
		committer,
		reg,
		generator,
		params.RegistryOptions.InitialSubmitter,
		params.ZKProofOptions.ValidatorID,
		params.EventBus,
		logger,
		params.Metrics,
	)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return orchestrator.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			if err := orchestrator.Stop(ctx); err != nil {
				return err
			}
			if heightsCleanup != nil {
				heightsCleanup()
			}
			return nil
		},
	})

	return ModuleOutput{
		Artifacts:    artifacts,
		Generator:    generator,
		Verifier:     proofVerifier,
		Heights:      heights,
		Registry:     reg,
		Source:       committer,
		Outbox:       outbox,
		Inbox:        inbox,
		Orchestrator: orchestrator,
	}, nil
}

// buildHeightSource 按配置选择高度源
//
// 配置了RPC地址时连接真实锚定链，否则使用本地模拟高度。
func buildHeightSource(options *relayconfig.RelayOptions, logger logInterface.Logger) (anchorInterface.HeightSource, func(), error) {
	if options.AnchorRPCURL == "" {
		logger.Infof("未配置锚定链RPC，使用本地模拟高度源")
		return relay.NewLocalHeightSource(time.Second), nil, nil
	}

	ethHeights, err := relay.NewEthHeightSource(options.AnchorRPCURL, options.RPCTimeout)
	if err != nil {
		return nil, nil, err
	}
	logger.Infof("已连接锚定链RPC: %s", options.AnchorRPCURL)
	return ethHeights, ethHeights.Close, nil
}

// defaultCallHandler 收件信箱的默认目标执行函数
//
// 当前部署没有真实的源链合约可调，记录调用即视为执行成功。
func defaultCallHandler(logger logInterface.Logger) anchorInterface.CallHandler {
	return func(ctx context.Context, target common.Address, data []byte) error {
		logger.Debugf("收件信箱执行目标调用: target=%s, 载荷=%d字节", target.Hex(), len(data))
		return nil
	}
}
