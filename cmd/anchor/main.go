// eth-anchor 锚定系统命令行入口
//
// 子命令：
//
//	run    启动完整的锚定服务（源链生成器 + 中继 + 登记处）
//	once   对指定源链区块执行一次中继操作后退出
//	commit 模拟源链提交一个状态根
//	stats  打印登记处统计信息
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/rayls/eth-anchor/internal/app"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "eth-anchor",
		Short: "Rayls源链到以太坊的状态承诺锚定系统",
		Long: `eth-anchor 周期性地把源链状态根锚定到以太坊侧的承诺登记处。

透明模式直接锚定状态根；ZK模式只锚定哈希承诺，
并附带Groth16证明以保持源链状态的机密性。`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "配置文件路径（JSON）")

	rootCmd.AddCommand(newRunCmd(), newOnceCmd(), newCommitCmd(), newStatsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func buildApp() (*app.App, error) {
	return app.New(app.WithConfigFile(configPath))
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "启动锚定服务",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			// 阻塞到收到退出信号，生命周期钩子负责优雅关闭
			a.Run()
			return nil
		},
	}
}

func newOnceCmd() *cobra.Command {
	var sourceBlock uint64

	cmd := &cobra.Command{
		Use:   "once",
		Short: "对指定源链区块执行一次中继操作",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if err := a.Start(ctx); err != nil {
				return err
			}
			defer func() { _ = a.Stop(context.Background()) }()

			outcome, err := a.Services().Orchestrator.RelayOnce(ctx, sourceBlock)
			if err != nil {
				return err
			}
			return printJSON(outcome)
		},
	}
	cmd.Flags().Uint64Var(&sourceBlock, "block", 0, "目标源链区块号")
	_ = cmd.MarkFlagRequired("block")
	return cmd
}

func newCommitCmd() *cobra.Command {
	var (
		sourceBlock uint64
		stateRoot   string
		submitter   string
	)

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "模拟源链提交一个状态根",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if err := a.Start(ctx); err != nil {
				return err
			}
			defer func() { _ = a.Stop(context.Background()) }()

			caller := common.HexToAddress(submitter)
			root := common.HexToHash(stateRoot)
			if err := a.Services().Source.GenerateStateRoot(ctx, caller, root, sourceBlock); err != nil {
				return err
			}
			fmt.Printf("源链状态根已提交: block=%d, stateRoot=%s\n", sourceBlock, root.Hex())
			return nil
		},
	}
	cmd.Flags().Uint64Var(&sourceBlock, "block", 0, "源链区块号（必须命中批次间隔）")
	cmd.Flags().StringVar(&stateRoot, "root", "", "状态根（十六进制哈希）")
	cmd.Flags().StringVar(&submitter, "submitter", "", "提交者地址（十六进制）")
	_ = cmd.MarkFlagRequired("block")
	_ = cmd.MarkFlagRequired("root")
	_ = cmd.MarkFlagRequired("submitter")
	return cmd
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "打印登记处统计信息",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if err := a.Start(ctx); err != nil {
				return err
			}
			defer func() { _ = a.Stop(context.Background()) }()

			stats := a.Services().Registry.GetVerificationStats(ctx)
			return printJSON(stats)
		},
	}
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
