package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BaSui01/recallbricks"
	"github.com/BaSui01/recallbricks/config"
	"github.com/BaSui01/recallbricks/internal/telemetry"
)

// app 保存一次命令执行期间共享的状态
type app struct {
	configPath string
	jsonOut    bool
	userID     string

	logger    *zap.Logger
	client    *recallbricks.Client
	telemetry *telemetry.Providers

	// 测试注入的额外客户端选项
	clientOpts []recallbricks.Option
}

func newApp(clientOpts ...recallbricks.Option) *app {
	return &app{clientOpts: clientOpts}
}

// execute 运行 root。cobra 在 RunE 失败时跳过 PostRun，teardown 在这里兜底。
func (a *app) execute(ctx context.Context, root *cobra.Command) error {
	defer a.teardown()
	return root.ExecuteContext(ctx)
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "recallbricks",
		Short:         "RecallBricks memory API command line client",
		Version:       recallbricks.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations["offline"] == "true" {
				return nil
			}
			return a.setup(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "print the full response as JSON")
	root.PersistentFlags().StringVar(&a.userID, "user-id", "", "user_id for user-scoped calls (service-token auth)")

	root.AddCommand(
		a.learnCmd(),
		a.saveCmd(),
		a.recallCmd(),
		a.searchCmd(),
		a.getCmd(),
		a.listCmd(),
		a.updateCmd(),
		a.deleteCmd(),
		a.relationshipsCmd(),
		a.graphCmd(),
		a.healthCmd(),
		a.rateLimitCmd(),
		versionCmd(),
	)
	return root
}

// setup 加载配置并创建 logger、遥测与客户端
func (a *app) setup(ctx context.Context) error {
	loader := config.NewLoader()
	if a.configPath != "" {
		loader = loader.WithConfigPath(a.configPath)
	}
	cfg, err := loader.Load()
	if err != nil {
		return err
	}

	a.logger = initLogger(cfg.Log)

	// 短生命周期进程没有 /metrics 端点，Prometheus 指标无从暴露
	if cfg.Metrics.Enabled {
		a.logger.Debug("metrics.enabled is ignored by the CLI")
		cfg.Metrics.Enabled = false
	}

	a.telemetry, err = telemetry.Init(ctx, cfg.Telemetry, recallbricks.Version, a.logger)
	if err != nil {
		a.logger.Warn("failed to initialize telemetry", zap.Error(err))
	}

	opts := append([]recallbricks.Option{recallbricks.WithLogger(a.logger)}, a.clientOpts...)
	a.client, err = recallbricks.New(cfg, opts...)
	if err != nil {
		return err
	}
	return nil
}

// teardown 刷新遥测与日志；可重复调用
func (a *app) teardown() {
	if a.telemetry != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.telemetry.Shutdown(ctx); err != nil {
			a.logger.Warn("telemetry shutdown failed", zap.Error(err))
		}
		a.telemetry = nil
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// ctx 返回附带 --user-id 的上下文
func (a *app) ctx(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if a.userID != "" {
		ctx = recallbricks.WithUserID(ctx, a.userID)
	}
	return ctx
}
