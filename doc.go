/*
Package recallbricks 是 RecallBricks 记忆 API 的 Go 客户端。

# 概述

Client 把每个公开操作组合为固定流程：参数校验 → 字符串清洗 → 构造请求 →
按重试策略执行 → 响应形状检查 → 返回类型化结果。任何失败都以单个
*types.Error 返回，可用 errors.Is 匹配 types.ErrValidation、
types.ErrAuthentication、types.ErrRateLimit、types.ErrNotFound、
types.ErrAPI 或 types.ErrGeneric。

# 快速开始

	client, err := recallbricks.NewWithAPIKey(os.Getenv("RECALLBRICKS_API_KEY"))
	if err != nil {
	    return err
	}
	learned, err := client.Learn(ctx, "User prefers dark mode", recallbricks.LearnOptions{})
	result, err := client.Recall(ctx, "ui preferences", recallbricks.RecallOptions{Organized: true})

# 认证

APIKey 与 ServiceToken 必须且只能配置一个。使用 ServiceToken 时，
用户级操作（learn、save、recall、search、get-all、predict、suggest、
metrics、patterns、weighted search）必须提供 user_id：可以在选项中设置，
也可以用 WithUserID 写入 context，或在 config.ClientConfig.UserID 中配置默认值。

# 自主代理接口

Client.Autonomous 返回 /api/autonomous 下的九个子客户端，
与核心客户端共享重试、限流、指标与追踪配置。

# 自动捕获

Capture 包装任意 func(context.Context, In) (Out, error)，把输入、输出与错误
以 [AUTO-CAPTURE] / [AUTO-CAPTURE-ERROR] 记录保存为记忆，捕获失败不影响被包装函数的结果。
*/
package recallbricks
