/*
Package main 提供 recallbricks 命令行工具。

# 概述

cmd/recallbricks 基于 cobra 暴露核心客户端的记忆操作：learn、save、recall、
search、get、update、delete、relationships、graph、health、rate-limit 与
version。配置按 默认值 → YAML（--config）→ RECALLBRICKS_* 环境变量 叠加，
日志使用 zap，遥测启用时通过 OTLP/gRPC 导出。

# 输出

默认输出人类可读的摘要；--json 输出完整响应。错误以非零退出码返回，
validation 类错误为 1，其它为 2。
*/
package main
