// Copyright (c) RecallBricks Authors.
// Licensed under the MIT License.

/*
包 metrics 提供基于 Prometheus 的 SDK 客户端指标采集能力。

# 概述

Collector 把指标注册到调用方提供的 Registerer，便于宿主进程把 SDK
指标并入自身的 /metrics 暴露端点。同名指标已存在时复用已注册的实例，
多个客户端可共享同一个 Registerer（包括默认 Registerer）。

# 主要能力

  - 操作指标：按 operation 统计成功/失败次数与总耗时（含重试）。
  - 尝试指标：按 method 与状态类别（2xx/4xx/429/5xx/transport_error）
    统计每一次 HTTP 尝试。
  - 重试与错误：重试次数、按错误 kind 分组的失败次数。
  - 降级指标：辅助数据（如 relationships）被标记为 unavailable 的次数。
  - 本地限流：等待 rate.Limiter 的耗时分布。
*/
package metrics
