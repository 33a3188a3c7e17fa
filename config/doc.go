// Package config 提供 RecallBricks SDK 与 CLI 的配置管理功能。
//
// 配置按 默认值 → YAML 文件 → RECALLBRICKS_* 环境变量 的顺序叠加，
// 由 Config.Validate 基于 validator 结构体标签与凭证互斥规则统一校验。
package config
