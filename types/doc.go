// Copyright (c) RecallBricks Authors.
// Licensed under the MIT License.

/*
Package types 提供 RecallBricks SDK 的公共类型定义。

# 概述

types 不依赖任何内部包，供根包、autonomous 与 internal/* 共享。

# 核心类型

  - Error / ErrorKind / ErrorCode — 统一错误类型，Kind 可用 errors.Is 与
    ErrValidation、ErrAuthentication、ErrRateLimit、ErrNotFound、ErrAPI、
    ErrGeneric 匹配
  - Memory / LearnedMemory / RecallResult — 记忆读写结果
  - SearchResult / AuxStatus — 搜索结果及其关系数据的拉取状态
  - PredictedMemory / SuggestedMemory / LearningMetrics / PatternAnalysis /
    WeightedSearchResult — 学习与加权检索结果
  - RateLimitStatus — 配额窗口
  - JSONMap — 服务端自定义结构的对象

# 辅助函数

  - NewValidationError / NewTypeError / NewInvalidResponseError
  - AsError / GetErrorKind / GetErrorCode / IsRetryable
  - Ptr / ValueOr：可选参数的指针辅助
*/
package types
