// Copyright (c) RecallBricks Authors.
// Licensed under the MIT License.

/*
Package testutil 提供 RecallBricks SDK 测试的共享工具和辅助函数。

# 概述

testutil 包为各包的单元测试提供统一的辅助能力，
避免重复实现相似的测试基础设施。

# 核心能力

  - 上下文辅助: TestContext（自动注册 Cleanup）/ CancelledContext
  - 断言工具: AssertJSONEqual，比较请求体时忽略键顺序
  - 日志工具: ObservedLogger，基于 zaptest/observer 断言告警日志

# 子包

  - testutil/mocks: MockAPI，基于 httptest 的脚本化假服务端，
    支持按路由排队响应、前缀匹配、请求记录与调用计数
  - testutil/fixtures: 预置的 API 响应体（learn、recall、search、
    relationships、错误信封等）

# 使用示例

	api := mocks.NewMockAPI(t).
	    On("GET", "/memories/m1").JSON(200, fixtures.MemoryJSON("m1")).
	    Start()
	ctx := testutil.TestContext(t)
*/
package testutil
