// Package autonomous 提供 RecallBricks 自主代理接口（/api/autonomous）的客户端。
//
// Client 聚合九个子客户端：WorkingMemory、ProspectiveMemory、Metacognition、
// MemoryTypes、Goals、Health、Uncertainty、Context 与 Search。所有子客户端共享
// 同一个请求执行器，因此重试、超时、认证与错误分类与核心客户端一致。
//
// 每个方法依次执行：参数校验 → 字符串清洗 → 构造请求 → 带重试执行 → 响应形状检查，
// 返回服务端定义的 JSON 对象（types.JSONMap）。
package autonomous
