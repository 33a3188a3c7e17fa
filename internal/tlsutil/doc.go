// Package tlsutil 提供 SDK HTTP 客户端使用的 TLS 与连接池配置
// （TLS 1.2+，仅 AEAD 密码套件）。
package tlsutil
