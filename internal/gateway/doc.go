// Package gateway 实现本地开发网关：把前端发往 /api/* 的请求原样
// 转发到文档服务，并在 /-/ 下提供诊断与引导端点。
package gateway
