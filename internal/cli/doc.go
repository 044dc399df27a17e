// Package cli 定义 footcache 的 cobra 命令树：serve、missing、import、stats、
// check-config 与 version。命令共享 --config 全局标志，输出写入调用方提供的 Writer。
package cli
