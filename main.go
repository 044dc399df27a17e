package main

import (
	"io"
	"os"

	"github.com/footcache/footcache/internal/cli"
)

var (
	stdIn  io.Reader = os.Stdin
	stdOut io.Writer = os.Stdout
	stdErr io.Writer = os.Stderr
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run 执行命令树并返回退出码，方便测试中替换输入输出。
func run(args []string) int {
	return cli.RunWithInput(args, stdIn, stdOut, stdErr)
}
