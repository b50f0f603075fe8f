// Package cmd bookstore 命令行入口
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bookstore",
	Short: "Bookstore backend",
	Long: `网上书店后端服务。

serve   启动 HTTP 服务
migrate 同步数据库表结构
seed    写入演示数据`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
