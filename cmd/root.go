package cmd

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
)

// webFiles 内嵌的看板模板，包含 web/templates
var webFiles fs.FS

// configDefault 内嵌的默认配置，找不到配置文件时写出
var configDefault string

var rootCmd = &cobra.Command{
	Use:   "pin-notes",
	Short: "Pin Notes Service",
	Long:  "Pin Notes Service: a pinboard of titled notes with images, backed by a remote record store and an object store.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute 执行命令行入口
func Execute(web fs.FS, c string) {
	webFiles = web
	configDefault = c
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
