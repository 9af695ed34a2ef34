package main

import (
	"embed"

	"github.com/haierkeys/pin-notes-service/cmd"
)

//go:embed web/templates
var webFiles embed.FS

//go:embed config/config.yaml
var configDefault string

func main() {
	cmd.Execute(webFiles, configDefault)
}
