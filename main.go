package main

import (
	"os"

	"github.com/scan-io-git/zap-sensor/cmd"
)

func main() {
	code := cmd.Execute()
	os.Exit(code)
}
