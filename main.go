package main

import (
	"os"

	"github.com/scan-io-git/retirescan/cmd"
)

func main() {
	code := cmd.Execute()
	os.Exit(code)
}
