package main

import (
	"os"

	wellchatcmder "github.com/papercomputeco/wellchat/cmd/wellchat"
)

func main() {
	cmd := wellchatcmder.NewWellchatCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
