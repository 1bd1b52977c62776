package main

import (
	"github.com/indigo-web/hclient/cmd/hclient/cmd"
)

var version = "dev"

func main() {
	cmd.Execute(version)
}
