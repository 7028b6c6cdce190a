package main

import (
	"os"

	"github.com/watchtowerhq/watchtower/internal/cli"
)

func main() {
	os.Exit(int(cli.Run()))
}
