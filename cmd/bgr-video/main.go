package main

import (
	"os"

	"github.com/khaledhikmat/vs-bgremove/cli"
)

func main() {
	os.Exit(cli.Execute(cli.NewVideoCommand()))
}
