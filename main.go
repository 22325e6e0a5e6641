package main

import "github.com/codalotl/blockpatch/internal/cli"

func main() {
	cli.Execute()
}
