package main

import "github.com/ryclarke/gardener/cmd"

func main() {
	cmd.Execute()
}
