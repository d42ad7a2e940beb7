package main

import "github.com/zg04ckpt/parkgate/cmd/parkgate/cmd"

func main() {
	cmd.Execute()
}
