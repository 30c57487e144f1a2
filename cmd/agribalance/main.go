package main

import "github.com/mamadbah2/agribalance/internal/cli"

func main() {
	cli.Execute()
}
