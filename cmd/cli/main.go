package main

import (
	"github.com/jmarban/suitparty-go/internal/cli"
)

func main() {
	cli.Execute()
}
