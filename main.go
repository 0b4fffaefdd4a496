package main

import (
	"github.com/pyneda/htin/cmd"
	"github.com/pyneda/htin/internal/config"
)

func main() {
	config.LoadConfig()
	cmd.Execute()
}
