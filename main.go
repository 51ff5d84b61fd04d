package main

import (
	"github.com/Wabri/scripts/cmd"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

func main() {
	// Set logging format
	formatter := prefixed.TextFormatter{
		DisableTimestamp: true,
	}
	formatter.SetColorScheme(&prefixed.ColorScheme{})
	logrus.SetFormatter(&formatter)

	cmd.Execute()
}
