package main

import (
	"limelight/cmd/handlers"
	"limelight/internal/logger"
)

func main() {
	logger.Init()
	handlers.Execute()
}
