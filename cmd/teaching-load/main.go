package main

import "github.com/noah-isme/teaching-load-api/internal/cli"

// @title Teaching Load API
// @version 1.0.0
// @description Books weekly class slots and detects instructor, room and section conflicts.
// @BasePath /api/v1
// @schemes http

func main() {
	cli.Execute()
}
