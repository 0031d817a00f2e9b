package main

import (
	"github.com/eleven-am/vision-narrator/internal/bootstrap"
)

// @title Vision Narrator API
// @version 1.0.0
// @description Describes camera frames as short spoken phrases for blind and low-vision users

// @BasePath /api/v1

func main() {
	bootstrap.Run()
}
