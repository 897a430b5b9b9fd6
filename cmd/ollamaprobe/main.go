package main

import (
	"os"

	"ollamaprobe/internal/probectl"
)

func main() { os.Exit(probectl.Main()) }
