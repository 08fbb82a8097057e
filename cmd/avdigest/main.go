package main

import (
	"os"

	"tarmac.news/avdigest/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
