// cmd/srat/main.go
package main

import (
	"srat/internal/app"
	"srat/internal/appshell"
)

func main() {
	appshell.Main(app.RunContext)
}
