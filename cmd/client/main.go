package main

import (
	"context"

	"github.com/portkeeper/portkeeper/internal/client/cli"
	"github.com/portkeeper/portkeeper/internal/client/config"
)

func main() {
	cfg := config.LoadConfig()
	app := cli.NewApp(cfg)
	app.Run(context.Background())
}
