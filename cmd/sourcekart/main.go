package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/sourcekart/sourcekart/internal/migration"
	"github.com/sourcekart/sourcekart/internal/observability"
	"github.com/sourcekart/sourcekart/internal/server"
	"github.com/sourcekart/sourcekart/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
