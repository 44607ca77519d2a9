package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/smallbiznis/reservo/internal/logger"
	"github.com/smallbiznis/reservo/internal/server"
	"github.com/smallbiznis/reservo/pkg/db"
)

func main() {
	app := fx.New(
		fx.Provide(RegisterSnowflake),
		logger.Module,
		db.Module,
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
