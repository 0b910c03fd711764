package main

import (
	"github.com/5nufkin/Rarebnb-backend/startup"
	"github.com/5nufkin/Rarebnb-backend/startup/config"
)

func main() {
	cfg := config.NewConfig()
	server := startup.NewServer(cfg)
	server.Start()
}
