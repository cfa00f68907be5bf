package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jessevdk/go-flags"

	"biketowork/config"
	"biketowork/core"
	"biketowork/db"
)

type ServeCommand struct {
	Migrate bool `long:"migrate" description:"Create the database schema before serving"`
}

func (c *ServeCommand) Execute(_ []string) error {
	return runServer(c.Migrate)
}

type MigrateCommand struct{}

func (c *MigrateCommand) Execute(_ []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	dbConn, err := db.NewConnection(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	return db.Migrate(context.Background(), dbConn, cfg.DatabaseSchema)
}

type GenSecretCommand struct{}

func (c *GenSecretCommand) Execute(_ []string) error {
	log.Printf("🔑 Generating new session secret...")

	secret, err := core.NewSecretKey("bts")
	if err != nil {
		return err
	}

	fmt.Printf("SESSION_SECRET=%s\n", secret)
	log.Printf("✅ Successfully generated session secret")
	return nil
}

type Options struct {
	Serve     ServeCommand     `command:"serve" description:"Start the HTTP server"`
	Migrate   MigrateCommand   `command:"migrate" description:"Create the database schema"`
	GenSecret GenSecretCommand `command:"gensecret" description:"Print a random SESSION_SECRET value"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		log.Printf("❌ Fatal error: %v", err)
		os.Exit(1)
	}
}
