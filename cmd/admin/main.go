package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/portfolio/internal/admincli"
	"github.com/dmitrijs2005/portfolio/internal/common"
	"github.com/dmitrijs2005/portfolio/internal/logging"
	"github.com/dmitrijs2005/portfolio/internal/server"
	"github.com/dmitrijs2005/portfolio/internal/server/auth"
	"github.com/dmitrijs2005/portfolio/internal/server/config"
	"github.com/dmitrijs2005/portfolio/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/portfolio/internal/server/services"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		if errors.Is(err, admincli.ErrUsage) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context, args []string) error {
	if !admincli.NeedsDatabase(args) {
		return admincli.NewApp(nil, nil, os.Stdin, os.Stdout).Run(ctx, args)
	}

	cfg, err := config.LoadAdminConfig(args[1:])
	if err != nil {
		return err
	}
	logger := logging.NewJSONLogger(os.Stderr, cfg.LogLevel)

	um := repomanager.NewPostgresRepositoryManager()
	db, err := server.OpenDatabase(ctx, cfg.DatabaseDSN, um)
	if err != nil {
		return err
	}
	defer db.Close()

	// Admin commands never issue tokens; the codec only satisfies the
	// service constructor.
	secret, err := common.MakeRandHexString(32)
	if err != nil {
		return err
	}
	codec, err := auth.NewTokenCodec([]byte(secret))
	if err != nil {
		return err
	}

	as, err := services.NewAuthService(db, um, auth.NewBcryptHasher(cfg.BcryptCost), codec, logger)
	if err != nil {
		return err
	}
	ps := services.NewProjectService(db, um, logger)

	return admincli.NewApp(as, ps, os.Stdin, os.Stdout).Run(ctx, args)
}
