// Command sandbox serves a seeded in-memory backend the admin dashboard can be developed and tested against.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	echoapi "github.com/trezcool/masomo-admin/apps/sandbox/echo"
	"github.com/trezcool/masomo-admin/core"
	"github.com/trezcool/masomo-admin/core/quiz"
	"github.com/trezcool/masomo-admin/core/user"
	logsvc "github.com/trezcool/masomo-admin/services/logger"
	"github.com/trezcool/masomo-admin/storage/database/inmem"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "SANDBOX : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	defer logger.Close()

	db := inmemdb.Open()
	if err := inmemdb.Seed(db, conf.Sandbox.SeedPassword); err != nil {
		logger.Fatal(fmt.Sprintf("seeding database: %v", err), err)
	}

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Sandbox initializing : version %q", conf.Build))
	defer logger.Info("Sandbox stopped")

	validator := core.NewValidator()
	user.InitValidators(validator.Validate, validator.Translator)
	quiz.InitValidators(validator.Validate, validator.Translator)

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:      conf,
			Logger:    logger,
			Validator: validator,
			DB:        db,
		},
	)
	server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err := <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Sandbox.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}
