package main

import (
	"log"
	"os"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-admin/core"
	"github.com/trezcool/masomo-admin/core/quiz"
	"github.com/trezcool/masomo-admin/core/session"
	"github.com/trezcool/masomo-admin/core/user"
	logsvc "github.com/trezcool/masomo-admin/services/logger"
	"github.com/trezcool/masomo-admin/storage/filestore"
	"github.com/trezcool/masomo-admin/storage/memstore"
	"github.com/trezcool/masomo-admin/storage/redisstore"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)

	storage, closeStorage, err := openStorage(conf)
	if err != nil {
		logger.Fatal("opening session storage", err)
	}

	validator := core.NewValidator()
	user.InitValidators(validator.Validate, validator.Translator)
	quiz.InitValidators(validator.Validate, validator.Translator)

	// start CLI
	cli, err := newCommandLine(conf, logger, validator, storage, os.Stdin, os.Stdout)
	if err != nil {
		logger.Fatal("setting up", err)
	}
	err = cli.run(os.Args)

	closeStorage()
	logger.Close()
	if err != nil {
		if err != errHelp {
			log.New(os.Stderr, "", 0).Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

// openStorage returns the durable session storage `storage.driver` selects.
func openStorage(conf *core.Config) (session.Storage, func(), error) {
	switch conf.Storage.Driver {
	case "", "file":
		st, err := filestore.New(conf.Storage.Dir)
		if err != nil {
			return nil, nil, err
		}
		return st, func() {}, nil
	case "redis":
		client, err := redisstore.Connect(conf.Storage.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		st := redisstore.New(client, "")
		return st, func() { _ = st.Close() }, nil
	case "memory":
		return memstore.New(), func() {}, nil
	default:
		return nil, nil, errors.Errorf("%q: unknown storage driver", conf.Storage.Driver)
	}
}
