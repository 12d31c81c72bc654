package main

import (
	"log"
	"os"

	"github.com/kymoja/darasa/core"
	"github.com/kymoja/darasa/core/activity"
	"github.com/kymoja/darasa/storage/localstore"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()
	if !conf.IsLocalBackend() {
		logger.Fatal("admin tooling works on the local backend only; accounts on the hosted service are managed in its console")
	}

	db, err := localstore.Open(conf.LocalStorePath)
	errAndDie(err)

	// start CLI
	cli := commandLine{
		backend:  localstore.NewBackend(db, conf, nil),
		activity: activity.NewService(localstore.NewActivityStore(db), nil),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
