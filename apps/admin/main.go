package main

import (
	"log"
	"os"

	"github.com/trezcool/nacos/core"
	"github.com/trezcool/nacos/core/user"
	logsvc "github.com/trezcool/nacos/services/logger"
	"github.com/trezcool/nacos/storage/database"
	sqlxrepos "github.com/trezcool/nacos/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")

	cli := &commandLine{conf: conf, out: os.Stdout}

	// createdb runs before the app database exists
	if len(os.Args) < 2 || os.Args[1] != "createdb" {
		db, err := database.Open(conf)
		if err != nil {
			logger.Fatal("opening database", err)
		}

		cli.db = db.DB
		cli.usrRepo = sqlxrepos.NewUserRepository(db)
		cli.usrSvc = user.NewService(cli.usrRepo)
	}

	err := cli.run(os.Args)
	if cli.db != nil {
		_ = cli.db.Close()
	}
	if err != nil {
		if err != errHelp {
			logger.Error("admin command failed", err)
		}
		os.Exit(1)
	}
}
