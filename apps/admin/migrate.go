package main

import (
	"fmt"

	"github.com/pkg/errors"
)

func (cli *commandLine) migrate(direction string, steps int) error {
	switch direction {
	case "", "up":
		if err := migrateFunc(cli.db); err != nil {
			return err
		}
	case "down":
		if steps <= 0 {
			return errors.Errorf("steps must be positive (got %d)", steps)
		}
		if err := rollbackFunc(cli.db, steps); err != nil {
			return err
		}
	case "version":
	default:
		return errors.Errorf("%q: no such migrate command", direction)
	}

	version, dirty, err := versionFunc(cli.db)
	if err != nil {
		return err
	}
	state := "clean"
	if dirty {
		state = "dirty"
	}
	fmt.Fprintf(cli.out, "schema version %d (%s)\n", version, state)
	return nil
}
