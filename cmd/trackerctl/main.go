// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v2"

	"github.com/tomtom215/siriustracker/internal/config"
	"github.com/tomtom215/siriustracker/internal/database"
	"github.com/tomtom215/siriustracker/internal/logging"
	"github.com/tomtom215/siriustracker/internal/retry"
)

// runtime carries what every command needs. It is built in the app's
// Before hook so commands only open the database when they run.
type runtime struct {
	cfg *config.Config
	out io.Writer
}

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	rt := &runtime{out: out}

	return &cli.App{
		Name:      "trackerctl",
		Usage:     "Maintenance tasks for the Sirius Tracker play store",
		Writer:    out,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "override LOG_LEVEL",
				EnvVars: []string{"TRACKERCTL_LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			cfg, err := config.LoadWithKoanf()
			if err != nil {
				return err
			}
			if lvl := c.String("log-level"); lvl != "" {
				cfg.Logging.Level = lvl
			}
			logging.Init(logging.Config{
				Level:  cfg.Logging.Level,
				Format: "console",
				Caller: cfg.Logging.Caller,
			})
			rt.cfg = cfg
			return nil
		},
		Commands: []*cli.Command{
			catalogCommand(rt),
			stationsCommand(rt),
			pollCommand(rt),
			firstPlaysCommand(rt),
			playsCommand(rt),
			importReportCommand(rt),
			backupCommand(rt),
		},
	}
}

// withDB opens the database for the duration of fn.
func (rt *runtime) withDB(c *cli.Context, fn func(ctx context.Context, db *database.DB) error) error {
	ctx := c.Context
	db, err := database.New(ctx, &rt.cfg.Database, retry.FromConfig(rt.cfg.Retry))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	return fn(ctx, db)
}

// print writes v as indented JSON.
func (rt *runtime) print(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(rt.out, string(data))
	return err
}

// requireArgs checks the positional argument count.
func requireArgs(c *cli.Context, n int, usage string) error {
	if c.NArg() < n {
		return cli.Exit(fmt.Sprintf("usage: trackerctl %s %s", c.Command.FullName(), usage), 2)
	}
	return nil
}
