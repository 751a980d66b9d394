// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/tomtom215/siriustracker/internal/backup"
	"github.com/tomtom215/siriustracker/internal/database"
)

// backupSummary is the listing form of a backup.
type backupSummary struct {
	ID        string `json:"id"`
	File      string `json:"file"`
	CreatedAt string `json:"created_at"`
	Size      int64  `json:"size"`
	PlayCount int64  `json:"play_count"`
	Notes     string `json:"notes,omitempty"`
}

func summarize(b *backup.Backup) backupSummary {
	return backupSummary{
		ID:        b.ID,
		File:      b.FilePath,
		CreatedAt: b.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		Size:      b.Size,
		PlayCount: b.PlayCount,
		Notes:     b.Notes,
	}
}

// backupManager opens the configured backup directory. db may be nil for
// list, validate, restore and prune.
func (rt *runtime) backupManager(db backup.Source) (*backup.Manager, error) {
	return backup.NewManager(rt.cfg.Backup, db)
}

func backupCommand(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "backup",
		Usage: "Snapshot and restore the DuckDB play store",
		Subcommands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Checkpoint the database and write a new archive, then apply retention",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "notes"},
					&cli.BoolFlag{Name: "no-prune", Usage: "skip retention after creating"},
				},
				Action: func(c *cli.Context) error {
					return rt.withDB(c, func(ctx context.Context, db *database.DB) error {
						m, err := rt.backupManager(db)
						if err != nil {
							return err
						}
						b, err := m.Create(ctx, c.String("notes"))
						if err != nil {
							return err
						}
						if !c.Bool("no-prune") {
							if _, err := m.Prune(); err != nil {
								return err
							}
						}
						return rt.print(summarize(b))
					})
				},
			},
			{
				Name:  "list",
				Usage: "List archives, newest first",
				Action: func(c *cli.Context) error {
					m, err := rt.backupManager(nil)
					if err != nil {
						return err
					}
					backups, err := m.List()
					if err != nil {
						return err
					}
					out := make([]backupSummary, 0, len(backups))
					for _, b := range backups {
						out = append(out, summarize(b))
					}
					return rt.print(out)
				},
			},
			{
				Name:      "validate",
				Usage:     "Verify an archive's checksums",
				ArgsUsage: "ID|FILE",
				Action: func(c *cli.Context) error {
					if err := requireArgs(c, 1, "ID|FILE"); err != nil {
						return err
					}
					m, err := rt.backupManager(nil)
					if err != nil {
						return err
					}
					result, err := m.Validate(c.Args().First())
					if err != nil {
						return err
					}
					if err := rt.print(result); err != nil {
						return err
					}
					if !result.Valid {
						return cli.Exit("backup is not valid", 1)
					}
					return nil
				},
			},
			{
				Name:      "restore",
				Usage:     "Extract an archive's database file (server must be stopped)",
				ArgsUsage: "ID|FILE",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "to", Usage: "destination path (default: DUCKDB_PATH)"},
					&cli.BoolFlag{Name: "force", Usage: "replace an existing file"},
				},
				Action: func(c *cli.Context) error {
					if err := requireArgs(c, 1, "ID|FILE"); err != nil {
						return err
					}
					dest := c.String("to")
					if dest == "" {
						dest = rt.cfg.Database.Path
					}
					if dest == ":memory:" {
						return fmt.Errorf("cannot restore into an in-memory database")
					}
					m, err := rt.backupManager(nil)
					if err != nil {
						return err
					}
					b, err := m.Restore(c.Args().First(), dest, c.Bool("force"))
					if err != nil {
						return err
					}
					return rt.print(map[string]interface{}{"restored": summarize(b), "to": dest})
				},
			},
			{
				Name:  "prune",
				Usage: "Delete all but the newest BACKUP_RETAIN archives",
				Action: func(c *cli.Context) error {
					m, err := rt.backupManager(nil)
					if err != nil {
						return err
					}
					removed, err := m.Prune()
					if err != nil {
						return err
					}
					if removed == nil {
						removed = []string{}
					}
					return rt.print(map[string]interface{}{"removed": removed})
				},
			},
		},
	}
}
