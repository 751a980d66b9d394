// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/tomtom215/siriustracker/internal/catalog"
	"github.com/tomtom215/siriustracker/internal/database"
	"github.com/tomtom215/siriustracker/internal/detection"
	reportimport "github.com/tomtom215/siriustracker/internal/import"
	"github.com/tomtom215/siriustracker/internal/ingest"
	"github.com/tomtom215/siriustracker/internal/logging"
	"github.com/tomtom215/siriustracker/internal/models"
	"github.com/tomtom215/siriustracker/internal/notify"
	"github.com/tomtom215/siriustracker/internal/sync"
	"github.com/tomtom215/siriustracker/internal/xmplaylist"
)

func pollCommand(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "poll",
		Usage: "Run a single poll pass over every tracked station",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "no-notify", Usage: "record first plays without sending email"},
		},
		Action: func(c *cli.Context) error {
			return rt.withDB(c, func(ctx context.Context, db *database.DB) error {
				cat := catalog.New(db)
				if err := cat.Reload(ctx); err != nil {
					return err
				}

				var notifier detection.Notifier
				if n := notify.NewEmailNotifier(rt.cfg.SMTP); n.Enabled() && !c.Bool("no-notify") {
					notifier = n
				}

				ingester := ingest.NewService(db, detection.New(cat, db, notifier), nil)
				fetcher := xmplaylist.NewCircuitBreakerClient(xmplaylist.NewClient(&rt.cfg.Poller))
				summary, err := sync.NewManager(fetcher, db, ingester, &rt.cfg.Poller).PollOnce(ctx)
				if err != nil {
					return err
				}
				return rt.print(summary)
			})
		},
	}
}

// backfillResult reports a first-plays backfill.
type backfillResult struct {
	Candidates int                `json:"candidates"`
	Recorded   int                `json:"recorded"`
	Existing   int                `json:"existing"`
	DryRun     bool               `json:"dry_run"`
	FirstPlays []models.FirstPlay `json:"first_plays,omitempty"`
}

func firstPlaysCommand(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "first-plays",
		Usage: "Inspect and rebuild recorded first plays",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "Print recorded first plays",
				Action: func(c *cli.Context) error {
					return rt.withDB(c, func(ctx context.Context, db *database.DB) error {
						fps, err := db.ListFirstPlays(ctx)
						if err != nil {
							return err
						}
						if fps == nil {
							fps = []models.FirstPlay{}
						}
						return rt.print(fps)
					})
				},
			},
			{
				Name: "backfill",
				Usage: "Record a first play for every tracked track already in the play store, " +
					"dated at its earliest stored play. No email is sent.",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "dry-run", Usage: "report what would be recorded"},
				},
				Action: func(c *cli.Context) error {
					return rt.withDB(c, func(ctx context.Context, db *database.DB) error {
						res, err := backfillFirstPlays(ctx, db, c.Bool("dry-run"))
						if err != nil {
							return err
						}
						return rt.print(res)
					})
				},
			},
		},
	}
}

// firstPlayBackfiller is the store surface backfillFirstPlays needs.
type firstPlayBackfiller interface {
	EarliestTrackedPlays(ctx context.Context) ([]models.FirstPlay, error)
	HasFirstPlay(ctx context.Context, artist, title string) (bool, error)
	InsertFirstPlay(ctx context.Context, fp *models.FirstPlay) error
}

func backfillFirstPlays(ctx context.Context, store firstPlayBackfiller, dryRun bool) (*backfillResult, error) {
	candidates, err := store.EarliestTrackedPlays(ctx)
	if err != nil {
		return nil, err
	}

	res := &backfillResult{Candidates: len(candidates), DryRun: dryRun}
	for i := range candidates {
		fp := candidates[i]
		if dryRun {
			exists, err := store.HasFirstPlay(ctx, fp.Artist, fp.Title)
			if err != nil {
				return res, err
			}
			if exists {
				res.Existing++
				continue
			}
		} else {
			err := store.InsertFirstPlay(ctx, &fp)
			if errors.Is(err, database.ErrFirstPlayExists) {
				res.Existing++
				continue
			}
			if err != nil {
				return res, fmt.Errorf("record first play %s / %s: %w", fp.Artist, fp.Title, err)
			}
		}
		res.Recorded++
		res.FirstPlays = append(res.FirstPlays, fp)
	}

	logging.Info().
		Int("candidates", res.Candidates).
		Int("recorded", res.Recorded).
		Int("existing", res.Existing).
		Bool("dry_run", dryRun).
		Msg("First-play backfill finished")
	return res, nil
}

func playsCommand(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "plays",
		Usage: "Inspect stored plays",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "Print matching plays, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "artist", Usage: "exact artist, case-insensitive"},
					&cli.StringFlag{Name: "title", Usage: "title substring, case-insensitive"},
					&cli.StringSliceFlag{Name: "channel", Usage: "channel name (repeatable)"},
					&cli.TimestampFlag{Name: "start", Layout: time.RFC3339, Usage: "inclusive lower bound (RFC 3339)"},
					&cli.TimestampFlag{Name: "end", Layout: time.RFC3339, Usage: "inclusive upper bound (RFC 3339)"},
					&cli.IntFlag{Name: "limit", Value: 100},
				},
				Action: func(c *cli.Context) error {
					filter := database.PlayFilter{
						Artist:   strings.TrimSpace(c.String("artist")),
						Title:    strings.TrimSpace(c.String("title")),
						Channels: c.StringSlice("channel"),
						Start:    c.Timestamp("start"),
						End:      c.Timestamp("end"),
						Limit:    c.Int("limit"),
					}
					return rt.withDB(c, func(ctx context.Context, db *database.DB) error {
						plays, err := db.ListPlays(ctx, filter)
						if err != nil {
							return err
						}
						if plays == nil {
							plays = []models.Play{}
						}
						return rt.print(plays)
					})
				},
			},
		},
	}
}

func importReportCommand(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:      "import-report",
		Usage:     "Load a CSV airplay report into the play store (run first-plays backfill afterwards)",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "timezone", Value: "America/New_York", Usage: "zone for datetimes without an offset"},
			&cli.IntFlag{Name: "batch-size", Value: 500},
			&cli.BoolFlag{Name: "dry-run", Usage: "count rows without writing"},
		},
		Action: func(c *cli.Context) error {
			if err := requireArgs(c, 1, "FILE"); err != nil {
				return err
			}
			loc, err := time.LoadLocation(c.String("timezone"))
			if err != nil {
				return fmt.Errorf("--timezone: %w", err)
			}

			path := c.Args().First()
			f, err := os.Open(path) //nolint:gosec // operator-supplied path
			if err != nil {
				return err
			}
			defer f.Close() //nolint:errcheck // read-only

			return rt.withDB(c, func(ctx context.Context, db *database.DB) error {
				imp, err := reportimport.NewImporter(db, reportimport.Options{
					Location:  loc,
					BatchSize: c.Int("batch-size"),
					DryRun:    c.Bool("dry-run"),
				})
				if err != nil {
					return err
				}
				stats, err := imp.Import(ctx, f)
				if stats != nil {
					if perr := rt.print(stats); perr != nil {
						return perr
					}
				}
				return err
			})
		},
	}
}
