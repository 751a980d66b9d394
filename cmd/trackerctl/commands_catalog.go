// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/tomtom215/siriustracker/internal/catalog"
	"github.com/tomtom215/siriustracker/internal/database"
	"github.com/tomtom215/siriustracker/internal/logging"
	"github.com/tomtom215/siriustracker/internal/validation"
)

func catalogCommand(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "Manage tracked comedians and tracks",
		Subcommands: []*cli.Command{
			{
				Name:      "import",
				Usage:     "Replace the catalog with a tracked_artists.json file",
				ArgsUsage: "FILE",
				Action: func(c *cli.Context) error {
					if err := requireArgs(c, 1, "FILE"); err != nil {
						return err
					}
					return rt.withDB(c, func(ctx context.Context, db *database.DB) error {
						return importCatalog(ctx, rt, db, c.Args().First())
					})
				},
			},
			{
				Name:  "list",
				Usage: "Print the stored catalog",
				Action: func(c *cli.Context) error {
					return rt.withDB(c, func(ctx context.Context, db *database.DB) error {
						artists, err := db.TrackedArtists(ctx)
						if err != nil {
							return err
						}
						return rt.print(artists)
					})
				},
			},
		},
	}
}

func importCatalog(ctx context.Context, rt *runtime, db *database.DB, path string) error {
	f, err := os.Open(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck // read-only

	artists, err := catalog.ParseFile(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	for i := range artists {
		if verr := validation.ValidateStruct(&artists[i]); verr != nil {
			return fmt.Errorf("%s: %s: %w", path, artists[i].Artist, verr)
		}
	}

	if err := db.ReplaceCatalog(ctx, artists); err != nil {
		return err
	}

	// Reload through the catalog service so the reported pair count is
	// exactly what the server will see.
	svc := catalog.New(db)
	if err := svc.Reload(ctx); err != nil {
		return err
	}
	logging.Info().Str("file", path).Int("artists", len(artists)).Int("pairs", svc.Pairs()).Msg("Catalog imported")
	return rt.print(map[string]int{"artists": len(svc.Artists()), "pairs": svc.Pairs()})
}

// stationArgs validates station identifiers with the same rule as the admin API.
type stationArgs struct {
	Stations []string `validate:"required,min=1,max=200,dive,station"`
}

func stationsCommand(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "stations",
		Usage: "Manage the polled station list",
		Subcommands: []*cli.Command{
			{
				Name:      "set",
				Usage:     "Replace the stored station list",
				ArgsUsage: "STATION...",
				Action: func(c *cli.Context) error {
					if err := requireArgs(c, 1, "STATION..."); err != nil {
						return err
					}
					args := stationArgs{Stations: c.Args().Slice()}
					if verr := validation.ValidateStruct(&args); verr != nil {
						return verr
					}
					return rt.withDB(c, func(ctx context.Context, db *database.DB) error {
						if err := db.ReplaceStations(ctx, args.Stations); err != nil {
							return err
						}
						stations, err := db.TrackedStations(ctx)
						if err != nil {
							return err
						}
						return rt.print(stations)
					})
				},
			},
			{
				Name:  "list",
				Usage: "Print the stations the poller will use",
				Action: func(c *cli.Context) error {
					return rt.withDB(c, func(ctx context.Context, db *database.DB) error {
						stations, err := db.TrackedStations(ctx)
						if err != nil {
							return err
						}
						if len(stations) == 0 {
							stations = rt.cfg.Poller.Stations
							logging.Info().Msg("No stored stations, showing POLL_STATIONS fallback")
						}
						if stations == nil {
							stations = []string{}
						}
						return rt.print(stations)
					})
				},
			},
		},
	}
}
