// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/siriustracker/internal/logging"
	"github.com/tomtom215/siriustracker/internal/metrics"
	"github.com/tomtom215/siriustracker/internal/models"
	"github.com/tomtom215/siriustracker/internal/xmplaylist"
)

// errSkipRecord marks a provider item that cannot become a play.
var errSkipRecord = errors.New("skip record")

// toRawPlays converts a station response into raw plays tagged with the
// channel display name. Items missing an id, timestamp or title are
// skipped and counted.
func toRawPlays(ctx context.Context, station string, resp *xmplaylist.StationResponse) ([]models.RawPlay, int) {
	raws := make([]models.RawPlay, 0, len(resp.Results))
	skipped := 0

	for i := range resp.Results {
		raw, err := toRawPlay(&resp.Results[i], resp.Channel.Name)
		if err != nil {
			skipped++
			metrics.RecordSkippedPlay("malformed")
			logging.Ctx(ctx).Warn().Err(err).Str("station", station).Str("play_id", resp.Results[i].ID).Msg("Skipping malformed playlist item")
			continue
		}
		raws = append(raws, raw)
	}
	return raws, skipped
}

func toRawPlay(item *xmplaylist.Item, channel string) (models.RawPlay, error) {
	switch {
	case item.ID == "":
		return models.RawPlay{}, fmt.Errorf("%w: missing id", errSkipRecord)
	case item.Timestamp == "":
		return models.RawPlay{}, fmt.Errorf("%w: missing timestamp", errSkipRecord)
	case item.Track.Title == "":
		return models.RawPlay{}, fmt.Errorf("%w: missing track title", errSkipRecord)
	}

	raw := models.RawPlay{
		ID:        item.ID,
		Title:     models.NormalizeTitle(item.Track.Title),
		Channel:   channel,
		Timestamp: item.Timestamp,
	}
	if len(item.Track.Artists) > 0 {
		artist := item.Track.Artists[0]
		raw.Artist = &artist
	}
	return raw, nil
}

// timeSpan is the distance between the oldest and newest parseable item.
func timeSpan(items []xmplaylist.Item) time.Duration {
	var oldest, newest time.Time
	for i := range items {
		ts, err := models.ParsePlayTimestamp(items[i].Timestamp)
		if err != nil {
			continue
		}
		if oldest.IsZero() || ts.Before(oldest) {
			oldest = ts
		}
		if newest.IsZero() || ts.After(newest) {
			newest = ts
		}
	}
	return newest.Sub(oldest)
}

// formatSpan renders d as "Xm Ys".
func formatSpan(d time.Duration) string {
	total := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%dm %ds", total/60, total%60)
}
