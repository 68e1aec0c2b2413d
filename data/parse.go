// data/parse.go
// Copyright(c) 2025-2026 divert contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/flightsafe/divert/av"
	"github.com/flightsafe/divert/geo"
	"github.com/flightsafe/divert/log"
	"github.com/flightsafe/divert/util"
)

// MinRunwayFt is the shortest runway worth indexing; anything below is
// not a useful landing site even for light aircraft.
const MinRunwayFt = 500

// siteTypes are the OurAirports "type" values we load. Heliports,
// balloonports and closed airports are skipped.
var siteTypes = map[string]bool{
	"large_airport":  true,
	"medium_airport": true,
	"small_airport":  true,
	"seaplane_base":  true,
}

// mungeCSV parses CSV from r, extracting the requested header fields
// and calling the callback with their values for each row.
func mungeCSV(filename string, r io.Reader, fields []string, callback func([]string)) error {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	// Find the index of each field the caller requested.
	var fieldIndices []int
	if header, err := cr.Read(); err != nil {
		return fmt.Errorf("%s: error parsing CSV header: %w", filename, err)
	} else {
		for fi, f := range fields {
			for hi, h := range header {
				if f == strings.TrimSpace(h) {
					fieldIndices = append(fieldIndices, hi)
					break
				}
			}
			if len(fieldIndices) != fi+1 {
				return fmt.Errorf("%s: field %q not in CSV header", filename, f)
			}
		}
	}

	var strs []string
	for {
		record, err := cr.Read()
		if err == io.EOF {
			return nil
		} else if err != nil {
			return fmt.Errorf("%s: error parsing CSV: %w", filename, err)
		}
		for _, i := range fieldIndices {
			strs = append(strs, record[i])
		}
		callback(strs)
		strs = strs[:0]
	}
}

// runwayInfo is the per-airport result of scanning runways.csv: the
// longest open runway and its width and surface.
type runwayInfo struct {
	lengthFt int
	widthFt  int
	surface  av.Surface
}

// parseRunways scans the OurAirports runways table and returns the
// longest open runway per airport ident.
func parseRunways(r io.Reader, lg *log.Logger) (map[string]runwayInfo, error) {
	longest := make(map[string]runwayInfo)
	skipped := 0

	err := mungeCSV("runways", r,
		[]string{"airport_ident", "length_ft", "width_ft", "surface", "closed"},
		func(s []string) {
			ident := strings.TrimSpace(s[0])
			if ident == "" || s[4] == "1" {
				return
			}
			length, err := util.Atoi(s[1])
			if err != nil || length <= 0 {
				skipped++
				return
			}
			width, err := util.Atoi(s[2])
			if err != nil {
				width = 0 // width is frequently unpublished
			}

			if ri, ok := longest[ident]; !ok || length > ri.lengthFt {
				longest[ident] = runwayInfo{
					lengthFt: length,
					widthFt:  width,
					surface:  av.ParseSurface(s[3]),
				}
			}
		})
	if err != nil {
		return nil, err
	}

	if skipped > 0 {
		lg.Debug("skipped runway records without usable length", slog.Int("count", skipped))
	}
	return longest, nil
}

// parseSites joins the OurAirports airports table against the runway
// table and returns validated landing sites. Records failing basic
// validation are skipped with a logged warning, never aborting the
// load.
func parseSites(airports, runways io.Reader, lg *log.Logger) ([]av.LandingSite, error) {
	longest, err := parseRunways(runways, lg)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var sites []av.LandingSite
	seen := make(map[string]bool)

	err = mungeCSV("airports", airports,
		[]string{"ident", "type", "name", "latitude_deg", "longitude_deg", "elevation_ft"},
		func(s []string) {
			ident := strings.ToUpper(strings.TrimSpace(s[0]))
			if ident == "" || !siteTypes[s[1]] {
				return
			}
			if seen[ident] {
				lg.Warn("duplicate site ident, keeping first", slog.String("ident", ident))
				return
			}

			lat, err0 := util.Atof(s[3])
			lon, err1 := util.Atof(s[4])
			if err0 != nil || err1 != nil {
				lg.Warn("skipping site with unparseable coordinates", slog.String("ident", ident))
				return
			}
			loc, err := geo.MakeCoordinate(lat, lon)
			if err != nil {
				lg.Warn("skipping site with invalid coordinates",
					slog.String("ident", ident), slog.Float64("lat", lat), slog.Float64("lon", lon))
				return
			}

			ri, ok := longest[ident]
			if !ok || ri.lengthFt < MinRunwayFt {
				return
			}

			elevation := 0
			if s[5] != "" && s[5] != "NA" {
				if e, err := util.Atof(s[5]); err == nil {
					elevation = int(e)
				}
			}

			seen[ident] = true
			sites = append(sites, av.LandingSite{
				Ident:           ident,
				Name:            s[2],
				Location:        loc,
				ElevationFt:     elevation,
				LongestRunwayFt: ri.lengthFt,
				RunwayWidthFt:   ri.widthFt,
				Surface:         ri.surface,
				LastUpdated:     now,
			})
		})
	if err != nil {
		return nil, err
	}

	return sites, nil
}
