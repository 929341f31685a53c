package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"roadtrip/internal/canvas"
	"roadtrip/internal/domain"
	"roadtrip/internal/planner"
)

var (
	flagStops       []string
	flagTrip        string
	flagName        string
	flagDescription string
	flagImageURL    string
	flagSave        bool
	flagGeoJSON     string
	flagTimes       []string
	flagPlaces      []string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Build or extend a trip, route it and estimate its budget",
	Example: `  tripctl plan --stop 38.8977,-77.0365:FOOD --stop 39.2904,-76.6122:REST:120
  tripctl plan --trip 7c1e... --stop 37.5407,-77.4360 --save
  tripctl plan --place "Fort McHenry, Baltimore" --place "Monticello"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		stops := make([]stopSpec, 0, len(flagStops))
		for _, raw := range flagStops {
			spec, err := parseStopSpec(raw)
			if err != nil {
				return err
			}
			stops = append(stops, spec)
		}
		times, err := parseStopTimes(flagTimes)
		if err != nil {
			return err
		}

		routes, err := newRouteService()
		if err != nil {
			return err
		}

		backend := newBackend()
		rec := canvas.NewRecorder()
		notices := &planner.NoticeLog{}
		session := planner.NewSession(rec, routes, backend, planner.NewPersistenceGateway(backend), planner.SessionConfig{
			Notifier: notices,
			Logger:   newLogger(),
		})

		ctx := cmd.Context()
		if err := session.Open(ctx, flagTrip); err != nil {
			return err
		}

		for _, s := range stops {
			if s.hasCost {
				_, err = session.AddStopWithCost(ctx, s.pos, s.typ, s.cost)
			} else {
				_, err = session.AddStop(ctx, s.pos, s.typ)
			}
			if err != nil {
				return err
			}
		}
		for _, address := range flagPlaces {
			place, err := backend.Geocode(ctx, address)
			if err != nil {
				return fmt.Errorf("--place %q: %w", address, err)
			}
			if _, err := session.AddSearchResult(ctx, place); err != nil {
				return err
			}
		}
		for idx, minutes := range times {
			if err := session.SetStopTime(idx, minutes); err != nil {
				return fmt.Errorf("--time %d: %w", idx+1, err)
			}
		}
		session.Wait()

		if flagSave {
			meta := session.Meta()
			if flagName != "" {
				meta.Name = flagName
			}
			if flagDescription != "" {
				meta.Description = flagDescription
			}
			if flagImageURL != "" {
				meta.ImageURL = flagImageURL
			}
			if meta.UserID == "" {
				if meta.UserID, err = requireUser(); err != nil {
					return err
				}
			}
			result, err := session.Save(ctx, meta)
			if err != nil {
				return err
			}
			fmt.Printf("Saved trip %s\n", result.TripID)
		}

		printSession(session)
		for _, n := range notices.Notices() {
			fmt.Fprintf(os.Stderr, "warning: %s %s: %s\n", n.Source, n.Kind, n.Message)
		}

		if flagGeoJSON != "" {
			data, err := rec.GeoJSON()
			if err != nil {
				return err
			}
			if err := os.WriteFile(flagGeoJSON, data, 0o644); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	planCmd.Flags().StringArrayVar(&flagStops, "stop", nil, "stop as lat,lng[:TYPE[:COST]] (repeatable, in visit order)")
	planCmd.Flags().StringArrayVar(&flagPlaces, "place", nil, "address or place name to geocode and add after the --stop stops (repeatable)")
	planCmd.Flags().StringArrayVar(&flagTimes, "time", nil, "minutes at a stop as INDEX=MINUTES, 1-based (repeatable)")
	planCmd.Flags().StringVar(&flagTrip, "trip", planner.NewTripMarker, "trip id to extend, or \"new\"")
	planCmd.Flags().StringVar(&flagName, "name", "", "trip name (required to save a new trip)")
	planCmd.Flags().StringVar(&flagDescription, "description", "", "trip description")
	planCmd.Flags().StringVar(&flagImageURL, "image", "", "trip image URL")
	planCmd.Flags().BoolVar(&flagSave, "save", false, "save the trip to the backend")
	planCmd.Flags().StringVar(&flagGeoJSON, "geojson", "", "write markers and route to this GeoJSON file")
}

// stopSpec is one parsed --stop flag.
type stopSpec struct {
	pos     domain.Coordinates
	typ     domain.StopType
	cost    float64
	hasCost bool
}

// parseStopSpec parses lat,lng[:TYPE[:COST]].
func parseStopSpec(raw string) (stopSpec, error) {
	parts := strings.Split(raw, ":")
	if len(parts) > 3 {
		return stopSpec{}, fmt.Errorf("stop %q: want lat,lng[:TYPE[:COST]]", raw)
	}

	latlng := strings.Split(parts[0], ",")
	if len(latlng) != 2 {
		return stopSpec{}, fmt.Errorf("stop %q: want lat,lng", raw)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latlng[0]), 64)
	if err != nil {
		return stopSpec{}, fmt.Errorf("stop %q: latitude: %w", raw, err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(latlng[1]), 64)
	if err != nil {
		return stopSpec{}, fmt.Errorf("stop %q: longitude: %w", raw, err)
	}

	spec := stopSpec{pos: domain.Coordinates{Lat: lat, Lng: lng}, typ: domain.StopTypeMisc}
	if err := spec.pos.Validate(); err != nil {
		return stopSpec{}, fmt.Errorf("stop %q: %w", raw, err)
	}
	if len(parts) > 1 && parts[1] != "" {
		spec.typ = domain.ParseStopType(parts[1])
	}
	if len(parts) > 2 {
		spec.cost, err = strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return stopSpec{}, fmt.Errorf("stop %q: cost: %w", raw, err)
		}
		spec.hasCost = true
	}
	return spec, nil
}

// parseStopTimes parses INDEX=MINUTES pairs into zero-based indexes.
func parseStopTimes(raw []string) (map[int]int, error) {
	out := make(map[int]int, len(raw))
	for _, r := range raw {
		idx, minutes, ok := strings.Cut(r, "=")
		if !ok {
			return nil, fmt.Errorf("time %q: want INDEX=MINUTES", r)
		}
		i, err := strconv.Atoi(idx)
		if err != nil || i < 1 {
			return nil, fmt.Errorf("time %q: index must be a positive integer", r)
		}
		m, err := strconv.Atoi(minutes)
		if err != nil {
			return nil, fmt.Errorf("time %q: minutes: %w", r, err)
		}
		out[i-1] = m
	}
	return out, nil
}
