package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"salesroute/internal/logger"
	"salesroute/internal/model"
	"salesroute/internal/render"
	"salesroute/internal/service/route"
	"salesroute/internal/util"

	"go.uber.org/zap"
)

var errUnknownFormat = errors.New("file is neither a Routing v8 nor a Routing v7 response")

func main() {
	polyline := flag.String("polyline", "", "Encoded polyline to export")
	precision := flag.Int("precision", util.DefaultPrecision, "Polyline precision in decimal places")
	inputFile := flag.String("file", "", "HERE Routing v8 or v7 JSON response")
	outputFile := flag.String("out", "route.geojson", "Output GeoJSON file")
	label := flag.String("label", "", "Route label stored in the feature properties")
	flag.Parse()

	logger, err := logger.NewNamed("development", "route-export")
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if (*polyline == "") == (*inputFile == "") {
		logger.Fatal("exactly one of -polyline or -file is required")
	}

	var coords model.CoordinateSequence
	if *polyline != "" {
		coords, err = util.DecodePolylineWithPrecision(*polyline, *precision)
	} else {
		var data []byte
		data, err = os.ReadFile(*inputFile)
		if err == nil {
			coords, err = coordinatesFromResponse(data)
		}
	}
	if err != nil {
		logger.Fatal("failed to decode route", zap.Error(err))
	}

	view := render.RouteView(*label, coords)
	if view.GeoJSON == nil {
		logger.Fatal(view.Message)
	}

	out, err := json.MarshalIndent(view.GeoJSON, "", "  ")
	if err != nil {
		logger.Fatal("failed to encode GeoJSON", zap.Error(err))
	}
	if err := os.WriteFile(*outputFile, out, 0644); err != nil {
		logger.Fatal("failed to write output", zap.String("file", *outputFile), zap.Error(err))
	}

	logger.Info("route exported",
		zap.String("file", *outputFile),
		zap.Int("points", len(coords)),
		zap.Float64("length_m", view.LengthMeters))
}

// coordinatesFromResponse detects the response flavour by its top-level key
func coordinatesFromResponse(data []byte) (model.CoordinateSequence, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	switch {
	case probe["routes"] != nil:
		var resp model.RouteResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return nil, fmt.Errorf("parse v8 response: %w", err)
		}
		return route.Assemble(&resp)
	case probe["response"] != nil:
		var resp model.ShapeResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return nil, fmt.Errorf("parse v7 response: %w", err)
		}
		return route.DecodeShape(&resp)
	default:
		return nil, errUnknownFormat
	}
}
