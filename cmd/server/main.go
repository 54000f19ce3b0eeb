package main

import (
	"context"
	"flag"

	"github.com/lintang-b-s/navigo/pkg"
	"github.com/lintang-b-s/navigo/pkg/directions"
	"github.com/lintang-b-s/navigo/pkg/http"
	"github.com/lintang-b-s/navigo/pkg/http/usecases"
	"github.com/lintang-b-s/navigo/pkg/logger"
	"github.com/lintang-b-s/navigo/pkg/navigation"
	"github.com/lintang-b-s/navigo/pkg/planner"
	"github.com/lintang-b-s/navigo/pkg/util"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	useRateLimit = flag.Bool("rate_limit", false, "rate limit the public API per client ip")
)

func main() {
	flag.Parse()
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}

	if err := util.ReadConfig(); err != nil {
		logger.Warn("no config file found, using defaults and environment", zap.Error(err))
	}

	viper.SetDefault("DIRECTIONS_BASE_URL", directions.DefaultBaseURL)
	viper.SetDefault("DIRECTIONS_TIMEOUT", directions.DefaultTimeout)
	viper.SetDefault("DIRECTIONS_RATE_LIMIT", directions.DefaultRequestsPerSec)
	viper.SetDefault("ROUTE_INFO_CACHE_SIZE", pkg.DEFAULT_ROUTE_INFO_CACHE_SIZE)
	viper.SetDefault("OFF_ROUTE_THRESHOLD_METERS", pkg.DEFAULT_OFF_ROUTE_THRESHOLD_METERS)
	viper.SetDefault("UPDATE_INTERVAL_MS", pkg.DEFAULT_UPDATE_INTERVAL_MS)
	viper.SetDefault("MIN_DISPLACEMENT_METERS", pkg.DEFAULT_MIN_DISPLACEMENT_METERS)
	viper.SetDefault("SNAP_SEARCH_RADIUS_METERS", pkg.DEFAULT_SNAP_SEARCH_RADIUS_METERS)

	client := directions.NewClient(
		viper.GetString("DIRECTIONS_API_KEY"),
		viper.GetString("DIRECTIONS_BASE_URL"),
		viper.GetDuration("DIRECTIONS_TIMEOUT"),
		viper.GetFloat64("DIRECTIONS_RATE_LIMIT"),
		logger,
	)

	// the server has no device gps: planRoute's include_user_location falls
	// back to the first waypoint, websocket clients push their own positions
	routePlanner := planner.NewRoutePlanner(logger, client, nil,
		viper.GetInt("ROUTE_INFO_CACHE_SIZE"))

	sessionConfig := navigation.Config{
		OffRouteThresholdMeters: viper.GetFloat64("OFF_ROUTE_THRESHOLD_METERS"),
		UpdateIntervalMs:        viper.GetInt("UPDATE_INTERVAL_MS"),
		MinDisplacementMeters:   viper.GetFloat64("MIN_DISPLACEMENT_METERS"),
		SnapSearchRadiusMeters:  viper.GetFloat64("SNAP_SEARCH_RADIUS_METERS"),
	}

	navigationService := usecases.NewNavigationService(logger, routePlanner, sessionConfig)

	api := http.NewServer(logger)

	ctx, cleanup, err := NewContext()
	if err != nil {
		panic(err)
	}
	if _, err := api.Use(ctx, logger, *useRateLimit, navigationService); err != nil {
		logger.Fatal("server startup failed", zap.Error(err))
	}

	signal := http.GracefulShutdown()

	logger.Info("navigo server stopped", zap.String("signal", signal.String()))
	cleanup()
}

func NewContext() (context.Context, func(), error) {
	ctx, cancel := context.WithCancel(context.Background())
	cb := func() {
		cancel()
	}

	return ctx, cb, nil
}
