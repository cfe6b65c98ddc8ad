package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"

	"github.com/fukurin00/geo_map_provider/builder"
	"github.com/fukurin00/geo_map_provider/geocsv"
	"github.com/fukurin00/geo_map_provider/osm"
	"github.com/fukurin00/geo_map_provider/planner"
	"github.com/fukurin00/geo_map_provider/projection"
)

var (
	logFile string

	// generate
	configFile     string
	outDir         string
	mapName        string
	resolution     float64
	padding        int
	sourceCRS      string
	targetCRS      string
	occupiedThresh float64
	freeThresh     float64
	negate         int
	orderName      string
	force          bool

	// fetch
	fetchLat    float64
	fetchLon    float64
	fetchRadius float64
	fetchLayer  string
	fetchDir    string

	// check
	fromPos string
	toPos   string
)

var rootCmd = &cobra.Command{
	Use:   "geo-map-provider",
	Short: "Convert geographic boundary waypoints into Nav2 occupancy-grid maps",
	Long: `geo-map-provider turns a set of GPS boundary waypoints into a ROS/Nav2
map_server artifact pair: a PGM occupancy raster (with a PNG duplicate)
and a map.yaml georeferencing record.`,
	PersistentPreRunE: setupLogging,
}

var generateCmd = &cobra.Command{
	Use:   "generate <points.csv>",
	Short: "Build map artifacts from a waypoint CSV",
	Args:  cobra.ExactArgs(1),
	RunE:  runGenerate,
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch closed boundary ways from the Overpass API into CSV files",
	RunE:  runFetch,
}

var checkCmd = &cobra.Command{
	Use:   "check <map.yaml>",
	Short: "Verify two world positions are connected on a generated map",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logFile, "log", "", "also write logs to this file")

	f := generateCmd.Flags()
	f.StringVarP(&configFile, "config", "c", "", "YAML build profile")
	f.StringVarP(&outDir, "out", "o", ".", "output directory")
	f.StringVarP(&mapName, "name", "n", "map", "artifact base name")
	f.Float64VarP(&resolution, "resolution", "r", 0.5, "meters per cell")
	f.IntVarP(&padding, "padding", "p", 10, "padding cells on every side")
	f.StringVar(&sourceCRS, "source-crs", "", "source frame (proj4), default WGS84")
	f.StringVar(&targetCRS, "target-crs", "", "target planar frame (proj4), default auto UTM zone")
	f.Float64Var(&occupiedThresh, "occupied-thresh", 0.65, "occupied threshold")
	f.Float64Var(&freeThresh, "free-thresh", 0.196, "free threshold")
	f.IntVar(&negate, "negate", 0, "negate flag (0/1)")
	f.StringVar(&orderName, "order", "angular", "boundary ordering: angular, hull or input")
	f.BoolVar(&force, "force", false, "overwrite existing artifacts")

	f = fetchCmd.Flags()
	f.Float64Var(&fetchLat, "lat", 0, "center latitude (degrees)")
	f.Float64Var(&fetchLon, "lon", 0, "center longitude (degrees)")
	f.Float64Var(&fetchRadius, "radius", 200, "search radius (meters)")
	f.StringVar(&fetchLayer, "layer", "water", "feature layer: water, wood or building")
	f.StringVarP(&fetchDir, "out", "o", ".", "output directory for CSV files")

	f = checkCmd.Flags()
	f.StringVar(&fromPos, "from", "", "start position as x,y in map frame meters")
	f.StringVar(&toPos, "to", "", "goal position as x,y in map frame meters")
	checkCmd.MarkFlagRequired("from")
	checkCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(generateCmd, fetchCmd, checkCmd)
}

func setupLogging(cmd *cobra.Command, args []string) error {
	log.SetHeader("${time_rfc3339} ${level}")
	log.SetLevel(log.INFO)
	if logFile == "" {
		return nil
	}
	f, err := os.OpenFile(logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return err
	}
	log.SetOutput(io.MultiWriter(os.Stdout, f))
	return nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg := builder.DefaultConfig()
	if configFile != "" {
		var err error
		cfg, err = builder.LoadConfig(configFile)
		if err != nil {
			return err
		}
	}

	// explicit flags win over the profile
	flags := cmd.Flags()
	if flags.Changed("resolution") {
		cfg.Resolution = resolution
	}
	if flags.Changed("padding") {
		cfg.Padding = padding
	}
	if flags.Changed("source-crs") {
		cfg.SourceCRS = sourceCRS
	}
	if flags.Changed("target-crs") {
		cfg.TargetCRS = targetCRS
	}
	if flags.Changed("occupied-thresh") {
		cfg.OccupiedThresh = occupiedThresh
	}
	if flags.Changed("free-thresh") {
		cfg.FreeThresh = freeThresh
	}
	if flags.Changed("negate") {
		cfg.Negate = negate
	}
	if flags.Changed("order") {
		cfg.Order = orderName
	}
	if flags.Changed("force") {
		cfg.Force = force
	}

	points, err := geocsv.Load(args[0])
	if err != nil {
		return err
	}
	log.Infof("loaded %d waypoints from %s", len(points), args[0])

	res, err := builder.Build(points, outDir, mapName, cfg)
	if err != nil {
		return err
	}
	fmt.Printf("map: %dx%d cells, %gm/cell, origin [%g, %g]\n",
		res.Spec.Width, res.Spec.Height, res.Spec.Resolution, res.Meta.Origin[0], res.Meta.Origin[1])
	return nil
}

func runFetch(cmd *cobra.Command, args []string) error {
	client := osm.NewClient()
	center := projection.GeoPoint{Lat: fetchLat, Lon: fetchLon}
	boundaries, err := client.FetchLayer(context.Background(), center, fetchRadius, fetchLayer)
	if err != nil {
		return err
	}
	if len(boundaries) == 0 {
		log.Warnf("no closed %s ways within %gm of (%g,%g)", fetchLayer, fetchRadius, fetchLat, fetchLon)
		return nil
	}

	used := make(map[string]int)
	for _, b := range boundaries {
		name := b.FileName()
		if n := used[name]; n > 0 {
			name = fmt.Sprintf("%s_%d.csv", strings.TrimSuffix(name, ".csv"), n)
		}
		used[b.FileName()]++

		path := filepath.Join(fetchDir, name)
		if err := geocsv.Save(path, b.Points()); err != nil {
			return err
		}
		log.Infof("saved %d waypoints to %s", len(b.Points()), path)
	}
	return nil
}

func parseXY(s string) (x, y float64, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("want x,y but got %q", s)
	}
	x, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, err
	}
	y, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	return x, y, err
}

func runCheck(cmd *cobra.Command, args []string) error {
	x1, y1, err := parseXY(fromPos)
	if err != nil {
		return err
	}
	x2, y2, err := parseXY(toPos)
	if err != nil {
		return err
	}

	p, err := planner.Load(args[0])
	if err != nil {
		return err
	}
	ok, dist, err := p.Reachable(x1, y1, x2, y2)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no path from (%g,%g) to (%g,%g)", x1, y1, x2, y2)
	}
	fmt.Printf("reachable, path length %.2fm\n", dist)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
