package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/joeblew999/plat-draw/internal/config"
	"github.com/joeblew999/plat-draw/internal/feature"
	"github.com/joeblew999/plat-draw/internal/measure"
	"github.com/joeblew999/plat-draw/internal/server"
	"github.com/joeblew999/plat-draw/internal/units"
)

// Options defines all CLI flags and env vars for the draw server.
// Flags: --host, --port, --config
// Env vars: SERVICE_HOST, SERVICE_PORT, SERVICE_CONFIG
type Options struct {
	Host   string `doc:"Host to bind to" default:"0.0.0.0"`
	Port   int    `doc:"Port to listen on" short:"p" default:"8087"`
	Config string `doc:"Path to engine config YAML" default:""`
}

func newServer(opts *Options) *server.Server {
	engineCfg, err := config.Load(opts.Config)
	if err != nil {
		log.Printf("config: %v, using defaults", err)
	}
	return server.New(server.Config{
		Host:   opts.Host,
		Port:   fmt.Sprintf("%d", opts.Port),
		Engine: engineCfg,
	})
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		srv := newServer(opts)

		hooks.OnStart(func() {
			addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)
			displayHost := opts.Host
			if displayHost == "0.0.0.0" {
				displayHost = "localhost"
			}
			baseURL := fmt.Sprintf("http://%s:%d", displayHost, opts.Port)

			fmt.Println()
			fmt.Printf("plat-draw API server starting...\n")
			fmt.Printf("  Server:  %s\n", baseURL)
			fmt.Println()
			fmt.Printf("  Docs:    %s/docs\n", baseURL)
			fmt.Printf("  OpenAPI: %s/openapi.json\n", baseURL)
			fmt.Println()

			if err := http.ListenAndServe(addr, srv); err != nil {
				log.Fatalf("Server error: %v", err)
			}
		})
	})

	cli.Root().Use = "draw"
	cli.Root().Short = "Interactive geometry drawing and measurement engine"
	cli.Root().Version = "0.1.0"

	// spec subcommand: export OpenAPI spec
	specCmd := &cobra.Command{
		Use:   "spec",
		Short: "Export OpenAPI spec (JSON by default, --yaml for YAML)",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			srv := newServer(opts)
			spec := srv.OpenAPI()

			useYAML, _ := cmd.Flags().GetBool("yaml")

			var output []byte
			var err error
			if useYAML {
				output, err = yaml.Marshal(spec)
			} else {
				output, err = json.MarshalIndent(spec, "", "  ")
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error marshaling spec: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(string(output))
		}),
	}
	specCmd.Flags().BoolP("yaml", "y", false, "Output as YAML instead of JSON")
	cli.Root().AddCommand(specCmd)

	// measure subcommand: compute labels for a GeoJSON file offline
	measureCmd := &cobra.Command{
		Use:   "measure <file.geojson>",
		Short: "Compute measurement labels for a GeoJSON file",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			imperial, _ := cmd.Flags().GetBool("imperial")
			if err := measureFile(args[0], imperial); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		},
	}
	measureCmd.Flags().Bool("imperial", false, "Format with imperial units")
	cli.Root().AddCommand(measureCmd)

	cli.Run()
}

// measureFile loads a GeoJSON file into a throwaway store and prints the
// label set the engine would emit for it.
func measureFile(path string, imperial bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return fmt.Errorf("parsing geojson: %w", err)
	}

	bus := feature.NewEventBus()
	store := feature.NewStore(bus)
	measurements := measure.NewService(bus)

	for _, gf := range fc.Features {
		f := feature.Feature{
			ID:       store.NewID(),
			Kind:     feature.KindPlain,
			Geometry: gf.Geometry,
		}
		if v, _ := gf.Properties["isRadiusLine"].(bool); v {
			f.Kind = feature.KindRadiusLine
		} else if v, _ := gf.Properties["isGreatCircle"].(bool); v {
			f.Kind = feature.KindGreatCircle
		}
		store.Put(f)
		if _, err := measurements.Create(measure.Measurement{
			DrawFeatureID: f.ID,
			Type:          measurementType(f.Kind, gf.Geometry),
		}); err != nil {
			return err
		}
	}

	engine := measure.NewEngine(store, measurements, bus)
	if imperial {
		engine.DefaultUnits = units.Imperial
	}

	for _, l := range engine.Tick() {
		fmt.Printf("%-10s %-10s [%.5f, %.5f]  %s\n",
			l.FeatureID, l.Kind, l.Position[0], l.Position[1], l.Text)
	}
	return nil
}

func measurementType(kind feature.Kind, g orb.Geometry) measure.Type {
	switch kind {
	case feature.KindRadiusLine:
		return measure.TypeCircle
	case feature.KindGreatCircle:
		return measure.TypeDistance
	}
	if _, ok := g.(orb.Polygon); ok {
		return measure.TypeArea
	}
	return measure.TypeLine
}
