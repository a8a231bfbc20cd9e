package dump_test

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/spyglass/pkg/config"
	"github.com/matzehuels/spyglass/pkg/dump"
	"github.com/matzehuels/spyglass/pkg/render/text"
)

type Server struct {
	Name  string
	Ports []int
}

func exampleConfig() config.Config {
	cfg := config.Default()
	// Keep the examples independent of the machine's free memory.
	cfg.Limits.MaxMemoryMB = 0
	cfg.Limits.MinHeadroomMB = 0
	return cfg
}

func Example() {
	d, err := dump.New(exampleConfig(), text.New(), dump.WithLogger(log.New(io.Discard)))
	if err != nil {
		panic(err)
	}

	res := d.Analyze(context.Background(), &Server{Name: "api", Ports: []int{80, 443}}, "srv")
	fmt.Print(res.Output)
	// Output:
	// srv: *dump_test.Server  // srv
	//   Name: string = "api" (length=3 runes=3 encoding=utf-8)  // srv.Name
	//   Ports: []int (length=2 cap=2)  // srv.Ports
	//     0: int = 80  // srv.Ports[0]
	//     1: int = 443  // srv.Ports[1]
}

func Example_depthLimit() {
	cfg := exampleConfig()
	cfg.Limits.MaxDepth = 0
	cfg.Codegen.Enabled = false

	d, err := dump.New(cfg, text.New(), dump.WithLogger(log.New(io.Discard)))
	if err != nil {
		panic(err)
	}

	res := d.Analyze(context.Background(), Server{Name: "api", Ports: []int{80}}, "srv")
	fmt.Print(res.Output)
	fmt.Println("limits:", res.Stats.Limits)
	// Output:
	// srv: dump_test.Server
	//   Name: string = "api" (length=3 runes=3 encoding=utf-8)
	//   Ports: []int ⋯ limit reached (nesting limit)
	// limits: 1
}
