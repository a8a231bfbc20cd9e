package cli

import (
	"context"
	"fmt"
	"unsafe"

	"github.com/matzehuels/spyglass/pkg/analysis"
	"github.com/matzehuels/spyglass/pkg/buildinfo"
)

// The demo values exercise every analyzer: structs with embedded and
// unexported fields, getters and methods, maps with non-literal keys,
// callables, channels, cycles and a namespace.

type demoZone struct {
	Region string
	Index  int
}

type demoMeta struct {
	Owner   string
	Version int
}

// Describe is promoted into demoService.
func (m demoMeta) Describe() string {
	return fmt.Sprintf("%s v%d", m.Owner, m.Version)
}

type demoService struct {
	demoMeta

	Name      string
	Ports     []int
	Labels    map[string]string
	Placement map[demoZone]bool
	Peers     []*demoService
	Parent    *demoService
	Handler   func(ctx context.Context, route string, args ...any) error
	Events    chan string
	Raw       unsafe.Pointer

	retries int
	weights [3]float64
}

func (s *demoService) GetName() string { return s.Name }

func (s *demoService) IsHealthy() bool { return s.retries < 3 }

func (s *demoService) HasPeers() bool { return len(s.Peers) > 0 }

func (s *demoService) Restart(ctx context.Context, force bool) error { return nil }

// demoRegistry is the variable the demo namespace exposes.
var demoRegistry []*demoService

// newDemo builds the demo value graph.
func newDemo() map[string]any {
	api := &demoService{
		demoMeta:  demoMeta{Owner: "platform", Version: 3},
		Name:      "api",
		Ports:     []int{80, 443},
		Labels:    map[string]string{"tier": "edge", "team": "platform"},
		Placement: map[demoZone]bool{{"eu-west", 1}: true, {"us-east", 2}: false},
		Handler:   func(context.Context, string, ...any) error { return nil },
		Events:    make(chan string, 4),
		retries:   1,
		weights:   [3]float64{0.5, 0.25, 0.25},
	}
	api.Events <- "started"
	worker := &demoService{Name: "worker", Parent: api, Ports: []int{9000}}
	api.Peers = []*demoService{worker, api}
	api.Raw = unsafe.Pointer(worker)
	demoRegistry = []*demoService{api, worker}

	globals := analysis.NewNamespace("cli").
		Var("demoRegistry", &demoRegistry).
		Const("Version", buildinfo.Version)

	return map[string]any{
		"service": api,
		"globals": globals,
		"matrix":  [][]int{{1, 2}, {3, 4}},
		"text":    "héllo, wörld",
		"nothing": nil,
		"ratio":   complex(1, -2),
	}
}
