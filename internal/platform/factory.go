package platform

import (
	"context"
	"fmt"

	"github.com/aretw0/introspection"

	"github.com/aretw0/argumentaire/pkg/core"
)

// Instance is a fully wired catalogue.
type Instance struct {
	Service    *core.Service
	Repository core.Repository
	Legacy     core.LegacySource
	DataDir    string
	Report     core.RebuildReport
}

// Component is anything that reports its state for observability.
type Component interface {
	introspection.Introspectable
	introspection.Component
}

// Components returns the parts of the instance that can be inspected,
// service first.
func (i *Instance) Components() []Component {
	out := []Component{i.Service}
	for _, c := range []any{i.Repository, i.Legacy} {
		if comp, ok := c.(Component); ok {
			out = append(out, comp)
		}
	}
	return out
}

// Open wires the store, the legacy source and the service, then runs the
// startup merge unless WithRebuild(false) is given.
//
//	inst, err := platform.Open(ctx, "./data", platform.WithAutoInit(true))
func Open(ctx context.Context, dataDir string, opts ...Option) (*Instance, error) {
	o := buildOptions(opts)

	repo, resolved, err := initRepository(dataDir, o)
	if err != nil {
		return nil, err
	}
	legacy := initLegacy(resolved, o)

	readOnly, _ := o.config["read_only"].(bool)
	serviceOpts := []core.ServiceOption{
		core.WithServiceLogger(o.logger),
		core.WithServiceReadOnly(readOnly),
		core.WithSeed(o.seed),
	}
	if legacy != nil {
		serviceOpts = append(serviceOpts, core.WithLegacySource(legacy))
	}

	inst := &Instance{
		Service:    core.NewService(repo, serviceOpts...),
		Repository: repo,
		Legacy:     legacy,
		DataDir:    resolved,
	}

	rebuild := true
	if val, ok := o.config["rebuild"].(bool); ok {
		rebuild = val
	}
	if rebuild {
		report, err := inst.Service.Rebuild(ctx)
		if err != nil {
			return nil, fmt.Errorf("startup rebuild: %w", err)
		}
		inst.Report = report
	}

	return inst, nil
}

// New is Open for callers that only need the service.
//
//	svc, err := argumentaire.New("./data", argumentaire.WithAutoInit(true))
func New(dataDir string, opts ...Option) (*core.Service, error) {
	inst, err := Open(context.Background(), dataDir, opts...)
	if err != nil {
		return nil, err
	}
	return inst.Service, nil
}
