// Package executor implements the smart-executor orchestration from
// the design: resolve a tool and its transitive runtime dependencies,
// install whatever is missing concurrently (bounded by
// internal/concurrency), refresh shims, compose the child environment, and
// hand off to the resolved binary. Generalizes the predecessor's cmd/run.go
// executeScript (one fixed scripting runtime, auto-detected from a file
// extension, installed serially via pkg/runtime, then run with os/exec) to
// an arbitrary tool name with a full dependency graph, concurrent install
// dispatch, and process replacement instead of a captured-output subprocess.
package executor

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/flanksource/vx/internal/concurrency"
	"github.com/flanksource/vx/internal/installer"
	"github.com/flanksource/vx/internal/lockfile"
	"github.com/flanksource/vx/internal/manifest"
	"github.com/flanksource/vx/internal/platform"
	"github.com/flanksource/vx/internal/resolver"
	"github.com/flanksource/vx/internal/shim"
	"github.com/flanksource/vx/internal/versionsource"
	"github.com/flanksource/vx/internal/vxerrors"
	"github.com/flanksource/vx/internal/vxpath"
)

// Request is the minimal contract the design requires the CLI wrapper hand
// to the core: the tool, its arguments, and the flags that change core
// behavior. Help text, completion, and colour policy stay in the wrapper.
type Request struct {
	Tool            string
	Constraint      string
	Args            []string
	WorkingDir      string
	UseSystemPath   bool
	SkipAutoInstall bool
	Force           bool
	DryRun          bool
}

// Plan is what Prepare returns before any process is spawned: the resolved
// install plan, the tool actually being invoked, and the composed
// environment and argv — used directly by Run, and by callers that want the
// resolution without executing it (with DryRun set, nothing is installed or
// shimmed). The info and which commands call the resolver directly instead.
type Plan struct {
	Resolved *resolver.Plan
	Target   resolver.ResolvedTool
	Env      []string
	Argv     []string
}

// Executor wires together the manifest registry, resolver, installer, and
// shim manager needed to carry out a Run. Constructed once per process and
// threaded through explicitly no-process-globals design.
type Executor struct {
	registry  *manifest.Registry
	resolver  *resolver.Resolver
	installer *installer.Installer
	shims     *shim.Manager
}

// New builds an Executor rooted at paths, backed by registry and versions.
// lock may be nil, meaning "no lock consultation" (see resolver.New).
func New(paths *vxpath.Paths, registry *manifest.Registry, versions *versionsource.Registry, lock *lockfile.LockFile) *Executor {
	return &Executor{
		registry:  registry,
		resolver:  resolver.New(registry, lock, versions, paths),
		installer: installer.New(paths),
		shims:     shim.New(paths),
	}
}

// Prepare runs resolution, installation, and environment composition
// without executing anything.
func (e *Executor) Prepare(ctx context.Context, req Request) (*Plan, error) {
	if req.UseSystemPath {
		path, err := exec.LookPath(req.Tool)
		if err != nil {
			return nil, vxerrors.ToolNotFound(req.Tool)
		}
		target := resolver.ResolvedTool{Tool: req.Tool, Executable: path, FromHostPath: true}
		return &Plan{
			Target: target,
			Env:    os.Environ(),
			Argv:   append([]string{path}, req.Args...),
		}, nil
	}

	plan, err := e.resolver.Resolve(ctx, []resolver.ToolRequest{{Tool: req.Tool, Constraint: req.Constraint, Force: req.Force}})
	if err != nil {
		return nil, err
	}

	if !req.SkipAutoInstall && !req.DryRun {
		if err := e.installMissing(ctx, plan); err != nil {
			return nil, err
		}
		if err := e.refreshShims(plan); err != nil {
			return nil, err
		}
	}

	target, ok := findTool(plan, req.Tool)
	if !ok {
		return nil, vxerrors.ToolNotFound(req.Tool)
	}

	env := buildEnv(plan)
	argv := append([]string{target.Executable}, target.CommandPrefix...)
	argv = append(argv, req.Args...)
	return &Plan{Resolved: plan, Target: target, Env: env, Argv: argv}, nil
}

// Run executes req end to end: resolve, install, shim, then hand off to the
// real binary. On Unix the current process is replaced via syscall.Exec; on
// Windows a child is spawned and its exit code propagated. DryRun stops
// after Prepare and never spawns anything.
func (e *Executor) Run(ctx context.Context, req Request) (int, error) {
	p, err := e.Prepare(ctx, req)
	if err != nil {
		return vxerrors.ExitCode(vxerrors.KindOf(err)), err
	}
	if req.DryRun {
		return 0, nil
	}
	return execProcess(ctx, p.Target.Executable, p.Argv[1:], p.Env, req.WorkingDir)
}

func findTool(plan *resolver.Plan, tool string) (resolver.ResolvedTool, bool) {
	for _, rt := range plan.Order {
		if rt.Tool == tool {
			return rt, true
		}
	}
	return resolver.ResolvedTool{}, false
}

// installMissing drives C7 for every plan entry that needs installation, in
// topological waves: everything in one wave installs concurrently (bounded
// by concurrency.DefaultParallelism), and a wave only starts once every
// earlier wave — i.e. every dependency — has reported success.
func (e *Executor) installMissing(ctx context.Context, plan *resolver.Plan) error {
	for _, layer := range topologicalLayers(plan) {
		tasks := make([]func(context.Context) error, 0, len(layer))
		for _, rt := range layer {
			rt := rt
			if !rt.NeedsInstall {
				continue
			}
			tasks = append(tasks, func(ctx context.Context) error {
				spec, ok := e.registry.Resolve(rt.Tool)
				if !ok {
					return vxerrors.ToolNotFound(rt.Tool)
				}
				_, err := e.installer.Install(ctx, installer.Config{
					Tool:        rt.Tool,
					Version:     rt.Version,
					Spec:        spec,
					DownloadURL: rt.DownloadURL,
					ChecksumURL: rt.ChecksumURL,
					Force:       rt.Force,
				})
				return err
			})
		}
		if len(tasks) == 0 {
			continue
		}
		if err := concurrency.RunBounded(ctx, concurrency.DefaultParallelism(), tasks); err != nil {
			return err
		}
	}
	return nil
}

// refreshShims points every plan entry's shim (skipping bundled and
// host-PATH tools, which have no install of their own to point at) at its
// resolved executable.
func (e *Executor) refreshShims(plan *resolver.Plan) error {
	for _, rt := range plan.Order {
		if rt.FromHostPath || strings.HasPrefix(rt.Source, "bundled:") {
			continue
		}
		spec, ok := e.registry.Resolve(rt.Tool)
		if !ok {
			continue
		}
		if err := e.shims.Switch(shim.Target{
			Tool:       rt.Tool,
			Executable: spec.Executable,
			Path:       rt.Executable,
		}); err != nil {
			return err
		}
	}
	return nil
}

// topologicalLayers groups plan.Order into install waves: every entry in
// layer N depends only on entries in layers < N. plan.Order is already
// topologically sorted, so layer membership is just each entry's longest
// dependency chain length.
func topologicalLayers(plan *resolver.Plan) [][]resolver.ResolvedTool {
	depth := make(map[string]int, len(plan.Order))
	maxDepth := 0
	for _, rt := range plan.Order {
		d := 0
		for _, dep := range rt.Dependencies {
			if dd := depth[dep] + 1; dd > d {
				d = dd
			}
		}
		depth[rt.Tool] = d
		if d > maxDepth {
			maxDepth = d
		}
	}
	layers := make([][]resolver.ResolvedTool, maxDepth+1)
	for _, rt := range plan.Order {
		d := depth[rt.Tool]
		layers[d] = append(layers[d], rt)
	}
	return layers
}

// buildEnv copies the parent environment, prepends every resolved tool's bin
// directory to PATH in dependency order (plan.Order is already topologically
// sorted, deps before dependents), and applies each runtime's declared env
// var additions.
func buildEnv(plan *resolver.Plan) []string {
	var binDirs []string
	extra := map[string]string{}
	for _, rt := range plan.Order {
		if rt.Executable != "" {
			binDirs = append(binDirs, filepath.Dir(rt.Executable))
		}
		for k, v := range rt.EnvVars {
			extra[k] = v
		}
	}

	pathVar := "PATH"
	if platform.Current().IsWindows() {
		pathVar = "Path"
	}
	newPath := filepath.SplitList(os.Getenv(pathVar))
	newPath = append(append([]string{}, binDirs...), newPath...)

	out := make([]string, 0, len(os.Environ())+len(extra)+1)
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, pathVar+"=") {
			continue
		}
		out = append(out, kv)
	}
	out = append(out, pathVar+"="+strings.Join(newPath, string(os.PathListSeparator)))

	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, k+"="+extra[k])
	}
	return out
}
