package manifest

import (
	"testing"

	"github.com/flanksource/vx/internal/platform"
	"github.com/flanksource/vx/internal/version"
)

func TestLoadBuiltinProviders(t *testing.T) {
	reg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	for _, name := range []string{"node", "npm", "npx", "python", "uv", "go", "rust", "java", "yarn", "pnpm"} {
		if _, ok := reg.Resolve(name); !ok {
			t.Errorf("expected runtime %q to be registered", name)
		}
	}

	if _, ok := reg.Resolve("nodejs"); !ok {
		t.Errorf("expected alias %q to resolve", "nodejs")
	}
}

func TestYarnDependsOnNodeUnderV1(t *testing.T) {
	reg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	yarn, ok := reg.Resolve("yarn")
	if !ok {
		t.Fatal("yarn runtime not found")
	}
	if len(yarn.Constraints) != 1 {
		t.Fatalf("expected yarn to declare one constraint rule, got %+v", yarn.Constraints)
	}
	rule := yarn.Constraints[0]
	if len(rule.Requires) != 1 || rule.Requires[0].Runtime != "node" {
		t.Errorf("expected yarn's constraint rule to require node, got %+v", rule.Requires)
	}

	v1, err := version.Parse("1.22.19")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	v2, err := version.Parse("2.4.3")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	plat := platform.Platform{OS: "linux", Arch: "x64"}
	if matched, err := rule.Matches(v1, plat); err != nil || !matched {
		t.Errorf("expected rule to match yarn 1.x, matched=%v err=%v", matched, err)
	}
	if matched, err := rule.Matches(v2, plat); err != nil || matched {
		t.Errorf("expected rule not to match yarn 2.x, matched=%v err=%v", matched, err)
	}
}

func TestDetectCycleRejectsSelfReference(t *testing.T) {
	all := map[string]RuntimeSpec{
		"a": {Name: "a", Dependencies: []RuntimeDependency{{Runtime: "b"}}},
		"b": {Name: "b", Dependencies: []RuntimeDependency{{Runtime: "a"}}},
	}
	err := detectCycle([]RuntimeSpec{all["a"]}, all)
	if err == nil {
		t.Fatal("expected cycle to be detected")
	}
}

func TestDetectCycleIgnoresOptionalEdge(t *testing.T) {
	all := map[string]RuntimeSpec{
		"a": {Name: "a", Dependencies: []RuntimeDependency{{Runtime: "b", Optional: true}}},
		"b": {Name: "b", Dependencies: []RuntimeDependency{{Runtime: "a", Optional: true}}},
	}
	if err := detectCycle([]RuntimeSpec{all["a"]}, all); err != nil {
		t.Errorf("optional cycle should not fail validation: %v", err)
	}
}

func TestSuggestSimilar(t *testing.T) {
	reg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{name: "one-letter typo", query: "nod", want: "node"},
		{name: "extra letter", query: "nodee", want: "node"},
		{name: "alias typo", query: "nodjs", want: "nodejs"},
		{name: "nothing close", query: "zzzzzzzzzzzzzzzzzzzz", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := reg.SuggestSimilar(tt.query); got != tt.want {
				t.Errorf("SuggestSimilar(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}
