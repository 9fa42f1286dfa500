package main

import "testing"

func TestSplitToolSpec(t *testing.T) {
	tests := []struct {
		name           string
		spec           string
		wantTool       string
		wantConstraint string
	}{
		{name: "bare tool name", spec: "node", wantTool: "node", wantConstraint: ""},
		{name: "tool with exact version", spec: "node@20.11.0", wantTool: "node", wantConstraint: "20.11.0"},
		{name: "tool with range constraint", spec: "node@^20", wantTool: "node", wantConstraint: "^20"},
		{name: "tool with latest keyword", spec: "yarn@latest", wantTool: "yarn", wantConstraint: "latest"},
		{name: "empty constraint after @", spec: "node@", wantTool: "node", wantConstraint: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool, constraint := splitToolSpec(tt.spec)
			if tool != tt.wantTool {
				t.Errorf("tool = %q, want %q", tool, tt.wantTool)
			}
			if constraint != tt.wantConstraint {
				t.Errorf("constraint = %q, want %q", constraint, tt.wantConstraint)
			}
		})
	}
}

func TestExitError(t *testing.T) {
	err := &exitError{code: 17}
	if err.Error() != "" {
		t.Errorf("exitError.Error() = %q, want empty string", err.Error())
	}
	if err.code != 17 {
		t.Errorf("exitError.code = %d, want 17", err.code)
	}
}
