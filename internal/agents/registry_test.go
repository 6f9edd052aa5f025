package agents

import (
	"reflect"
	"testing"
)

func TestRegistryDefinitions(t *testing.T) {
	tests := []struct {
		name         string
		command      string
		exitCommand  string
		capabilities Capabilities
	}{
		{
			name:        "claude",
			command:     "claude",
			exitCommand: "/exit",
			capabilities: Capabilities{
				CapturesSessionID: true,
				CapturesOAuth:     true,
				DetectsRateLimit:  true,
				SupportsResume:    true,
			},
		},
		{
			name:        "opencode",
			command:     "opencode",
			exitCommand: "/exit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, ok := Lookup(tt.name)
			if !ok {
				t.Fatalf("expected agent %q to be registered", tt.name)
			}
			if def.Name != tt.name {
				t.Fatalf("expected name %q, got %q", tt.name, def.Name)
			}
			if def.DefaultCommand != tt.command {
				t.Fatalf("expected command %q, got %q", tt.command, def.DefaultCommand)
			}
			if def.ExitCommand != tt.exitCommand {
				t.Fatalf("expected exit command %q, got %q", tt.exitCommand, def.ExitCommand)
			}
			if def.Capabilities != tt.capabilities {
				t.Fatalf("expected capabilities %#v, got %#v", tt.capabilities, def.Capabilities)
			}
		})
	}
}

func TestRegistryNormalizeAndLookup(t *testing.T) {
	def, ok := Lookup("  CLAUDE ")
	if !ok {
		t.Fatalf("expected normalized lookup to succeed")
	}
	if def.Name != Claude {
		t.Fatalf("expected claude agent, got %q", def.Name)
	}
	if Normalize("  OpenCode ") != "opencode" {
		t.Fatalf("unexpected normalization")
	}
}

func TestResolveDefaultsToClaude(t *testing.T) {
	def, err := Resolve("")
	if err != nil {
		t.Fatalf("expected empty name to resolve, got err=%v", err)
	}
	if def.Name != Claude {
		t.Fatalf("expected claude, got %q", def.Name)
	}

	if _, err := Resolve("cursor"); err == nil {
		t.Fatalf("expected unknown agent to be rejected")
	}
}

func TestResumeArgs(t *testing.T) {
	claude, _ := Lookup(Claude)
	if args := claude.ResumeArgs("abc-123"); !reflect.DeepEqual(args, []string{"--resume", "abc-123"}) {
		t.Fatalf("unexpected resume args: %#v", args)
	}
	if args := claude.ResumeArgs("  "); !reflect.DeepEqual(args, []string{"--continue"}) {
		t.Fatalf("unexpected continue args: %#v", args)
	}

	opencode, _ := Lookup(OpenCode)
	if args := opencode.ResumeArgs("abc-123"); args != nil {
		t.Fatalf("expected no resume args for opencode, got %#v", args)
	}
}
