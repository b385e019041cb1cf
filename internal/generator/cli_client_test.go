package generator

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// fakeCLI writes a shell script that records its arguments and stdin, then
// prints output.
func fakeCLI(t *testing.T, output string) (path, dir string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in needs a POSIX shell")
	}

	dir = t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "output.json"), []byte(output), 0o644); err != nil {
		t.Fatal(err)
	}
	script := "#!/bin/sh\n" +
		"dir=$(dirname \"$0\")\n" +
		"printf '%s\\n' \"$@\" > \"$dir/args\"\n" +
		"cat > \"$dir/stdin\"\n" +
		"cat \"$dir/output.json\"\n"
	path = filepath.Join(dir, "claude")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path, dir
}

func TestCLIClient_Generate(t *testing.T) {
	out := `{"type":"result","is_error":false,"result":"\n1. Q?\nA. x\nB. y\nAnswer: A\n","usage":{"input_tokens":120,"output_tokens":45}}`
	path, dir := fakeCLI(t, out)

	resp, err := NewCLIClient(path).Generate(context.Background(), "SYSTEM", "Write 1 question")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "1. Q?\nA. x\nB. y\nAnswer: A" {
		t.Errorf("content = %q", resp.Content)
	}
	if resp.PromptTokens != 120 || resp.OutputTokens != 45 {
		t.Errorf("tokens = %d/%d, want 120/45", resp.PromptTokens, resp.OutputTokens)
	}

	args, _ := os.ReadFile(filepath.Join(dir, "args"))
	for _, want := range []string{"--print", "json", "--system-prompt", "SYSTEM"} {
		if !strings.Contains(string(args), want) {
			t.Errorf("CLI args missing %q:\n%s", want, args)
		}
	}
	stdin, _ := os.ReadFile(filepath.Join(dir, "stdin"))
	if string(stdin) != "Write 1 question" {
		t.Errorf("stdin = %q", stdin)
	}
}

func TestCLIClient_Errors(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
	}{
		{"reported error", `{"is_error":true,"result":"rate limited"}`, "rate limited"},
		{"empty result", `{"is_error":false,"result":"  "}`, "no quiz text"},
		{"not json", `1. Q?`, "decode claude CLI output"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, _ := fakeCLI(t, tt.output)
			_, err := NewCLIClient(path).Generate(context.Background(), "SYSTEM", "USER")
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestCLIClient_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewCLIClient("claude").Generate(ctx, "SYSTEM", "USER"); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
