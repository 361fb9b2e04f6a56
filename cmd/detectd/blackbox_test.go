//go:build !tensorflow && !gocv

package main

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func projectRootFromThisFile(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	// this file: <root>/cmd/detectd/blackbox_test.go
	return filepath.Dir(filepath.Dir(filepath.Dir(thisFile)))
}

func buildBinary(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("builds the detectd binary")
	}
	bin := filepath.Join(t.TempDir(), "detectd")
	cmd := exec.Command("go", "build", "-o", bin, "./cmd/detectd")
	cmd.Dir = projectRootFromThisFile(t)
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0")
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("go build failed: %v\n%s", err, out)
	}
	return bin
}

// runBinary runs bin with a scrubbed DETECTD_* environment and returns its
// exit code and output.
func runBinary(t *testing.T, bin string, args ...string) (int, string, string) {
	t.Helper()
	cmd := exec.Command(bin, args...)
	var env []string
	for _, kv := range os.Environ() {
		if !strings.HasPrefix(kv, "DETECTD_") {
			env = append(env, kv)
		}
	}
	cmd.Env = env
	cmd.Dir = t.TempDir()
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	code := 0
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		code = ee.ExitCode()
	} else if err != nil {
		t.Fatalf("run: %v", err)
	}
	return code, stdout.String(), stderr.String()
}

func TestBlackbox_StartupIsFatal(t *testing.T) {
	bin := buildBinary(t)
	lp, ip := writeLabelPair(t)
	graph := filepath.Join(t.TempDir(), "frozen_inference_graph.pb")
	if err := os.WriteFile(graph, []byte("not a graph"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Run("missing labels", func(t *testing.T) {
		code, _, stderr := runBinary(t, bin, "serve", "--addr", "127.0.0.1:0", "--labels", "nope", "--indexes", ip, "--graph", graph)
		if code == 0 || !strings.Contains(stderr, "category map") {
			t.Fatalf("code=%d stderr=%s", code, stderr)
		}
	})
	t.Run("runtime not built", func(t *testing.T) {
		code, _, stderr := runBinary(t, bin, "--addr", "127.0.0.1:0", "--labels", lp, "--indexes", ip, "--graph", graph)
		if code == 0 || !strings.Contains(stderr, "tensorflow") {
			t.Fatalf("code=%d stderr=%s", code, stderr)
		}
	})
}

func TestBlackbox_LabelsCommand(t *testing.T) {
	bin := buildBinary(t)
	lp, ip := writeLabelPair(t)
	code, stdout, stderr := runBinary(t, bin, "labels", "--labels", lp, "--indexes", ip)
	if code != 0 {
		t.Fatalf("code=%d stderr=%s", code, stderr)
	}
	if stdout != "1\tno_helmet\n2\tvest\n3\thelmet\n" {
		t.Fatalf("stdout=%q", stdout)
	}
}
