package harness

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiihann/aeadbench/sweep"
)

// helperEnv selects the behaviour of the re-executed test binary.
const helperEnv = "AEADBENCH_TEST_HELPER"

func TestMain(m *testing.M) {
	if mode := os.Getenv(helperEnv); mode != "" {
		os.Exit(helperMain(mode, os.Args[1:]))
	}

	os.Exit(m.Run())
}

// helperMain stands in for the benchmark executables.
func helperMain(mode string, args []string) int {
	switch mode {
	case "exit":
		code, _ := strconv.Atoi(args[0])
		fmt.Fprintln(os.Stderr, "helper failing on purpose")
		return code
	case "sleep":
		time.Sleep(time.Minute)
		return 0
	case "bench":
		fs := flag.NewFlagSet("bench", flag.ContinueOnError)
		size := fs.Int("len", 0, "")
		num := fs.Int("num", 0, "")
		runs := fs.Int("runs", 0, "")
		dataPath := fs.String("data_path", "", "")
		if err := fs.Parse(args); err != nil {
			return 2
		}

		var buf bytes.Buffer
		buf.WriteString("run, time in microseconds, throughput (GB/s)\n")
		for i := range *runs {
			fmt.Fprintf(&buf, "%d, %d, %.3f\n", i, 100+i, 1.5)
		}

		name := fmt.Sprintf("%saes128gcm_%d_%d.csv", *dataPath, *num, *size)
		if err := os.WriteFile(name, buf.Bytes(), 0o644); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	default:
		return 3
	}
}

func helperInvocation(t *testing.T, mode string, args ...string) Invocation {
	t.Helper()
	t.Setenv(helperEnv, mode)

	return Invocation{
		Kind: KindBenchmark,
		Path: os.Args[0],
		Args: args,
		Dir:  t.TempDir(),
	}
}

func TestExecRunnerSuccess(t *testing.T) {
	cfg := testConfig(t)
	cfg.SoftwareBinary = os.Args[0]
	t.Setenv(helperEnv, "bench")

	require.NoError(t, os.MkdirAll(cfg.ResultDir(sweep.Software), 0o755))

	inv := BenchmarkInvocation(cfg, sweep.Config{
		Backend: sweep.Software,
		MsgSize: 64,
		MsgNum:  128,
		Runs:    3,
	})
	inv.Dir = t.TempDir()

	r := NewExecRunner(time.Minute, nil, nil, discardLogger())
	require.NoError(t, r.Run(context.Background(), inv))

	data, err := os.ReadFile(filepath.Join(cfg.ResultDir(sweep.Software), "aes128gcm_128_64.csv"))
	require.NoError(t, err, "result file not written")
	assert.Equal(t, 4, strings.Count(string(data), "\n"))
}

func TestExecRunnerExitCode(t *testing.T) {
	inv := helperInvocation(t, "exit", "7")

	var stderr bytes.Buffer
	r := NewExecRunner(time.Minute, nil, &stderr, discardLogger())
	err := r.Run(context.Background(), inv)

	var runErr *RunError
	require.ErrorAs(t, err, &runErr)
	assert.Equal(t, 7, runErr.ExitCode)
	assert.False(t, runErr.TimedOut)
	assert.Contains(t, runErr.Stderr, "failing on purpose")
	assert.Contains(t, stderr.String(), "failing on purpose", "stderr not streamed")
}

func TestExecRunnerTimeout(t *testing.T) {
	inv := helperInvocation(t, "sleep")

	r := NewExecRunner(200*time.Millisecond, nil, nil, discardLogger())

	start := time.Now()
	err := r.Run(context.Background(), inv)

	var runErr *RunError
	require.ErrorAs(t, err, &runErr)
	assert.True(t, runErr.TimedOut, "err = %v", runErr)
	assert.Less(t, time.Since(start), 30*time.Second)
}

func TestExecRunnerMissingBinary(t *testing.T) {
	inv := Invocation{Kind: KindBuild, Path: "./does-not-exist", Dir: t.TempDir()}

	err := NewExecRunner(0, nil, nil, discardLogger()).Run(context.Background(), inv)

	var runErr *RunError
	require.ErrorAs(t, err, &runErr)
	assert.Equal(t, -1, runErr.ExitCode)
}

func TestTailBuffer(t *testing.T) {
	tb := &tailBuffer{limit: 4}

	fmt.Fprint(tb, "abc")
	fmt.Fprint(tb, "defg")

	assert.Equal(t, "defg", tb.String())
}
