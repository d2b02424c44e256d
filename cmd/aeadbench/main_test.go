package main

import (
	"bytes"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiihann/aeadbench/config"
)

func execute(args ...string) error {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	return root.Execute()
}

func TestSelectModeSingle(t *testing.T) {
	for _, m := range modes {
		root := newRootCmd()
		require.NoError(t, root.Flags().Set(m.flag, "true"))

		got, err := selectMode(root)
		require.NoError(t, err, "selectMode(--%s)", m.flag)
		assert.Equal(t, m.flag, got.flag)
	}
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no mode", nil, "exactly one mode flag"},
		{"two modes", []string{"--clean-all", "--run-hardware-default"}, "mutually exclusive"},
		{"help with a mode", []string{"--help", "--run-hardware-extended"}, "--help, --run-hardware-extended"},
		{"short help with a mode", []string{"-h", "--clean-all"}, "mutually exclusive"},
		{"unknown flag", []string{"--run-everything"}, "unknown flag"},
		{"positional", []string{"--clean-all", "extra"}, "unexpected arguments"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := execute(tt.args...)

			var uerr *usageError
			require.ErrorAs(t, err, &uerr)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestHelpAlone(t *testing.T) {
	for _, arg := range []string{"--help", "-h"} {
		var out bytes.Buffer

		root := newRootCmd()
		root.SetArgs([]string{arg})
		root.SetOut(&out)
		root.SetErr(io.Discard)

		require.NoError(t, root.Execute(), arg)
		assert.Contains(t, out.String(), "Exactly one mode flag", arg)
		assert.Contains(t, out.String(), "--run-hardware-extended", arg)
	}
}

func TestModeFlagsRegistered(t *testing.T) {
	want := []string{
		"clean-all", "clean-software", "clean-hardware",
		"compile-software",
		"compile-hardware-sw", "compile-hardware-hw", "compile-hardware-hw-emu",
		"run-software-default", "run-software-extended",
		"run-hardware-default", "run-hardware-extended",
	}

	root := newRootCmd()
	for _, name := range want {
		assert.NotNil(t, root.Flags().Lookup(name), "missing mode flag --%s", name)
	}
	assert.Len(t, modes, len(want))
}

func TestBuildRunnerIgnoresBenchmarkTimeout(t *testing.T) {
	a := &app{
		cfg:    config.Default(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	assert.Equal(t, 30*time.Minute, a.runner().Timeout)
	assert.Zero(t, a.buildRunner().Timeout, "make must not inherit the benchmark timeout")

	a.cfg.BuildTimeout = 6 * time.Hour
	assert.Equal(t, 6*time.Hour, a.buildRunner().Timeout)
	assert.Equal(t, 30*time.Minute, a.runner().Timeout)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger, err := newLogger(&buf, "json", false)
	require.NoError(t, err)
	logger.Info("hello")
	logger.Debug("hidden")

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("{")), buf.String())
	assert.NotContains(t, buf.String(), "hidden")

	buf.Reset()
	logger, err = newLogger(&buf, "auto", true)
	require.NoError(t, err)
	logger.Debug("shown")

	assert.Contains(t, buf.String(), `"msg":"shown"`, "auto on a non-terminal logs json at debug")

	_, err = newLogger(&buf, "xml", false)
	assert.Error(t, err)
}

func TestReportRejectsArgs(t *testing.T) {
	assert.Error(t, execute("report", "extra"))
}
