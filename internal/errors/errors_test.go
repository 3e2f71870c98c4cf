package errors

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodes(t *testing.T) {
	// Verify all expected error codes exist
	codes := []string{
		ErrConfig,
		ErrCollab,
		ErrParse,
		ErrSSH,
		ErrExec,
	}

	for _, code := range codes {
		assert.NotEmpty(t, code, "error code should not be empty")
	}

	// Verify codes are unique
	seen := make(map[string]bool)
	for _, code := range codes {
		assert.False(t, seen[code], "error code %q should be unique", code)
		seen[code] = true
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		message    string
		suggestion string
	}{
		{
			name:       "config error",
			code:       ErrConfig,
			message:    "Interval must be greater than zero",
			suggestion: "Pass a positive number of seconds, like -i 0.5",
		},
		{
			name:       "collaborator error",
			code:       ErrCollab,
			message:    "nvidia-smi not found",
			suggestion: "Check that the NVIDIA driver is installed and on PATH",
		},
		{
			name:       "parse error",
			code:       ErrParse,
			message:    "Unexpected scontrol output",
			suggestion: "Check the Slurm version on this machine",
		},
		{
			name:       "ssh error",
			code:       ErrSSH,
			message:    "Cannot connect to dgx-02",
			suggestion: "Check the machine is reachable: ssh dgx-02",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, tt.suggestion)

			require.NotNil(t, err)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.Equal(t, tt.suggestion, err.Suggestion)
			assert.Nil(t, err.Cause)
		})
	}
}

func TestErrorFormatting(t *testing.T) {
	err := New(ErrCollab, "docker not available", "Check docker is running")

	errStr := err.Error()
	assert.Contains(t, errStr, "✗")
	assert.Contains(t, errStr, "docker not available")
	assert.Contains(t, errStr, "Check docker is running")
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("exec: \"scontrol\": executable file not found in $PATH")
	err := Wrap(cause, "Couldn't query the Slurm queue")

	assert.Equal(t, ErrCollab, err.Code)
	assert.Contains(t, err.Error(), "Couldn't query the Slurm queue")
	assert.Contains(t, err.Error(), "executable file not found")
	assert.ErrorIs(t, err, cause)
}

func TestWrapWithCode(t *testing.T) {
	cause := errors.New("invalid syntax")
	err := WrapWithCode(cause, ErrParse,
		"Couldn't parse nvidia-smi output",
		"This usually means a driver/tool version mismatch")

	assert.Equal(t, ErrParse, err.Code)
	assert.ErrorIs(t, err, cause)
	assert.True(t, strings.Contains(err.Error(), "invalid syntax"))
}

func TestIsCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
		want bool
	}{
		{"nil error", nil, ErrConfig, false},
		{"matching code", New(ErrConfig, "bad interval", ""), ErrConfig, true},
		{"different code", New(ErrCollab, "no nvidia-smi", ""), ErrConfig, false},
		{"plain error", errors.New("plain"), ErrConfig, false},
		{"wrapped structured error", Wrap(errors.New("x"), "failed"), ErrCollab, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCode(tt.err, tt.code))
		})
	}
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(New(ErrCollab, "nvidia-smi gone", "")))
	assert.True(t, IsRetryable(New(ErrParse, "garbled output", "")))
	assert.True(t, IsRetryable(New(ErrSSH, "connection reset", "")))
	assert.True(t, IsRetryable(New(ErrExec, "scontrol exited 1", "")))
	assert.False(t, IsRetryable(New(ErrConfig, "interval <= 0", "")))
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(errors.New("plain")))
}
