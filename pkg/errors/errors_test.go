package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "without underlying error",
			err:      New(CodeBudgetExceeded, "node count exceeded", true),
			expected: "[BUDGET_EXCEEDED] node count exceeded",
		},
		{
			name:     "with underlying error",
			err:      Wrap(CodeOracleFailure, "solver failed", errors.New("exit status 1"), true),
			expected: "[ORACLE_FAILURE] solver failed: exit status 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	underlying := errors.New("underlying error")
	err := Wrap(CodeOracleFailure, "analysis failed", underlying, true)

	unwrapped := err.Unwrap()
	assert.Equal(t, underlying, unwrapped)
}

func TestAppError_Is(t *testing.T) {
	err1 := New(CodeBudgetExceeded, "error 1", true)
	err2 := New(CodeBudgetExceeded, "error 2", true)
	err3 := New(CodeTimeout, "error 3", true)

	assert.True(t, errors.Is(err1, err2))
	assert.False(t, errors.Is(err1, err3))
}

func TestIsRecoverable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"budget exceeded", BudgetExceeded("max_sd_nodes", 1024), true},
		{"oracle failure", OracleFailure("trap-space-solver", "timeout"), true},
		{"timeout", Timeout("petri_net_unfolding"), true},
		{"inconsistent", Inconsistent("symbolic and unfolding disagree"), false},
		{"malformed input", MalformedInput("unexpected token"), false},
		{"standard error", errors.New("plain"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsRecoverable(tt.err))
		})
	}
}

func TestGetErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "app error",
			err:      New(CodeBudgetExceeded, "db error", true),
			expected: CodeBudgetExceeded,
		},
		{
			name:     "wrapped app error",
			err:      Wrap(CodeOracleFailure, "upload", errors.New("inner"), true),
			expected: CodeOracleFailure,
		},
		{
			name:     "standard error",
			err:      errors.New("standard error"),
			expected: CodeUnknown,
		},
		{
			name:     "nil error",
			err:      nil,
			expected: CodeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetErrorCode(tt.err))
		})
	}
}

func TestGetErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "app error",
			err:      New(CodeBudgetExceeded, "node cap hit", true),
			expected: "node cap hit",
		},
		{
			name:     "standard error",
			err:      errors.New("standard error"),
			expected: "standard error",
		},
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetErrorMessage(tt.err))
		})
	}
}

func TestConstructors(t *testing.T) {
	assert.Equal(t, CodeBudgetExceeded, GetErrorCode(BudgetExceeded("max_bdd_size", 16777216)))
	assert.Equal(t, CodeOracleFailure, GetErrorCode(OracleFailure("unfold", "bad exit code")))
	assert.Equal(t, CodeTimeout, GetErrorCode(Timeout("percolate")))
	assert.Equal(t, CodeInconsistent, GetErrorCode(Inconsistent("oracle mismatch")))
	assert.Equal(t, CodeMalformedInput, GetErrorCode(MalformedInput("bad .bnet line")))
}
