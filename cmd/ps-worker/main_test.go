package main

import (
	"os"
	"testing"
)

func TestGetenv(t *testing.T) {
	os.Setenv("PS_TEST_VAR", "value")
	defer os.Unsetenv("PS_TEST_VAR")

	if got := getenv("PS_TEST_VAR", "default"); got != "value" {
		t.Errorf("getenv(set) = %q, want %q", got, "value")
	}
	if got := getenv("PS_TEST_UNSET", "default"); got != "default" {
		t.Errorf("getenv(unset) = %q, want %q", got, "default")
	}
}

func TestMustGetenvFatalsOnMissing(t *testing.T) {
	old := logFatal
	defer func() { logFatal = old }()

	called := false
	logFatal = func(string, ...interface{}) { called = true }

	_ = mustGetenv("PS_TEST_UNSET_REQUIRED")
	if !called {
		t.Error("mustGetenv did not call logFatal for a missing variable")
	}
}
