package main

import (
	"errors"
	"testing"
)

func validArgs() runArgs {
	return runArgs{
		warehouseID:  1,
		srcDBURL:     "postgres://localhost/odoo",
		stdoutFormat: "human",
	}
}

func assertConfigurationError(t *testing.T, args runArgs) {
	t.Helper()
	err := run(args)
	var confErr *ConfigurationError
	if !errors.As(err, &confErr) {
		t.Fatalf("expected *ConfigurationError, got %v (%T)", err, err)
	}
}

func TestRunRequiresWarehouse(t *testing.T) {
	args := validArgs()
	args.warehouseID = 0
	assertConfigurationError(t, args)
}

func TestRunRequiresSourceDBURL(t *testing.T) {
	args := validArgs()
	args.srcDBURL = ""
	assertConfigurationError(t, args)
}

func TestRunRequiresAnOutputTarget(t *testing.T) {
	args := validArgs()
	args.stdoutFormat = ""
	assertConfigurationError(t, args)
}

func TestRunRejectsUnknownStdoutFormat(t *testing.T) {
	args := validArgs()
	args.stdoutFormat = "csv"
	assertConfigurationError(t, args)
}

func TestRunRequiresSinkURLAndStmtTogether(t *testing.T) {
	args := validArgs()
	args.sinkDBURL = "postgres://localhost/sink"
	assertConfigurationError(t, args)

	args = validArgs()
	args.sinkStmt = "INSERT INTO rows VALUES ({product_id})"
	assertConfigurationError(t, args)
}

func TestRunRejectsMalformedSinkStatement(t *testing.T) {
	args := validArgs()
	args.sinkDBURL = "postgres://localhost/sink"
	args.sinkStmt = "SELECT 1"

	err := run(args)
	if err == nil {
		t.Fatal("expected a sink template parse error, got nil")
	}
	var confErr *ConfigurationError
	if errors.As(err, &confErr) {
		t.Fatalf("template errors should keep their own type, got %v", err)
	}
}

func TestIntSliceFlagCollectsRepeatedValues(t *testing.T) {
	var f intSliceFlag
	for _, v := range []string{"1", "2", "3"} {
		if err := f.Set(v); err != nil {
			t.Fatalf("Set(%q) error = %v", v, err)
		}
	}
	if len(f.values) != 3 || f.values[0] != 1 || f.values[2] != 3 {
		t.Fatalf("values = %v, want [1 2 3]", f.values)
	}
}

func TestIntSliceFlagRejectsNonInteger(t *testing.T) {
	var f intSliceFlag
	if err := f.Set("twelve"); err == nil {
		t.Fatal("expected an error for non-integer -product value")
	}
}
