// Package odoo detects the Odoo major version a source database runs and
// dispatches to the matching source adapter.
package odoo

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/sjorsgeenen/odoo-stockgraph/internal/adapter"
)

// Major is an Odoo major version number, e.g. 15 for "15.0+e". It is an
// alias of adapter.Major: adapters report their own major version, and
// this package only adds detection and dispatch on top of that type.
type Major = adapter.Major

// MissingBaseVersionError means ir_module_module had no usable row for the
// 'base' module, so the Odoo version could not be determined at all.
type MissingBaseVersionError struct{}

func (e *MissingBaseVersionError) Error() string {
	return "could not find base module version in ir_module_module"
}

// InvalidBaseVersionError means the 'base' module's latest_version value
// didn't parse as a leading dot-separated integer.
type InvalidBaseVersionError struct {
	Value string
}

func (e *InvalidBaseVersionError) Error() string {
	return fmt.Sprintf("could not parse Odoo major version from %q", e.Value)
}

// DetectVersion reads ir_module_module.latest_version for the 'base'
// module and returns its leading dot-segment as a major version number.
func DetectVersion(ctx context.Context, db *sql.DB) (Major, error) {
	var latestVersion sql.NullString
	err := db.QueryRowContext(ctx, `
		SELECT latest_version
		FROM ir_module_module
		WHERE name = 'base'
	`).Scan(&latestVersion)
	if err == sql.ErrNoRows || (err == nil && !latestVersion.Valid) {
		return 0, &MissingBaseVersionError{}
	}
	if err != nil {
		return 0, fmt.Errorf("detecting Odoo version: %w", err)
	}

	segment, _, _ := strings.Cut(latestVersion.String, ".")
	major, parseErr := strconv.Atoi(segment)
	if parseErr != nil {
		return 0, &InvalidBaseVersionError{Value: latestVersion.String}
	}
	return Major(major), nil
}

// UnsupportedVersionError means no source adapter exists for the detected
// Odoo major version.
type UnsupportedVersionError struct {
	Major Major
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported Odoo major version %s (only 15 is currently implemented)", e.Major)
}
