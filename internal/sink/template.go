// Package sink implements the optional SQL sink: a user-supplied
// statement template with named placeholders, rewritten to positional
// binds and executed once per output row inside one transaction.
package sink

import (
	"fmt"
	"regexp"
	"strings"
)

// SupportedPlaceholders lists the nine placeholder names this template
// language accepts, for use in error messages.
const SupportedPlaceholders = "{product_id}, {warehouse_id}, {quantity}, {reserved}, {incoming}, {outgoing}, {buildable}, {free_immediately}, {virtual_available}"

// Placeholder is one of the nine output fields a sink statement can bind.
type Placeholder int

const (
	ProductID Placeholder = iota
	WarehouseID
	Quantity
	Reserved
	Incoming
	Outgoing
	Buildable
	FreeImmediately
	VirtualAvailable
)

func parsePlaceholder(name string) (Placeholder, bool) {
	switch name {
	case "product_id":
		return ProductID, true
	case "warehouse_id":
		return WarehouseID, true
	case "quantity":
		return Quantity, true
	case "reserved":
		return Reserved, true
	case "incoming":
		return Incoming, true
	case "outgoing":
		return Outgoing, true
	case "buildable":
		return Buildable, true
	case "free_immediately":
		return FreeImmediately, true
	case "virtual_available":
		return VirtualAvailable, true
	default:
		return 0, false
	}
}

// ErrEmptyPlaceholder means the template contained a bare "{}" .
type ErrEmptyPlaceholder struct{}

func (*ErrEmptyPlaceholder) Error() string { return "empty placeholder '{}' in --sink-stmt" }

// ErrUnknownPlaceholder names a placeholder this template language
// doesn't recognize.
type ErrUnknownPlaceholder struct {
	Name string
}

func (e *ErrUnknownPlaceholder) Error() string {
	return fmt.Sprintf("unknown placeholder '{%s}' in --sink-stmt (supported placeholders: %s)", e.Name, SupportedPlaceholders)
}

// ErrUnmatchedBrace means a '}' appeared outside any matched placeholder.
type ErrUnmatchedBrace struct{}

func (*ErrUnmatchedBrace) Error() string { return "unmatched closing brace in --sink-stmt" }

// ErrUnclosedPlaceholder means a '{' was never closed.
type ErrUnclosedPlaceholder struct{}

func (*ErrUnclosedPlaceholder) Error() string { return "unclosed placeholder in --sink-stmt" }

// ErrNoPlaceholders means the template had no "{name}" at all, so there's
// nothing to bind a row to.
type ErrNoPlaceholders struct{}

func (*ErrNoPlaceholders) Error() string {
	return fmt.Sprintf("--sink-stmt must include at least one placeholder (%s)", SupportedPlaceholders)
}

var placeholderRegex = regexp.MustCompile(`\{([^}]*)\}`)

// Template is a sink statement rewritten to positional binds, plus the
// ordered list of fields each bind position pulls from an output row.
type Template struct {
	SQL          string
	Placeholders []Placeholder
}

// ParseTemplate rewrites every "{name}" in input to "$1", "$2", … in
// match order, validating each name against the nine supported
// placeholders and rejecting malformed braces.
func ParseTemplate(input string) (Template, error) {
	var sql strings.Builder
	var placeholders []Placeholder
	lastMatchEnd := 0

	for _, loc := range placeholderRegex.FindAllStringSubmatchIndex(input, -1) {
		matchStart, matchEnd := loc[0], loc[1]
		nameStart, nameEnd := loc[2], loc[3]
		name := strings.TrimSpace(input[nameStart:nameEnd])

		sql.WriteString(input[lastMatchEnd:matchStart])

		if name == "" {
			return Template{}, &ErrEmptyPlaceholder{}
		}

		placeholder, ok := parsePlaceholder(name)
		if !ok {
			return Template{}, &ErrUnknownPlaceholder{Name: name}
		}

		placeholders = append(placeholders, placeholder)
		sql.WriteByte('$')
		sql.WriteString(fmt.Sprintf("%d", len(placeholders)))

		lastMatchEnd = matchEnd
	}
	sql.WriteString(input[lastMatchEnd:])

	nonPlaceholder := placeholderRegex.ReplaceAllString(input, "")
	if strings.Contains(nonPlaceholder, "}") {
		return Template{}, &ErrUnmatchedBrace{}
	}
	if strings.Contains(nonPlaceholder, "{") {
		return Template{}, &ErrUnclosedPlaceholder{}
	}

	if len(placeholders) == 0 {
		return Template{}, &ErrNoPlaceholders{}
	}

	return Template{SQL: sql.String(), Placeholders: placeholders}, nil
}
