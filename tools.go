//go:build tools
// +build tools

// Package chatrelay pins go:generate tooling (mockgen) in go.mod.
package chatrelay

import (
	_ "go.uber.org/mock/mockgen"
)
