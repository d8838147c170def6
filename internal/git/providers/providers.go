// Package providers imports every hosting service implementation so that
// their init() functions register them in provider.Registry.
//
// Importing this package in main.go keeps the entry point free of
// per-provider imports.
package providers

import (
	// Import all provider implementations to trigger their init() registration
	_ "github.com/verustcode/giteebridge/internal/git/gitee"
)
