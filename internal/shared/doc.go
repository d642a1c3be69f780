// Package shared provides common utilities and test helpers used across
// the tabclean codebase. It is a home for functionality that does not
// belong to any specific engine or architectural layer.
//
// # Structure
//
// - testutil: log capture helpers used by engine and pipeline tests
//
// # Usage Guidelines
//
// This package should only contain:
//
// 1. Test utilities used by multiple packages
// 2. Generic helpers with no domain-specific logic
//
// It should NOT contain business logic or depend on the engine packages;
// everything under internal may import shared, never the reverse.
package shared
