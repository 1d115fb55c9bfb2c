// Package ir provides the core record types shared by every todoflux package.
//
// This package contains type definitions and their canonical encoding only.
// All other internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Actions are plain values, copied into every callback
//   - No float types in canonical JSON
//   - All JSON tags use snake_case
//   - Logical clocks (seq) only, never wall-clock timestamps
package ir
