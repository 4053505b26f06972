// Copyright 2026 The critfs Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for critfs.
//
// Configuration is loaded from a single YAML file specified by:
//   - CRITFS_CONFIG environment variable, or
//   - --config flag passed to the command
//
// There are no fallbacks or automatic discovery. Absent fields take
// the values from Default().
package config
