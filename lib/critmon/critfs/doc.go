// Copyright 2026 The critfs Authors
// SPDX-License-Identifier: Apache-2.0

// Package critfs exposes the critmon report as a read-only FUSE
// filesystem: a single flat file named "critmon" whose content is
// generated on each read from the live per-CPU maxima. Opening the
// file with any write access fails with EACCES; reading it drains
// (and resets) the maxima through a per-handle critmon session.
package critfs
