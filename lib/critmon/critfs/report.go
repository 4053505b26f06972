// Copyright 2026 The critfs Authors
// SPDX-License-Identifier: Apache-2.0

package critfs

import (
	"context"
	"io"
	"os"
	"sync"
	"syscall"

	"github.com/critfs/critfs/lib/critmon"
	gofuse "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// reportNode represents the critmon report file. Every Open creates
// an independent critmon session; content is generated per read, so
// the node reports zero size and forces direct IO to keep the kernel
// from clamping reads at that size.
type reportNode struct {
	gofuse.Inode
	options *Options
}

var _ gofuse.InodeEmbedder = (*reportNode)(nil)
var _ gofuse.NodeGetattrer = (*reportNode)(nil)
var _ gofuse.NodeOpener = (*reportNode)(nil)

func (n *reportNode) Getattr(ctx context.Context, f gofuse.FileHandle, out *fuse.AttrOut) syscall.Errno {
	attr := n.options.Reader.Stat()
	out.Mode = syscall.S_IFREG | uint32(attr.Mode.Perm())
	out.Size = uint64(attr.Size)
	return 0
}

func (n *reportNode) Open(ctx context.Context, flags uint32) (gofuse.FileHandle, uint32, syscall.Errno) {
	if flags&(syscall.O_WRONLY|syscall.O_RDWR) != 0 {
		return nil, 0, syscall.EACCES
	}

	session, err := n.options.Reader.Open(os.O_RDONLY)
	if err != nil {
		n.options.Logger.Error("opening report session", "error", err)
		return nil, 0, syscall.EIO
	}

	return &reportHandle{session: session}, fuse.FOPEN_DIRECT_IO, 0
}

// reportHandle drives one critmon session. The mutex serializes
// reads on a single handle (descriptors shared across fork or dup
// reach the same handle); independent opens never contend.
type reportHandle struct {
	mu      sync.Mutex
	session *critmon.Session
}

var _ gofuse.FileReader = (*reportHandle)(nil)
var _ gofuse.FileReleaser = (*reportHandle)(nil)

func (h *reportHandle) Read(ctx context.Context, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Under direct IO the kernel issues sequential offsets; the
	// session cursor is authoritative. Anything else is a seek on a
	// forward-only stream and reads as end of stream.
	if off != h.session.Offset() {
		return fuse.ReadResultData(nil), 0
	}

	n, err := h.session.Read(dest)
	switch {
	case err == io.EOF:
		return fuse.ReadResultData(nil), 0
	case err != nil:
		return nil, syscall.EIO
	}
	return fuse.ReadResultData(dest[:n]), 0
}

func (h *reportHandle) Release(ctx context.Context) syscall.Errno {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.session.Close(); err != nil {
		return syscall.EIO
	}
	return 0
}
