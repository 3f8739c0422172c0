// Copyright 2024 The accountcache Authors
// This file is part of the accountcache library.
//
// The accountcache library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The accountcache library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the accountcache library. If not, see <http://www.gnu.org/licenses/>.

// Package debug wires the Go runtime debugging facilities and the logging
// setup to the command line.
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/pprof"
	"strings"
	"sync"

	"github.com/accountcache/accountcache/internal/flags"
	"github.com/accountcache/accountcache/log"
)

// Handler is the global debugging handler.
var Handler = &HandlerT{
	cpu:   profile{kind: "CPU profile"},
	trace: profile{kind: "Go trace"},
}

// HandlerT holds the state of the running profiles. Do not create values of
// this type, use the one in the Handler variable instead.
type HandlerT struct {
	mu    sync.Mutex
	cpu   profile
	trace profile
}

// profile is a runtime profile being streamed into a file.
type profile struct {
	kind string
	w    io.WriteCloser
	file string
}

func (p *profile) start(file string, begin func(io.Writer) error) error {
	if p.w != nil {
		return fmt.Errorf("%s already in progress", p.kind)
	}
	f, err := os.Create(expandHome(file))
	if err != nil {
		return err
	}
	if err := begin(f); err != nil {
		f.Close()
		return err
	}
	p.w, p.file = f, file
	log.Info("Started "+p.kind, "dump", file)
	return nil
}

func (p *profile) stop(end func()) error {
	end()
	if p.w == nil {
		return fmt.Errorf("%s not in progress", p.kind)
	}
	log.Info("Done writing "+p.kind, "dump", p.file)
	err := p.w.Close()
	p.w, p.file = nil, ""
	return err
}

// StartCPUProfile turns on CPU profiling, writing to the given file.
func (h *HandlerT) StartCPUProfile(file string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.cpu.start(file, pprof.StartCPUProfile)
}

// StopCPUProfile stops an ongoing CPU profile.
func (h *HandlerT) StopCPUProfile() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.cpu.stop(pprof.StopCPUProfile)
}

// expandHome expands a leading ~ to the home directory. Paths given through
// the path flags are already expanded; this covers direct callers.
func expandHome(p string) string {
	if strings.HasPrefix(p, "~/") || strings.HasPrefix(p, "~\\") {
		if home := flags.HomeDir(); home != "" {
			p = home + p[1:]
		}
	}
	return filepath.Clean(p)
}
