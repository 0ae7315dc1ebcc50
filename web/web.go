// Copyright (c) 2024, The Packsize Authors.
// All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are met:
// 1. Redistributions of source code must retain the above copyright
//    notice, this list of conditions and the following disclaimer.
// 2. Redistributions in binary form must reproduce the above copyright
//    notice, this list of conditions and the following disclaimer in the
//    documentation and/or other materials provided with the distribution.
// 3. Neither the name of the copyright holder nor the
//    names of its contributors may be used to endorse or promote products
//    derived from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
// LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
// CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
// SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
// CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
// ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.

// Package web serves sizing charts over HTTP and opens them in the user's browser.
package web

import (
	"context"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/robopack/packsize/logger"
	"github.com/robopack/packsize/progctx"
	"github.com/robopack/packsize/sizing"
	"github.com/robopack/packsize/visualize"
)

const (
	DefaultListenAddr = "localhost:8997"
	shutdownTimeout   = 2 * time.Second
)

// ChartServer serves the chart page of the most recent sizing result.
type ChartServer struct {
	listenAddr string

	mutex  sync.Mutex
	result *sizing.Result
	addr   string
	server *http.Server
}

func NewChartServer(listenAddr string) *ChartServer {
	return &ChartServer{listenAddr: listenAddr}
}

// SetResult replaces the result shown on the next page load.
func (cs *ChartServer) SetResult(res *sizing.Result) {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()
	cs.result = res
}

func (cs *ChartServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cs.mutex.Lock()
	res := cs.result
	cs.mutex.Unlock()

	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if res == nil {
		http.Error(w, "no sizing result yet, run 'size' first", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := visualize.RenderProfileChart(w, res); err != nil {
		logger.Errorf("render chart: %v", err)
	}
}

// Start listens and serves in the background until ctx is cancelled. Calling Start again while
// running returns the same URL.
func (cs *ChartServer) Start(ctx *progctx.ProgCtx) (string, error) {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	if cs.server != nil {
		return "http://" + cs.addr + "/", nil
	}

	ln, err := net.Listen("tcp", cs.listenAddr)
	if err != nil {
		return "", err
	}
	cs.addr = ln.Addr().String()
	server := &http.Server{Handler: cs}
	cs.server = server

	ctx.WaitAdd("webserver", 1)
	go func() {
		defer ctx.WaitDone("webserver")
		defer logger.Debugf("webserver exit.")

		if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
			logger.Errorf("webserver stopped unexpectedly: %v", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Infof("chart server listening on %s", cs.addr)
	return "http://" + cs.addr + "/", nil
}

// OpenBrowser opens url, a web address or a local file, in the user's default browser.
func OpenBrowser(url string) error {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start"}
	case "darwin":
		cmd = "open"
	default: // "linux", "freebsd", "openbsd", "netbsd"
		cmd = "xdg-open"
	}

	args = append(args, url)
	return exec.Command(cmd, args...).Start()
}
