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

// Package progctx holds the lifetime of the program: a cancel-once context, the named goroutines
// that must finish before exit, and hooks to run on cancellation.
package progctx

import (
	"context"
	"os"
	"os/signal"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/robopack/packsize/logger"
)

type ProgCtx struct {
	context.Context
	wg           sync.WaitGroup
	cancel       context.CancelFunc
	routinesLock sync.Mutex
	routines     map[string]int
	deferred     []func()
	cause        error
}

// WaitCount returns the number of goroutines still to wait for.
func (ctx *ProgCtx) WaitCount() int {
	ctx.routinesLock.Lock()
	defer ctx.routinesLock.Unlock()

	total := 0
	for _, c := range ctx.routines {
		total += c
	}
	return total
}

// Routines returns the names of the goroutines still running, sorted.
func (ctx *ProgCtx) Routines() []string {
	ctx.routinesLock.Lock()
	defer ctx.routinesLock.Unlock()

	names := make([]string, 0, len(ctx.routines))
	for name, c := range ctx.routines {
		if c > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Cancel cancels the program context. Only the first call has effect: it records err as the
// exit cause and runs the deferred hooks in registration order.
func (ctx *ProgCtx) Cancel(err interface{}) {
	ctx.routinesLock.Lock()
	if ctx.Err() != nil {
		ctx.routinesLock.Unlock()
		return
	}
	ctx.cancel()
	deferred := ctx.deferred
	ctx.deferred = nil
	if e, ok := err.(error); ok {
		ctx.cause = e
	}
	ctx.routinesLock.Unlock()

	if ctx.cause != nil {
		logger.TraceError("program exit: %v", ctx.cause)
	} else {
		logger.Debugf("program exit: %v", err)
	}

	for _, f := range deferred {
		f()
	}
}

// Cause returns the error given to the first Cancel call, if it was an error.
func (ctx *ProgCtx) Cause() error {
	ctx.routinesLock.Lock()
	defer ctx.routinesLock.Unlock()
	return ctx.cause
}

func (ctx *ProgCtx) WaitAdd(name string, delta int) {
	ctx.routinesLock.Lock()
	ctx.routines[name] += delta
	ctx.routinesLock.Unlock()

	ctx.wg.Add(delta)
}

// WaitDone notifies that one goroutine of the given name has finished.
func (ctx *ProgCtx) WaitDone(name string) {
	ctx.routinesLock.Lock()
	defer ctx.routinesLock.Unlock()

	if ctx.routines[name] <= 0 {
		logger.Panicf("routine %s is not running, should not call WaitDone", name)
	}
	ctx.routines[name] -= 1
	ctx.wg.Done()
}

// Wait blocks until all goroutines have finished.
func (ctx *ProgCtx) Wait() {
	logger.Debugf("program context waiting for routines: %v", ctx.Routines())
	ctx.wg.Wait()
}

// Defer registers f to be called on the first Cancel.
func (ctx *ProgCtx) Defer(f func()) {
	ctx.routinesLock.Lock()
	defer ctx.routinesLock.Unlock()

	if ctx.Err() != nil {
		panic(errors.Errorf("cannot Defer after context is done"))
	}
	ctx.deferred = append(ctx.deferred, f)
}

// CancelOnSignal cancels the context when one of the signals arrives. The watching goroutine
// is registered as "signals" and ends together with the context.
func (ctx *ProgCtx) CancelOnSignal(sigs ...os.Signal) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, sigs...)

	ctx.WaitAdd("signals", 1)
	go func() {
		defer ctx.WaitDone("signals")
		defer signal.Stop(c)

		select {
		case sig := <-c:
			logger.Infof("signal received: %v", sig)
			ctx.Cancel(nil)
		case <-ctx.Done():
		}
	}()
}

// New creates a new ProgCtx from the parent context.
func New(parent context.Context) *ProgCtx {
	if parent == nil {
		parent = context.Background()
	}

	ctx, cancel := context.WithCancel(parent)
	return &ProgCtx{
		Context:  ctx,
		cancel:   cancel,
		routines: map[string]int{},
	}
}
