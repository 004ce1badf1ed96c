// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Veloforge

package equipment

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/veloforge/rouleur/pkg/link"
)

// Options carries the variant-specific resolution parameters: the
// transport to reach the machine through, what to look for during
// discovery, and the resistance range the caller wants enforced.
type Options struct {
	Transport link.Transport
	Identity  link.Identity

	// MaxLevel caps SetLevel. Zero means the machine class default.
	MaxLevel int

	// Logger receives protocol-level events. Nil disables logging.
	Logger *log.Logger
}

func (o Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.New(io.Discard, "", 0)
}

// Builder constructs one machine class from resolved options. The
// returned instance is bound to a discovered device but not connected.
type Builder func(ctx context.Context, opts Options) (Equipment, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Builder{}
)

// Register adds a machine class under a type tag, replacing any
// previous registration. Adding a variant never touches the core.
func Register(tag string, b Builder) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[tag] = b
}

func init() {
	Register("28", newIconsole0028Bike)
	Register("ftms", newFTMSBike)
	Register("debug", newDebugBike)
}

// Resolve maps a type tag plus options to a concrete Equipment
// instance, performing whatever discovery the machine class requires.
// Unknown tags fail with ErrUnsupportedType before any discovery;
// cancellation surfaces as ctx.Err(); an exhausted scan fails with
// ErrDiscoveryFailed. Nothing is left open on failure.
func Resolve(ctx context.Context, tag string, opts Options) (Equipment, error) {
	registryMu.RLock()
	builder, ok := registry[tag]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, tag)
	}
	return builder(ctx, opts)
}

// discover runs transport discovery for a builder, normalizing the
// error classes the factory contract promises.
func discover(ctx context.Context, opts Options) (link.Candidate, error) {
	if opts.Transport == nil {
		return link.Candidate{}, fmt.Errorf("%w: no transport configured", ErrDiscoveryFailed)
	}
	c, err := opts.Transport.Discover(ctx, opts.Identity)
	if err != nil {
		if ctx.Err() != nil {
			return link.Candidate{}, ctx.Err()
		}
		return link.Candidate{}, fmt.Errorf("%w: %v", ErrDiscoveryFailed, err)
	}
	return c, nil
}
