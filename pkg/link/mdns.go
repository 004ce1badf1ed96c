// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Veloforge

package link

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
)

// Bridges advertise themselves over mDNS.
const (
	bridgeService = "_gatt-bridge._tcp"
	bridgeDomain  = "local."
	defaultBrowse = 10 * time.Second
	bridgeWSPath  = "/gatt"
	txtKeyRSSI    = "rssi"
)

// discoverBridge browses for GATT bridges and returns the first one
// matching the identity's name filter and signal threshold. It unwinds
// cleanly when ctx is cancelled.
func discoverBridge(ctx context.Context, id Identity) (Candidate, error) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return Candidate{}, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	timeout := id.Timeout
	if timeout == 0 {
		timeout = defaultBrowse
	}
	browseCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry, 8)
	if err := resolver.Browse(browseCtx, bridgeService, bridgeDomain, entries); err != nil {
		return Candidate{}, fmt.Errorf("mDNS browse failed: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return Candidate{}, ctx.Err()
		case <-browseCtx.Done():
			// Timeout elapsed without a match. Distinguish caller
			// cancellation from scan expiry.
			if ctx.Err() != nil {
				return Candidate{}, ctx.Err()
			}
			return Candidate{}, fmt.Errorf("%w: no bridge within %s", ErrNoDevice, timeout)
		case entry, ok := <-entries:
			if !ok {
				if ctx.Err() != nil {
					return Candidate{}, ctx.Err()
				}
				return Candidate{}, fmt.Errorf("%w: browse ended", ErrNoDevice)
			}
			c, match := matchEntry(entry, id)
			if match {
				return c, nil
			}
		}
	}
}

// matchEntry applies the identity's filters to one advertised bridge.
func matchEntry(entry *zeroconf.ServiceEntry, id Identity) (Candidate, bool) {
	if id.NameFilter != "" && !strings.Contains(strings.ToLower(entry.Instance), strings.ToLower(id.NameFilter)) {
		return Candidate{}, false
	}

	rssi := txtRSSI(entry.Text)
	if id.MinRSSI != 0 && rssi != 0 && rssi < id.MinRSSI {
		return Candidate{}, false
	}

	host := strings.TrimSuffix(entry.HostName, ".")
	if len(entry.AddrIPv4) > 0 {
		host = entry.AddrIPv4[0].String()
	}

	return Candidate{
		Name: entry.Instance,
		Addr: fmt.Sprintf("ws://%s:%d%s", host, entry.Port, bridgeWSPath),
		RSSI: rssi,
	}, true
}

// txtRSSI extracts the advertised signal strength from TXT records
// ("rssi=-62"). Returns 0 when absent or unparseable.
func txtRSSI(txt []string) int {
	for _, record := range txt {
		key, value, found := strings.Cut(record, "=")
		if !found || key != txtKeyRSSI {
			continue
		}
		rssi, err := strconv.Atoi(value)
		if err != nil {
			return 0
		}
		return rssi
	}
	return 0
}
