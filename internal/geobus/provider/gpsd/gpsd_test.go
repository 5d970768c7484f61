// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package gpsd

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stratoberry/go-gpsd"

	"github.com/wneessen/trailnav/internal/geobus"
	"github.com/wneessen/trailnav/internal/logger"
)

const (
	testLat = 40.7185
	testLon = -74.0025
)

func TestNew(t *testing.T) {
	t.Run("new GPSd provider succeeds", func(t *testing.T) {
		provider := New("", time.Second, logger.Discard())
		if provider == nil {
			t.Fatal("expected provider to be non-nil")
		}
		if provider.addr != DefaultAddr {
			t.Errorf("expected default address %s, got %s", DefaultAddr, provider.addr)
		}
	})
}

func TestProvider_Name(t *testing.T) {
	provider := New("", time.Second, logger.Discard())
	if !strings.EqualFold(provider.Name(), name) {
		t.Errorf("expected provider name to be %s, got %s", name, provider.Name())
	}
}

func TestFixFromTPV(t *testing.T) {
	tests := []struct {
		name string
		tpv  *gpsd.TPVReport
		ok   bool
		acc  float64
	}{
		{"nil report", nil, false, 0},
		{"no fix", &gpsd.TPVReport{Mode: gpsd.NoFix, Lat: testLat, Lon: testLon}, false, 0},
		{"2D fix with error estimates", &gpsd.TPVReport{Mode: gpsd.Mode2D, Lat: testLat, Lon: testLon, Epx: 3, Epy: 4}, true, 5},
		{"3D fix fallback accuracy", &gpsd.TPVReport{Mode: gpsd.Mode3D, Lat: testLat, Lon: testLon}, true, fallbackAccuracy3DFix},
		{"2D fix fallback accuracy", &gpsd.TPVReport{Mode: gpsd.Mode2D, Lat: testLat, Lon: testLon}, true, fallbackAccuracy2DFix},
		{"out of range coordinates", &gpsd.TPVReport{Mode: gpsd.Mode3D, Lat: 91, Lon: testLon}, false, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fix, ok := fixFromTPV(tc.tpv)
			if ok != tc.ok {
				t.Fatalf("expected ok to be %t, got %t", tc.ok, ok)
			}
			if !ok {
				return
			}
			if fix.Lat != testLat || fix.Lon != testLon {
				t.Errorf("expected %f,%f, got %f,%f", testLat, testLon, fix.Lat, fix.Lon)
			}
			if math.Abs(fix.Accuracy-tc.acc) > 1e-9 {
				t.Errorf("expected accuracy to be %f, got %f", tc.acc, fix.Accuracy)
			}
		})
	}
}

func TestProvider_LookupStream(t *testing.T) {
	t.Run("connection fails on first run but then succeeds", func(t *testing.T) {
		runCount := 0
		synctest.Test(t, func(t *testing.T) {
			ctx, cancel := context.WithCancel(t.Context())
			defer cancel()

			provider := New("", time.Second*2, logger.Discard())
			defer provider.Close()
			provider.period = time.Millisecond * 10
			provider.watchFn = func(ctx context.Context, _ string, emit func(*gpsd.TPVReport)) error {
				if runCount == 0 {
					runCount++
					return errors.New("intentionally failing")
				}
				emit(&gpsd.TPVReport{Mode: gpsd.NoFix, Lat: 1, Lon: 2})
				emit(&gpsd.TPVReport{Mode: gpsd.Mode3D, Lat: 1, Lon: 2, Epx: 3, Epy: 4})
				<-ctx.Done()
				return nil
			}

			out := provider.LookupStream(ctx)
			var event geobus.Event
			select {
			case e := <-out:
				event = e
				cancel()
			case <-ctx.Done():
				t.Fatalf("context done before result: %v", ctx.Err())
			}
			synctest.Wait()

			if event.Kind != geobus.KindFix {
				t.Fatalf("expected fix event, got %s", event.Kind)
			}
			if event.Fix.Lat != 1 || event.Fix.Lon != 2 {
				t.Errorf("expected fix 1,2, got %f,%f", event.Fix.Lat, event.Fix.Lon)
			}
			if event.Fix.Accuracy != 5 {
				t.Errorf("expected accuracy to be 5, got %f", event.Fix.Accuracy)
			}
			if event.Source != provider.Name() {
				t.Errorf("expected source to be %s, got %s", provider.Name(), event.Source)
			}
		})
	})
	t.Run("fixes are throttled to the update interval", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			ctx, cancel := context.WithCancel(t.Context())
			defer cancel()

			provider := New("", time.Second*2, logger.Discard())
			defer provider.Close()
			provider.watchFn = func(ctx context.Context, _ string, emit func(*gpsd.TPVReport)) error {
				for i := range 5 {
					emit(&gpsd.TPVReport{Mode: gpsd.Mode3D, Lat: float64(i), Lon: 0})
					time.Sleep(time.Second)
				}
				<-ctx.Done()
				return nil
			}

			out := provider.LookupStream(ctx)
			var lats []float64
			for e := range out {
				lats = append(lats, e.Fix.Lat)
				if len(lats) == 3 {
					cancel()
				}
			}
			want := []float64{0, 2, 4}
			if len(lats) != len(want) {
				t.Fatalf("expected %d fixes, got %v", len(want), lats)
			}
			for i := range want {
				if lats[i] != want[i] {
					t.Errorf("expected fix %d to have lat %f, got %f", i, want[i], lats[i])
				}
			}
		})
	})
	t.Run("repeated subscriptions share a single gpsd connection", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			var dials, live, maxLive atomic.Int32
			provider := New("", time.Second, logger.Discard())
			provider.watchFn = func(ctx context.Context, _ string, _ func(*gpsd.TPVReport)) error {
				dials.Add(1)
				if n := live.Add(1); n > maxLive.Load() {
					maxLive.Store(n)
				}
				defer live.Add(-1)
				<-ctx.Done()
				return nil
			}

			for range 5 {
				ctx, cancel := context.WithCancel(t.Context())
				out := provider.LookupStream(ctx)
				synctest.Wait()
				cancel()
				for range out {
				}
			}

			if got := dials.Load(); got != 1 {
				t.Errorf("expected a single dial, got %d", got)
			}
			if got := maxLive.Load(); got != 1 {
				t.Errorf("expected at most one live connection, got %d", got)
			}
			if got := live.Load(); got != 1 {
				t.Errorf("expected the connection to stay open between subscriptions, got %d", got)
			}

			if err := provider.Close(); err != nil {
				t.Fatalf("failed to close provider: %s", err)
			}
			if got := live.Load(); got != 0 {
				t.Errorf("expected no live connection after close, got %d", got)
			}
		})
	})
	t.Run("reports are only delivered while subscribed", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			emitters := make(chan func(*gpsd.TPVReport), 1)
			provider := New("", time.Second, logger.Discard())
			defer provider.Close()
			provider.watchFn = func(ctx context.Context, _ string, emit func(*gpsd.TPVReport)) error {
				emitters <- emit
				<-ctx.Done()
				return nil
			}

			ctx, cancel := context.WithCancel(t.Context())
			out := provider.LookupStream(ctx)
			emit := <-emitters
			emit(&gpsd.TPVReport{Mode: gpsd.Mode3D, Lat: 1, Lon: 1})
			if e := <-out; e.Fix.Lat != 1 {
				t.Errorf("expected fix with lat 1, got %f", e.Fix.Lat)
			}
			cancel()
			for range out {
			}

			emit(&gpsd.TPVReport{Mode: gpsd.Mode3D, Lat: 2, Lon: 2})

			ctx, cancel = context.WithCancel(t.Context())
			defer cancel()
			out = provider.LookupStream(ctx)
			emit(&gpsd.TPVReport{Mode: gpsd.Mode3D, Lat: 3, Lon: 3})
			if e := <-out; e.Fix.Lat != 3 {
				t.Errorf("expected fix with lat 3, got %f", e.Fix.Lat)
			}
		})
	})
	t.Run("streams opened after close end immediately", func(t *testing.T) {
		provider := New("", time.Second, logger.Discard())
		if err := provider.Close(); err != nil {
			t.Fatalf("failed to close provider: %s", err)
		}
		if _, ok := <-provider.LookupStream(t.Context()); ok {
			t.Error("expected stream to be closed")
		}
	})
}
