package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/jcmexdev/statesaga/internal/action"
	"github.com/jcmexdev/statesaga/internal/interceptors"
	"github.com/jcmexdev/statesaga/internal/module"
	"github.com/jcmexdev/statesaga/internal/pkg/exception"
	"github.com/jcmexdev/statesaga/internal/pkg/locker"
	"github.com/jcmexdev/statesaga/internal/store"
)

type dashboardState struct {
	User      string   `json:"user"`
	Path      string   `json:"path"`
	Quotes    []string `json:"quotes"`
	Refreshes int      `json:"refreshes"`
}

// quoteFeed stands in for a remote service with a flaky connection.
type quoteFeed struct {
	failureRate float64
}

func newQuoteFeed(failureRate float64) *quoteFeed {
	return &quoteFeed{failureRate: failureRate}
}

func (f *quoteFeed) Latest(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(time.Duration(50+rand.IntN(200)) * time.Millisecond):
	}
	if rand.Float64() < f.failureRate {
		return "", exception.NetworkConnection("quote feed unreachable", nil)
	}
	return fmt.Sprintf("ACME %.2f", 100+rand.Float64()*10), nil
}

func newDashboard(slots locker.Locker, feed *quoteFeed) *module.Module[dashboardState] {
	m := module.New("dashboard", dashboardState{})

	m.On(action.Enter, func(_ context.Context, args ...any) error {
		props, _ := args[0].(map[string]any)
		user, _ := props["user"].(string)
		_, err := m.SetState(map[string]any{"user": user})
		return err
	}, interceptors.Log())

	m.On(action.Render, func(_ context.Context, args ...any) error {
		loc := args[0].(store.Location)
		_, err := m.Update(func(s *dashboardState) { s.Path = loc.URL() })
		return err
	}, interceptors.Log(), interceptors.PerformanceTrace())

	m.On(action.Tick, func(ctx context.Context, _ ...any) error {
		quote, err := feed.Latest(ctx)
		if err != nil {
			return err
		}
		_, err = m.Update(func(s *dashboardState) {
			s.Quotes = append(s.Quotes, quote)
			if len(s.Quotes) > 5 {
				s.Quotes = s.Quotes[len(s.Quotes)-5:]
			}
			s.Refreshes++
		})
		return err
	},
		interceptors.Loading("quotes"),
		interceptors.Mutex(interceptors.WithLocker(slots)),
		interceptors.Log(),
		interceptors.PerformanceTrace(),
		interceptors.SilentOnNetworkConnectionError(),
		interceptors.RetryOnNetworkConnectionError(interceptors.WithMaxRetries(2), interceptors.WithInterval(500*time.Millisecond)),
		interceptors.Interval(5*time.Second),
	)

	m.On(action.Destroy, func(context.Context, ...any) error {
		return m.SetNavigationPrevented(false)
	}, interceptors.Log())

	return m
}
