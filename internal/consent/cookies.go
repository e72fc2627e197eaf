package consent

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type Cookie struct {
	Name   string
	Domain string
	Path   string
	Secure bool
}

// URL rebuilds the address a cookie is scoped to.
func (c Cookie) URL() string {
	scheme := "http"
	if c.Secure {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s%s", scheme, c.Domain, c.Path)
}

// CookieJar is the browser-context cookie store.
type CookieJar interface {
	Cookies(ctx context.Context) ([]Cookie, error)
	DeleteCookie(ctx context.Context, c Cookie) error
}

// SweepCookies deletes every cookie whose name is not essential and
// returns the number deleted. Per-cookie failures are logged and skipped.
func (s *Scanner) SweepCookies(ctx context.Context, jar CookieJar) (int, error) {
	cookies, err := jar.Cookies(ctx)
	if err != nil {
		return 0, fmt.Errorf("list cookies: %w", err)
	}

	deleted := 0
	for _, c := range cookies {
		if c.Name == "" || s.patterns.IsEssentialCookie(c.Name) {
			continue
		}
		if err := jar.DeleteCookie(ctx, c); err != nil {
			s.log.Warn("could not remove cookie", zap.String("name", c.Name), zap.String("url", c.URL()), zap.Error(err))
			continue
		}
		s.log.Debug("removed cookie", zap.String("name", c.Name), zap.String("url", c.URL()))
		deleted++
	}
	return deleted, nil
}
