// Package source turns a target (URL, file path or "-" for stdin) into
// normalized article text.
package source

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Source yields normalized raw text for a target.
type Source interface {
	Text(ctx context.Context, target string) (string, error)
}

// Func adapts a plain function to Source.
type Func func(ctx context.Context, target string) (string, error)

func (f Func) Text(ctx context.Context, target string) (string, error) { return f(ctx, target) }

var (
	// ErrNoTarget is returned when the target is blank.
	ErrNoTarget = errors.New("no target given")
	// ErrNoSource is returned when no source handles the target kind.
	ErrNoSource = errors.New("no source configured for target")
)

// Kind classifies a target.
type Kind int

const (
	KindFile Kind = iota
	KindURL
	KindStdin
)

// Classify reports what kind of target s is. Anything that is not "-" and
// has no http(s) scheme is treated as a file path.
func Classify(s string) Kind {
	s = strings.TrimSpace(s)
	if s == "-" {
		return KindStdin
	}
	if u, err := url.Parse(s); err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		return KindURL
	}
	return KindFile
}

// Router dispatches targets to the matching source. URLs go to Browser when
// Render is set and a Browser is configured, otherwise to HTTP.
type Router struct {
	HTTP    Source
	Browser Source
	File    Source
	Render  bool
}

func (r *Router) Text(ctx context.Context, target string) (string, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return "", ErrNoTarget
	}
	var s Source
	switch Classify(target) {
	case KindURL:
		s = r.HTTP
		if r.Render && r.Browser != nil {
			s = r.Browser
		}
	default:
		s = r.File
	}
	if s == nil {
		return "", fmt.Errorf("%w: %s", ErrNoSource, target)
	}
	return s.Text(ctx, target)
}
