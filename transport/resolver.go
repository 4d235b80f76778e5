package transport

import (
	"context"
	"fmt"
	"net/url"
)

// Resolver yields the base address a call is sent to.
type Resolver interface {
	Resolve(ctx context.Context, path string) (string, error)
}

// StaticBase always resolves to the same base address.
type StaticBase string

func (b StaticBase) Resolve(ctx context.Context, path string) (string, error) {
	return string(b), nil
}

// ResolveURL resolves an operation path against a base address the way a browser
// resolves a relative URL: "/eins" against "https://host/api/" gives "https://host/eins",
// "eins" gives "https://host/api/eins".
func ResolveURL(base, path string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", base, err)
	}
	if !b.IsAbs() || b.Host == "" {
		return "", fmt.Errorf("invalid base URL %q", base)
	}
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", path, err)
	}
	return b.ResolveReference(ref).String(), nil
}
