package pypi

import (
	"context"
	"database/sql/driver"
	"fmt"

	"github.com/dataquill/tutorkit/internal/engine"
)

// RegisterUDFs makes the client callable from lesson SQL:
//
//	latest_release(name)      -> version string
//	vulnerability_count(name) -> integer
//
// Both are volatile: the index may change between calls.
func (c *Client) RegisterUDFs() error {
	if err := engine.RegisterVolatileUDF("latest_release", 1, c.latestRelease); err != nil {
		return err
	}
	return engine.RegisterVolatileUDF("vulnerability_count", 1, c.vulnerabilityCount)
}

// The driver invokes scalar functions without a caller context, so a step's
// deadline cannot reach these lookups; the client's own timeout is the only
// bound on them.
func (c *Client) lookupContext() (context.Context, context.CancelFunc) {
	if c.http.Timeout > 0 {
		return context.WithTimeout(context.Background(), c.http.Timeout)
	}
	return context.Background(), func() {}
}

func (c *Client) latestRelease(args []driver.Value) (driver.Value, error) {
	name, err := stringArg(args)
	if err != nil {
		return nil, err
	}
	ctx, cancel := c.lookupContext()
	defer cancel()
	p, err := c.Project(ctx, name)
	if err != nil {
		return nil, err
	}
	return p.LatestVersion(), nil
}

func (c *Client) vulnerabilityCount(args []driver.Value) (driver.Value, error) {
	name, err := stringArg(args)
	if err != nil {
		return nil, err
	}
	ctx, cancel := c.lookupContext()
	defer cancel()
	p, err := c.Project(ctx, name)
	if err != nil {
		return nil, err
	}
	return int64(p.VulnerabilityCount()), nil
}

func stringArg(args []driver.Value) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("expected one argument, got %d", len(args))
	}
	switch v := args[0].(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("expected a package name, got %T", args[0])
	}
}
