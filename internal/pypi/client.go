// Package pypi is a thin client for a package-index metadata service. It
// exists so lessons can demonstrate user-defined functions that reach out to
// a live REST endpoint.
package pypi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/dataquill/tutorkit/internal/config"
	"github.com/dataquill/tutorkit/internal/logger"
)

type Client struct {
	base    string
	http    *http.Client
	limiter *rate.Limiter
	log     *logger.Logger
}

func NewClient(cfg config.PyPIConfig, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Nop()
	}
	rps := cfg.RPS
	if rps <= 0 {
		rps = 1
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Client{
		base:    strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		log:     log,
	}
}

// Project is the metadata payload for one package. Only the fields the
// lessons use are decoded; a response that does not decode into this shape
// is a fatal error for the caller.
type Project struct {
	Info struct {
		Name    string `json:"name"`
		Version string `json:"version"`
		Summary string `json:"summary"`
	} `json:"info"`
	Releases        map[string][]ReleaseFile `json:"releases"`
	Vulnerabilities []Vulnerability          `json:"vulnerabilities"`
}

type ReleaseFile struct {
	Filename   string `json:"filename"`
	Size       int64  `json:"size"`
	UploadTime string `json:"upload_time_iso_8601"`
	Yanked     bool   `json:"yanked"`
}

type Vulnerability struct {
	ID      string   `json:"id"`
	Aliases []string `json:"aliases"`
	FixedIn []string `json:"fixed_in"`
	Summary string   `json:"summary"`
}

// Project fetches metadata for one package by name.
func (c *Client) Project(ctx context.Context, name string) (*Project, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s/json", c.base, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("metadata request failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var p Project
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode metadata for %s: %w", name, err)
	}
	return &p, nil
}

// LatestVersion returns the version the index reports as current.
func (p *Project) LatestVersion() string {
	return p.Info.Version
}

// ReleaseCount returns the number of listed release versions.
func (p *Project) ReleaseCount() int {
	return len(p.Releases)
}

// VulnerabilityCount returns the number of published advisories.
func (p *Project) VulnerabilityCount() int {
	return len(p.Vulnerabilities)
}
