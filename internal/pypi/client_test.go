package pypi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dataquill/tutorkit/internal/config"
	"github.com/dataquill/tutorkit/internal/pypi"
)

const projectFixture = `{
	"info": {"name": "requests", "version": "2.31.0", "summary": "HTTP for Humans"},
	"releases": {
		"2.30.0": [{"filename": "requests-2.30.0.tar.gz", "size": 110000, "upload_time_iso_8601": "2023-05-03T14:45:15Z"}],
		"2.31.0": [
			{"filename": "requests-2.31.0-py3-none-any.whl", "size": 62574, "upload_time_iso_8601": "2023-05-22T15:12:42Z"},
			{"filename": "requests-2.31.0.tar.gz", "size": 110142, "upload_time_iso_8601": "2023-05-22T15:12:44Z", "yanked": false}
		]
	},
	"vulnerabilities": [
		{"id": "GHSA-j8r2-6x86-q33q", "aliases": ["CVE-2023-32681"], "fixed_in": ["2.31.0"], "summary": "Proxy-Authorization leak"}
	]
}`

func testClient(t *testing.T, handler http.HandlerFunc) *pypi.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return pypi.NewClient(config.PyPIConfig{
		BaseURL: srv.URL,
		Timeout: 5 * time.Second,
		RPS:     100,
		Burst:   100,
	}, nil)
}

func TestProject(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/requests/json" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(projectFixture))
	})

	p, err := c.Project(context.Background(), "requests")
	if err != nil {
		t.Fatalf("Project: %v", err)
	}

	if p.LatestVersion() != "2.31.0" {
		t.Errorf("LatestVersion = %s", p.LatestVersion())
	}
	if p.ReleaseCount() != 2 {
		t.Errorf("ReleaseCount = %d, want 2", p.ReleaseCount())
	}
	if p.VulnerabilityCount() != 1 {
		t.Errorf("VulnerabilityCount = %d, want 1", p.VulnerabilityCount())
	}

	files := p.Releases["2.31.0"]
	if len(files) != 2 || files[0].Filename != "requests-2.31.0-py3-none-any.whl" {
		t.Fatalf("release files not decoded: %+v", files)
	}

	v := p.Vulnerabilities[0]
	if len(v.Aliases) != 1 || v.Aliases[0] != "CVE-2023-32681" {
		t.Errorf("aliases = %v", v.Aliases)
	}
	if len(v.FixedIn) != 1 || v.FixedIn[0] != "2.31.0" {
		t.Errorf("fixed_in = %v", v.FixedIn)
	}
}

func TestProjectNotFound(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	if _, err := c.Project(context.Background(), "no-such-package"); err == nil {
		t.Fatal("404 should be an error")
	}
}

func TestProjectTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)
	c := pypi.NewClient(config.PyPIConfig{
		BaseURL: srv.URL,
		Timeout: 100 * time.Millisecond,
		RPS:     100,
		Burst:   100,
	}, nil)

	start := time.Now()
	_, err := c.Project(context.Background(), "requests")
	if err == nil {
		t.Fatal("a stalled metadata service should time out")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("lookup not bounded by the client timeout; took %v", elapsed)
	}
}

func TestProjectMalformedPayload(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"info": `))
	})
	if _, err := c.Project(context.Background(), "requests"); err == nil {
		t.Fatal("malformed metadata should propagate as an error")
	}
}
