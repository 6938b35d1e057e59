package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sitepulse/packages/audit"
	"sitepulse/packages/domain"
	"sitepulse/packages/fetcher"
	"sitepulse/packages/providers"
)

const targetPage = `<!doctype html><html><head>
	<title>Austin Home Repair - Licensed Plumbing and HVAC</title>
	</head><body><h1>Repairs</h1><p>Call 512-555-0188</p><form></form></body></html>`

func testEngine() *audit.Engine {
	basic := fetcher.New(5*time.Second, time.Second, "TestBot/1.0")
	return audit.NewEngine(basic, nil, basic, providers.NoneAvailable())
}

func TestCreateAuditInline(t *testing.T) {
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(targetPage))
	}))
	defer site.Close()

	srv := httptest.NewServer(New(nil, testEngine()).Routes())
	defer srv.Close()

	body := strings.NewReader(`{"url":"` + site.URL + `","business_category":"home-services"}`)
	resp, err := http.Post(srv.URL+"/audits?wait=1", "application/json", body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var result domain.AuditResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	if result.HealthScore <= 0 || result.HealthScore > 100 {
		t.Errorf("health score out of range: %d", result.HealthScore)
	}
	if !result.Conversion.Present {
		t.Error("expected conversion extractor to run")
	}
}

func TestCreateAuditInlineUnreachableTarget(t *testing.T) {
	srv := httptest.NewServer(New(nil, testEngine()).Routes())
	defer srv.Close()

	body := strings.NewReader(`{"url":"http://127.0.0.1:1","business_category":"retail"}`)
	resp, err := http.Post(srv.URL+"/audits?wait=1", "application/json", body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502 for unreachable target, got %d", resp.StatusCode)
	}
}

func TestCreateAuditRejectsBadInput(t *testing.T) {
	srv := httptest.NewServer(New(nil, testEngine()).Routes())
	defer srv.Close()

	cases := []string{
		`not json`,
		`{"url":""}`,
		`{"url":"ftp://example.com"}`,
	}
	for _, body := range cases {
		resp, err := http.Post(srv.URL+"/audits", "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400 for %q, got %d", body, resp.StatusCode)
		}
	}
}

func TestHealthz(t *testing.T) {
	srv := httptest.NewServer(New(nil, testEngine()).Routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
