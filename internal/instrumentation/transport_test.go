package instrumentation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTransport_RecordsRequests(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/missing") {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	provider := newPrometheusProvider(t)
	client := &http.Client{Transport: NewTransport(upstream.Client().Transport, provider.Metrics())}

	resp, err := client.Get(upstream.URL + "/calendar/v3/calendars/primary/events")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	resp, err = client.Get(upstream.URL + "/calendar/v3/calendars/primary/events/missing")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}

	body := scrape(t, provider)
	for _, want := range []string{`resource="events"`, `operation="list"`, `operation="get"`, `code="404"`} {
		if !strings.Contains(body, want) {
			t.Errorf("scrape output should contain %q", want)
		}
	}
}

func TestTransport_TransportError(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	url := upstream.URL
	upstream.Close()

	transport := NewTransport(nil, &Metrics{})
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url+"/calendar/v3/colors", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := transport.RoundTrip(req); err == nil {
		t.Error("RoundTrip() should fail against a closed server")
	}
}
