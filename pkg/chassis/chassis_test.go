package chassis

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"io"
	"log/slog"
	"net"
	"net/http"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGenerateSelfSignedCert(t *testing.T) {
	cert, err := GenerateSelfSignedCert([]string{"api.local", "10.0.0.1"}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateSelfSignedCert: %v", err)
	}
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		t.Fatal(err)
	}
	if len(leaf.DNSNames) != 1 || leaf.DNSNames[0] != "api.local" {
		t.Errorf("DNSNames = %v", leaf.DNSNames)
	}
	if len(leaf.IPAddresses) != 1 || !leaf.IPAddresses[0].Equal(net.ParseIP("10.0.0.1")) {
		t.Errorf("IPAddresses = %v", leaf.IPAddresses)
	}
	if _, err := GenerateSelfSignedCert(nil, time.Hour); err == nil {
		t.Error("expected error without hosts")
	}
}

func TestNew_TLSModes(t *testing.T) {
	if _, err := New(Config{TLSMode: "bogus", Logger: quietLogger()}); err == nil {
		t.Error("expected error for unknown TLS mode")
	}
	if _, err := New(Config{TLSMode: TLSFile, Logger: quietLogger()}); err == nil {
		t.Error("expected error for file mode without cert paths")
	}
}

func serve(t *testing.T, mode string) (string, *Server) {
	t.Helper()
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, r.Proto)
	})
	s, err := New(Config{TLSMode: mode, Handler: h, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	go s.Serve(ctx, ln)
	t.Cleanup(func() {
		cancel()
		s.Stop(context.Background())
	})
	return ln.Addr().String(), s
}

func get(t *testing.T, client *http.Client, url string) (*http.Response, string) {
	t.Helper()
	var (
		resp *http.Response
		err  error
	)
	// The server goroutine may not be accepting yet.
	for i := 0; i < 50; i++ {
		if resp, err = client.Get(url); err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func TestServe_Plain(t *testing.T) {
	addr, _ := serve(t, TLSOff)
	resp, body := get(t, http.DefaultClient, "http://"+addr+"/")
	if body != "HTTP/1.1" {
		t.Errorf("proto = %q", body)
	}
	if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing security headers")
	}
}

func TestServe_DevTLS(t *testing.T) {
	addr, _ := serve(t, TLSDev)
	client := &http.Client{Transport: &http.Transport{
		TLSClientConfig:   &tls.Config{InsecureSkipVerify: true},
		ForceAttemptHTTP2: true,
	}}
	_, body := get(t, client, "https://"+addr+"/")
	if body != "HTTP/2.0" {
		t.Errorf("proto = %q, want HTTP/2.0", body)
	}
}
