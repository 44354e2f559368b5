package httpserve

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/rickgao/tfr-chart/internal/config"
)

func TestNewServer(t *testing.T) {
	cfg := config.ServerConfig{
		Host:         "127.0.0.1",
		Port:         8080,
		ReadTimeout:  time.Second,
		WriteTimeout: 2 * time.Second,
		IdleTimeout:  3 * time.Second,
	}
	srv := NewServer(cfg, http.NotFoundHandler())

	if srv.Addr != "127.0.0.1:8080" {
		t.Errorf("Addr = %q, want %q", srv.Addr, "127.0.0.1:8080")
	}
	if srv.ReadTimeout != time.Second || srv.WriteTimeout != 2*time.Second || srv.IdleTimeout != 3*time.Second {
		t.Errorf("timeouts = %v/%v/%v", srv.ReadTimeout, srv.WriteTimeout, srv.IdleTimeout)
	}
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "ok")
	})
	srv := &http.Server{Handler: handler}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, srv, ln, slog.Default()) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "ok" {
		t.Errorf("body = %q, want %q", body, "ok")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(ShutdownTimeout):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestListenAndServe_AddressInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	cfg := config.ServerConfig{Host: "127.0.0.1", Port: ln.Addr().(*net.TCPAddr).Port}
	err = ListenAndServe(context.Background(), cfg, http.NotFoundHandler(), nil)
	if err == nil {
		t.Fatal("ListenAndServe() error = nil, want listen error")
	}
}
