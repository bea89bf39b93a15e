package server

import (
	"bufio"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

func TestHandleStreamDeliversWrittenLines(t *testing.T) {
	log := zerolog.Nop()
	srv := New(log)
	sess := NewSession("s1", log)
	srv.Register(sess)

	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/stream/s1")
	if err != nil {
		t.Fatalf("GET /stream/s1: %v", err)
	}
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)

	// Give handleStream a moment to register its streamClient before we
	// write, since registration happens after the handshake completes.
	time.Sleep(20 * time.Millisecond)

	if _, err := sess.Write([]byte("hello\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	line, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("ReadString: %v", err)
	}
	if strings.TrimSpace(line) != "hello" {
		t.Fatalf("line = %q, want %q", line, "hello")
	}
}

func TestHandleStreamUnknownSessionNotFound(t *testing.T) {
	log := zerolog.Nop()
	srv := New(log)

	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/stream/nope")
	if err != nil {
		t.Fatalf("GET /stream/nope: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestBroadcastDeliversToWebSocketClient(t *testing.T) {
	log := zerolog.Nop()
	srv := New(log)
	sess := NewSession("s2", log)
	srv.Register(sess)

	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/s2"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	time.Sleep(20 * time.Millisecond)
	sess.Broadcast("line one")

	var evt lineEvent
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&evt); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if evt.Session != "s2" || evt.Line != "line one" {
		t.Fatalf("evt = %+v", evt)
	}
}

func TestHandleWebSocketUnknownSessionNotFound(t *testing.T) {
	log := zerolog.Nop()
	srv := New(log)

	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/nope"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("Dial succeeded, want failure for unknown session")
	}
	if resp != nil && resp.StatusCode != 404 {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestUnregisterRemovesSession(t *testing.T) {
	log := zerolog.Nop()
	srv := New(log)
	sess := NewSession("s3", log)
	srv.Register(sess)

	if _, ok := srv.lookup("s3"); !ok {
		t.Fatal("session not found after Register")
	}

	srv.Unregister("s3")
	if _, ok := srv.lookup("s3"); ok {
		t.Fatal("session still found after Unregister")
	}
}
