package resource

import (
	"fmt"
	"net"
	"testing"
)

func TestSelectPort_FreePreferred(t *testing.T) {
	// Find a port that is currently free, then ask for it.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	free := l.Addr().(*net.TCPAddr).Port
	l.Close()

	port, err := SelectPort(free, true)
	if err != nil {
		t.Fatalf("SelectPort failed: %v", err)
	}
	if port != free {
		t.Errorf("Expected preferred port %d, got %d", free, port)
	}
}

func TestSelectPort_PinnedBusy(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	busy := l.Addr().(*net.TCPAddr).Port

	_, err = SelectPort(busy, true)
	if err == nil {
		t.Fatal("Expected error for pinned busy port")
	}
	if !IsAddrInUse(err) {
		t.Errorf("Expected address-in-use chain, got %v", err)
	}
}

func TestSelectPort_FallbackWhenBusy(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	busy := l.Addr().(*net.TCPAddr).Port

	port, err := SelectPort(busy, false)
	if err != nil {
		t.Fatalf("SelectPort failed: %v", err)
	}
	if port == busy {
		t.Errorf("Expected a different port than busy %d", busy)
	}
	if port <= 0 {
		t.Errorf("Expected a positive port, got %d", port)
	}
}

func TestSelectPort_ZeroMeansAnyFree(t *testing.T) {
	port, err := SelectPort(0, false)
	if err != nil {
		t.Fatalf("SelectPort failed: %v", err)
	}
	if port <= 0 {
		t.Errorf("Expected a positive port, got %d", port)
	}

	// The returned port should be bindable right after.
	l, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		t.Errorf("Returned port %d not bindable: %v", port, err)
	} else {
		l.Close()
	}
}
