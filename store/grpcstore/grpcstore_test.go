package grpcstore

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"provenant.dev/mastvm/store"
)

func dialTestServer(t *testing.T, backend store.Store) *Client {
	t.Helper()

	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer()
	RegisterObjectStoreServer(srv, &Server{Store: backend})

	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	dialer := func(ctx context.Context, s string) (net.Conn, error) { return lis.Dial() }
	cc, err := grpc.DialContext(
		context.Background(),
		"bufnet",
		grpc.WithContextDialer(dialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("DialContext: %v", err)
	}
	t.Cleanup(func() { _ = cc.Close() })

	return &Client{cc: cc, client: NewObjectStoreClient(cc), Timeout: 2 * time.Second}
}

func TestGRPCStore_FS_RoundTrip(t *testing.T) {
	backend, err := store.NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	client := dialTestServer(t, backend)

	payload := []byte("hello grpcstore")
	id, err := client.Put(payload)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !id.Defined() {
		t.Fatalf("expected defined CID")
	}
	if !client.Has(id) {
		t.Fatalf("Has: expected true")
	}
	got, err := client.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("payload mismatch")
	}
}

func TestGRPCStore_GetMissing(t *testing.T) {
	client := dialTestServer(t, store.NewMem())

	id, err := store.CIDFor([]byte("never stored"))
	if err != nil {
		t.Fatalf("CIDFor: %v", err)
	}
	if client.Has(id) {
		t.Fatalf("Has: expected false")
	}
	if _, err := client.Get(id); !store.IsNotFound(err) {
		t.Fatalf("Get missing: got err=%v want ErrNotFound", err)
	}
}
