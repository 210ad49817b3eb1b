package otp

import (
	"net"
	"testing"

	"github.com/emersion/go-imap/v2/imapserver"
	"github.com/emersion/go-imap/v2/imapserver/imapmemserver"
)

// TestServer starts an in-memory IMAP server with one provisioned account
// and returns the Mailbox pointing at it. The server accepts plaintext
// logins and is shut down when the test completes.
func TestServer(t testing.TB) Mailbox {
	t.Helper()

	const (
		username = "otp-inbox@test.local"
		password = "test-mailbox-secret"
	)

	memServer := imapmemserver.New()
	user := imapmemserver.NewUser(username, password)
	if err := user.Create("INBOX", nil); err != nil {
		t.Fatalf("failed to create INBOX: %v", err)
	}
	memServer.AddUser(user)

	server := imapserver.New(&imapserver.Options{
		NewSession: func(*imapserver.Conn) (imapserver.Session, *imapserver.GreetingData, error) {
			return memServer.NewSession(), nil, nil
		},
		InsecureAuth: true,
	})

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen for IMAP: %v", err)
	}
	go func() {
		_ = server.Serve(listener)
	}()
	t.Cleanup(func() {
		_ = server.Close()
	})

	return Mailbox{
		Server:   "127.0.0.1",
		Port:     listener.Addr().(*net.TCPAddr).Port,
		Username: username,
		Password: password,
		Insecure: true,
	}
}
