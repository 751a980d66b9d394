// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package testinfra

import (
	"bufio"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// MockEmail is one message accepted by MockSMTPServer.
type MockEmail struct {
	From     string
	To       []string
	Data     string
	AuthUsed bool
}

// Subject returns the Subject header of the message.
func (e MockEmail) Subject() string {
	for _, line := range strings.Split(e.Data, "\r\n") {
		if line == "" {
			break
		}
		if v, ok := strings.CutPrefix(line, "Subject: "); ok {
			return v
		}
	}
	return ""
}

// MockSMTPServer is a minimal plaintext SMTP server on 127.0.0.1. It speaks
// enough of RFC 5321 for net/smtp: EHLO, AUTH PLAIN, MAIL, RCPT, DATA, RSET,
// NOOP and QUIT. STARTTLS is not offered.
type MockSMTPServer struct {
	listener net.Listener
	mu       sync.Mutex
	emails   []MockEmail
	wg       sync.WaitGroup

	// RejectRcpt makes RCPT TO fail with a permanent 550.
	RejectRcpt bool

	// RejectAuth makes AUTH fail with 535.
	RejectAuth bool
}

// NewMockSMTPServer starts the server and stops it on test cleanup.
func NewMockSMTPServer(t *testing.T) *MockSMTPServer {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}

	s := &MockSMTPServer{listener: ln}
	s.wg.Add(1)
	go s.acceptLoop()
	t.Cleanup(s.Close)
	return s
}

// Host returns the listen host.
func (s *MockSMTPServer) Host() string {
	host, _, _ := net.SplitHostPort(s.listener.Addr().String())
	return host
}

// Port returns the listen port.
func (s *MockSMTPServer) Port() int {
	_, port, _ := net.SplitHostPort(s.listener.Addr().String())
	p, _ := strconv.Atoi(port)
	return p
}

// Close stops accepting connections and waits for open sessions.
func (s *MockSMTPServer) Close() {
	_ = s.listener.Close()
	s.wg.Wait()
}

// Emails returns a copy of the accepted messages.
func (s *MockSMTPServer) Emails() []MockEmail {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]MockEmail, len(s.emails))
	copy(out, s.emails)
	return out
}

// WaitForEmails waits until at least n messages arrived or timeout elapses.
func (s *MockSMTPServer) WaitForEmails(n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if len(s.Emails()) >= n {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return len(s.Emails()) >= n
}

func (s *MockSMTPServer) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serve(conn)
		}()
	}
}

func (s *MockSMTPServer) serve(conn net.Conn) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(30 * time.Second))

	r := bufio.NewReader(conn)
	w := bufio.NewWriter(conn)
	reply := func(line string) {
		_, _ = w.WriteString(line + "\r\n")
		_ = w.Flush()
	}

	var cur MockEmail
	reply("220 mock.smtp ESMTP ready")

	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")
		verb := strings.ToUpper(line)

		switch {
		case strings.HasPrefix(verb, "EHLO"), strings.HasPrefix(verb, "HELO"):
			_, _ = w.WriteString("250-mock.smtp\r\n")
			_, _ = w.WriteString("250-AUTH PLAIN\r\n")
			reply("250 8BITMIME")
		case strings.HasPrefix(verb, "AUTH"):
			if s.RejectAuth {
				reply("535 5.7.8 authentication failed")
				continue
			}
			cur.AuthUsed = true
			reply("235 2.7.0 authentication successful")
		case strings.HasPrefix(verb, "MAIL FROM:"):
			cur.From = strings.Trim(line[len("MAIL FROM:"):], "<> ")
			reply("250 OK")
		case strings.HasPrefix(verb, "RCPT TO:"):
			if s.RejectRcpt {
				reply("550 5.1.1 mailbox unavailable")
				continue
			}
			cur.To = append(cur.To, strings.Trim(line[len("RCPT TO:"):], "<> "))
			reply("250 OK")
		case verb == "DATA":
			reply("354 end data with <CR><LF>.<CR><LF>")
			var data strings.Builder
			for {
				dl, err := r.ReadString('\n')
				if err != nil {
					return
				}
				if dl == ".\r\n" {
					break
				}
				data.WriteString(strings.TrimPrefix(dl, "."))
			}
			cur.Data = data.String()
			s.mu.Lock()
			s.emails = append(s.emails, cur)
			s.mu.Unlock()
			cur = MockEmail{AuthUsed: cur.AuthUsed}
			reply("250 OK queued")
		case verb == "RSET":
			cur = MockEmail{AuthUsed: cur.AuthUsed}
			reply("250 OK")
		case verb == "NOOP":
			reply("250 OK")
		case verb == "QUIT":
			reply("221 bye")
			return
		default:
			reply("502 command not implemented")
		}
	}
}
