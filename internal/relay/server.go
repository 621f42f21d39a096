package relay

import (
	"bufio"
	"context"
	"errors"
	"net"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"courier/internal/wire"
)

// Server accepts client connections and serves an unbounded sequence of
// request/response exchanges on each. Connections are independent of one
// another; within one connection exchanges are strictly sequential.
type Server struct {
	Dispatcher *Dispatcher
	Log        zerolog.Logger

	// MaxLineBytes caps one request line; wire.MaxRecordBytes if zero.
	MaxLineBytes int
}

// Run listens on addr and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts on ln until ctx is cancelled, spawning one handler
// goroutine per connection.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-ctx.Done()
		return ln.Close()
	})
	g.Go(func() error {
		s.Log.Info().Str("addr", ln.Addr().String()).Msg("relay listening")
		for {
			conn, err := ln.Accept()
			if err != nil {
				if ctx.Err() != nil {
					return nil // shutdown closed the listener
				}
				return err
			}
			go s.handle(conn)
		}
	})

	err := g.Wait()
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

// handle serves one connection until EOF or a write failure. A request
// line that fails to decode is dropped and the connection stays open;
// the client sees the missing response as a retry condition.
func (s *Server) handle(conn net.Conn) {
	openConnections.Inc()
	log := s.Log.With().Str("remote", conn.RemoteAddr().String()).Logger()
	defer func() {
		_ = conn.Close()
		openConnections.Dec()
		log.Debug().Msg("connection closed")
	}()

	maxLine := s.MaxLineBytes
	if maxLine <= 0 {
		maxLine = wire.MaxRecordBytes
	}
	sc := bufio.NewScanner(conn)
	sc.Buffer(make([]byte, 0, 4096), maxLine)

	w := bufio.NewWriter(conn)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		req, err := wire.DecodeRequest(line)
		if err != nil {
			log.Warn().Err(err).Msg("dropping undecodable request")
			continue
		}

		out, err := wire.EncodeResponse(s.Dispatcher.Handle(req))
		if err != nil {
			log.Error().Err(err).Msg("encode response")
			return
		}
		if _, err := w.Write(append(out, '\n')); err != nil {
			return
		}
		if err := w.Flush(); err != nil {
			return
		}
	}
	if err := sc.Err(); err != nil {
		log.Debug().Err(err).Msg("read loop ended")
	}
}
