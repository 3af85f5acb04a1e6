// Package client implements the player-facing half of the session protocol
// (spec.md §4.10/SPEC_FULL §4.11): dial, register, send moves, receive board
// updates, disconnect.
package client

import (
	"fmt"
	"net"
	"time"

	"github.com/pacd/pacd/internal/pnet"
)

// BoardUpdate is one decoded server→client frame: the header plus its tile
// payload (empty for ENDGAME frames).
type BoardUpdate struct {
	pnet.BoardUpdateHeader
	Tiles []byte
}

// Session is a connected game client.
type Session struct {
	conn net.Conn
}

// Dial connects to addr, sends the CONNECT registration frame, and waits
// for the server's RegistrationResponse. A refused registration
// (result != 0) closes the connection and returns an error.
func Dial(addr string, timeout time.Duration) (*Session, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", addr, err)
	}
	return dialConn(conn)
}

// dialConn runs the registration handshake over an already-connected conn.
func dialConn(conn net.Conn) (*Session, error) {
	if err := pnet.WriteAll(conn, pnet.EncodeRegistration()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sending registration: %w", err)
	}

	resp := make([]byte, 2)
	if err := pnet.ReadAll(conn, resp); err != nil {
		conn.Close()
		return nil, fmt.Errorf("reading registration response: %w", err)
	}
	decoded, err := pnet.DecodeRegistrationResponse(resp)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("decoding registration response: %w", err)
	}
	if decoded.Result != 0 {
		conn.Close()
		return nil, fmt.Errorf("registration refused (server at capacity)")
	}

	return &Session{conn: conn}, nil
}

// Play sends one command byte (U/D/L/R or Q to quit).
func (s *Session) Play(cmd byte) error {
	return pnet.WriteAll(s.conn, pnet.EncodePlay(cmd))
}

// ReceiveBoardUpdate blocks for the next BOARD frame. An ENDGAME frame
// (GameOver == pnet.GameOverEndgame) carries no tile payload.
//
// The server only ever emits BOARD frames on this channel after the
// registration handshake, so there is no non-BOARD opcode to discard here
// in practice.
func (s *Session) ReceiveBoardUpdate() (BoardUpdate, error) {
	header := make([]byte, pnet.BoardUpdateHeaderSize)
	if err := pnet.ReadAll(s.conn, header); err != nil {
		return BoardUpdate{}, fmt.Errorf("reading board update header: %w", err)
	}
	h, err := pnet.DecodeBoardUpdateHeader(header)
	if err != nil {
		return BoardUpdate{}, fmt.Errorf("decoding board update header: %w", err)
	}

	update := BoardUpdate{BoardUpdateHeader: h}
	if h.GameOver != pnet.GameOverEndgame && h.Width > 0 && h.Height > 0 {
		tiles := make([]byte, int(h.Width*h.Height))
		if err := pnet.ReadAll(s.conn, tiles); err != nil {
			return BoardUpdate{}, fmt.Errorf("reading board tiles: %w", err)
		}
		update.Tiles = tiles
	}
	return update, nil
}

// Disconnect sends the DISCONNECT marker and closes the channel.
func (s *Session) Disconnect() error {
	err := pnet.WriteAll(s.conn, pnet.EncodeDisconnect())
	closeErr := s.conn.Close()
	if err != nil {
		return err
	}
	return closeErr
}
