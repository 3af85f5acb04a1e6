package client

import (
	"net"
	"testing"
	"time"

	"github.com/pacd/pacd/internal/pnet"
	"github.com/pacd/pacd/internal/testutil"
	"github.com/stretchr/testify/require"
)

func dialViaPipe(t *testing.T) (*Session, net.Conn) {
	t.Helper()
	client, server := testutil.PipeConn(t)

	done := make(chan struct{})
	var sess *Session
	var dialErr error
	go func() {
		defer close(done)
		sess, dialErr = dialConn(client)
	}()

	// Server side of the handshake.
	opcode := make([]byte, 1)
	require.NoError(t, pnet.ReadAll(server, opcode))
	require.Equal(t, byte(pnet.OpConnect), opcode[0])
	require.NoError(t, pnet.WriteAll(server, pnet.EncodeRegistrationResponse(0)))

	<-done
	require.NoError(t, dialErr)
	return sess, server
}

func TestSession_ReceiveBoardUpdate_DecodesPayload(t *testing.T) {
	sess, server := dialViaPipe(t)
	defer server.Close()

	go func() {
		header := pnet.EncodeBoardUpdateHeader(pnet.BoardUpdateHeader{
			Opcode: pnet.OpBoard, Width: 2, Height: 1, Tempo: 100, Points: 3,
		})
		frame := append(header, []byte("C.")...)
		_ = pnet.WriteAll(server, frame)
	}()

	update, err := sess.ReceiveBoardUpdate()
	require.NoError(t, err)
	require.Equal(t, int32(2), update.Width)
	require.Equal(t, int32(3), update.Points)
	require.Equal(t, []byte("C."), update.Tiles)
}

func TestSession_ReceiveBoardUpdate_EndgameHasNoPayload(t *testing.T) {
	sess, server := dialViaPipe(t)
	defer server.Close()

	go func() {
		header := pnet.EncodeBoardUpdateHeader(pnet.BoardUpdateHeader{
			Opcode: pnet.OpBoard, GameOver: pnet.GameOverEndgame,
		})
		_ = pnet.WriteAll(server, header)
	}()

	update, err := sess.ReceiveBoardUpdate()
	require.NoError(t, err)
	require.Equal(t, pnet.GameOverEndgame, update.GameOver)
	require.Empty(t, update.Tiles)
}

func TestSession_Play_SendsCommand(t *testing.T) {
	sess, server := dialViaPipe(t)
	defer server.Close()

	// net.Pipe writes block until the peer reads, so send from a goroutine.
	playErr := make(chan error, 1)
	go func() { playErr <- sess.Play('R') }()

	buf := make([]byte, 2)
	require.NoError(t, server.SetReadDeadline(time.Now().Add(time.Second)))
	require.NoError(t, pnet.ReadAll(server, buf))
	require.NoError(t, <-playErr)
	play, err := pnet.DecodePlay(buf)
	require.NoError(t, err)
	require.Equal(t, byte('R'), play.Command)
}

func TestSession_Disconnect_SendsMarkerAndCloses(t *testing.T) {
	sess, server := dialViaPipe(t)
	defer server.Close()

	// net.Pipe writes block until the peer reads, so disconnect from a goroutine.
	disconnectErr := make(chan error, 1)
	go func() { disconnectErr <- sess.Disconnect() }()

	buf := make([]byte, 1)
	require.NoError(t, server.SetReadDeadline(time.Now().Add(time.Second)))
	require.NoError(t, pnet.ReadAll(server, buf))
	require.NoError(t, <-disconnectErr)
	require.True(t, pnet.DecodeDisconnect(buf[0]))
}
