package pnet

import (
	"testing"

	"github.com/pacd/pacd/internal/testutil"
	"github.com/stretchr/testify/require"
)

func TestRegistrationRoundTrip(t *testing.T) {
	data := EncodeRegistration()
	got, err := DecodeRegistration(data)
	require.NoError(t, err)
	require.Equal(t, Registration{Opcode: OpConnect}, got)
}

func TestRegistrationResponseRoundTrip(t *testing.T) {
	for _, result := range []uint8{0, 1} {
		data := EncodeRegistrationResponse(result)
		got, err := DecodeRegistrationResponse(data)
		require.NoError(t, err)
		require.Equal(t, RegistrationResponse{Opcode: OpConnect, Result: result}, got)
	}
}

func TestPlayRoundTrip(t *testing.T) {
	data := EncodePlay('R')
	got, err := DecodePlay(data)
	require.NoError(t, err)
	require.Equal(t, Play{Opcode: OpPlay, Command: 'R'}, got)
}

func TestDisconnectMarker(t *testing.T) {
	b := EncodeDisconnect()
	require.Len(t, b, 1)
	require.True(t, DecodeDisconnect(b[0]))
	require.False(t, DecodeDisconnect('X'))
}

func TestBoardUpdateHeaderRoundTrip(t *testing.T) {
	h := BoardUpdateHeader{
		Opcode:   OpBoard,
		Width:    28,
		Height:   31,
		Tempo:    250,
		Victory:  1,
		GameOver: GameOverNo,
		Points:   1234,
	}
	data := EncodeBoardUpdateHeader(h)
	testutil.AssertPacketLength(t, BoardUpdateHeaderSize, data)
	testutil.AssertPacketOpcode(t, byte(OpBoard), data)
	testutil.AssertInt32LE(t, 1234, data, BoardUpdateHeaderSize-4)

	got, err := DecodeBoardUpdateHeader(data)
	require.NoError(t, err)
	require.Equal(t, h, got)
}

func TestBoardUpdateHeaderRoundTrip_Endgame(t *testing.T) {
	h := BoardUpdateHeader{
		Opcode:   OpBoard,
		GameOver: GameOverEndgame,
	}
	data := EncodeBoardUpdateHeader(h)
	got, err := DecodeBoardUpdateHeader(data)
	require.NoError(t, err)
	require.Equal(t, GameOverEndgame, got.GameOver)
}

func TestDecodeBoardUpdateHeader_TooShort(t *testing.T) {
	_, err := DecodeBoardUpdateHeader([]byte{byte(OpBoard)})
	require.Error(t, err)
}

func TestWriterPoolReuseIsClean(t *testing.T) {
	w := Get()
	w.WriteByte(0xFF)
	w.WriteInt32(42)
	w.Put()

	w2 := Get()
	defer w2.Put()
	require.Equal(t, 0, w2.Len())
}
