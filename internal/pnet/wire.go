package pnet

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sync"
)

// Opcode identifies a frame kind on the registration or session channel (spec §4.2).
type Opcode uint8

const (
	OpConnect    Opcode = 1
	OpDisconnect Opcode = 2
	OpPlay       Opcode = 3
	OpBoard      Opcode = 4
)

// GameOver encodes the board_update.game_over field.
type GameOver uint8

const (
	GameOverNo      GameOver = 0
	GameOverDeath   GameOver = 1
	GameOverEndgame GameOver = 2
)

// Registration is sent client→server on the rendezvous channel.
// The original transport carried request/notification pipe paths; over a
// duplex net.Conn there is nothing left to carry but the opcode itself
// (spec §2) — the server assigns the client identifier at accept time.
type Registration struct {
	Opcode Opcode
}

// RegistrationResponse is sent server→client after a registration is admitted
// or refused.
type RegistrationResponse struct {
	Opcode Opcode
	Result uint8 // 0 success, 1 refused
}

// Play is sent client→server with one command byte.
type Play struct {
	Opcode  Opcode
	Command byte
}

// BoardUpdateHeader is sent server→client ahead of the tile payload.
type BoardUpdateHeader struct {
	Opcode   Opcode
	Width    int32
	Height   int32
	Tempo    int32 // ms
	Victory  uint8 // 0/1
	GameOver GameOver
	Points   int32
}

// Reader parses wire messages from a byte slice.
// Uses little-endian byte order for all multi-byte values (spec §6: "a
// portable reimplementation should ... use a single canonical encoding").
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a new Reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, fmt.Errorf("ReadByte: not enough data (pos=%d, len=%d)", r.pos, len(r.data))
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

func (r *Reader) ReadInt32() (int32, error) {
	if r.pos+4 > len(r.data) {
		return 0, fmt.Errorf("ReadInt32: not enough data (pos=%d, len=%d)", r.pos, len(r.data))
	}
	v := int32(binary.LittleEndian.Uint32(r.data[r.pos:]))
	r.pos += 4
	return v, nil
}

// ReadBytes reads n bytes (zero-copy subslice of the Reader's backing array).
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.data) {
		return nil, fmt.Errorf("ReadBytes: not enough data (pos=%d, need=%d, len=%d)", r.pos, n, len(r.data))
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// Writer accumulates an outgoing frame.
type Writer struct {
	buf *bytes.Buffer
}

// writerPool reduces allocations by reusing Writers across frame writes.
var writerPool = sync.Pool{
	New: func() any {
		return &Writer{buf: bytes.NewBuffer(make([]byte, 0, 256))}
	},
}

// Get returns a reset Writer from the pool.
func Get() *Writer {
	w := writerPool.Get().(*Writer)
	w.buf.Reset()
	return w
}

// Put returns w to the pool. Do not use w after calling Put.
func (w *Writer) Put() {
	writerPool.Put(w)
}

func (w *Writer) WriteByte(b byte) {
	w.buf.WriteByte(b)
}

func (w *Writer) WriteInt32(v int32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], uint32(v))
	w.buf.Write(tmp[:])
}

func (w *Writer) WriteBytes(b []byte) {
	w.buf.Write(b)
}

func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

func (w *Writer) Len() int {
	return w.buf.Len()
}

// EncodeRegistration serializes a Registration frame.
func EncodeRegistration() []byte {
	w := Get()
	defer w.Put()
	w.WriteByte(byte(OpConnect))
	return append([]byte(nil), w.Bytes()...)
}

// DecodeRegistration parses a Registration frame.
func DecodeRegistration(data []byte) (Registration, error) {
	r := NewReader(data)
	op, err := r.ReadByte()
	if err != nil {
		return Registration{}, err
	}
	if Opcode(op) != OpConnect {
		return Registration{}, fmt.Errorf("unexpected opcode %d, want CONNECT", op)
	}
	return Registration{Opcode: OpConnect}, nil
}

// EncodeRegistrationResponse serializes a RegistrationResponse frame.
func EncodeRegistrationResponse(result uint8) []byte {
	w := Get()
	defer w.Put()
	w.WriteByte(byte(OpConnect))
	w.WriteByte(result)
	return append([]byte(nil), w.Bytes()...)
}

// DecodeRegistrationResponse parses a RegistrationResponse frame.
func DecodeRegistrationResponse(data []byte) (RegistrationResponse, error) {
	r := NewReader(data)
	op, err := r.ReadByte()
	if err != nil {
		return RegistrationResponse{}, err
	}
	result, err := r.ReadByte()
	if err != nil {
		return RegistrationResponse{}, err
	}
	return RegistrationResponse{Opcode: Opcode(op), Result: result}, nil
}

// EncodePlay serializes a Play frame.
func EncodePlay(cmd byte) []byte {
	w := Get()
	defer w.Put()
	w.WriteByte(byte(OpPlay))
	w.WriteByte(cmd)
	return append([]byte(nil), w.Bytes()...)
}

// DecodePlay parses a Play frame.
func DecodePlay(data []byte) (Play, error) {
	r := NewReader(data)
	op, err := r.ReadByte()
	if err != nil {
		return Play{}, err
	}
	cmd, err := r.ReadByte()
	if err != nil {
		return Play{}, err
	}
	return Play{Opcode: Opcode(op), Command: cmd}, nil
}

// EncodeDisconnect serializes the single-byte Disconnect frame: the ASCII
// digit for the DISCONNECT opcode, per spec §4.2.
func EncodeDisconnect() []byte {
	return []byte{'0' + byte(OpDisconnect)}
}

// DecodeDisconnect reports whether b is the Disconnect marker byte.
func DecodeDisconnect(b byte) bool {
	return b == '0'+byte(OpDisconnect)
}

// BoardUpdateHeaderSize is the encoded size of a BoardUpdateHeader, in bytes.
const BoardUpdateHeaderSize = 1 + 4 + 4 + 4 + 1 + 1 + 4

// EncodeBoardUpdateHeader serializes a BoardUpdateHeader frame.
func EncodeBoardUpdateHeader(h BoardUpdateHeader) []byte {
	w := Get()
	defer w.Put()
	w.WriteByte(byte(OpBoard))
	w.WriteInt32(h.Width)
	w.WriteInt32(h.Height)
	w.WriteInt32(h.Tempo)
	w.WriteByte(h.Victory)
	w.WriteByte(byte(h.GameOver))
	w.WriteInt32(h.Points)
	return append([]byte(nil), w.Bytes()...)
}

// DecodeBoardUpdateHeader parses a BoardUpdateHeader frame. It assumes data
// begins at a BOARD-opcode frame: the opcode byte is decoded as-is, and no
// leading non-BOARD bytes are skipped or rejected.
func DecodeBoardUpdateHeader(data []byte) (BoardUpdateHeader, error) {
	if len(data) < BoardUpdateHeaderSize {
		return BoardUpdateHeader{}, fmt.Errorf("DecodeBoardUpdateHeader: need %d bytes, got %d", BoardUpdateHeaderSize, len(data))
	}
	r := NewReader(data)
	op, _ := r.ReadByte()
	width, err := r.ReadInt32()
	if err != nil {
		return BoardUpdateHeader{}, err
	}
	height, err := r.ReadInt32()
	if err != nil {
		return BoardUpdateHeader{}, err
	}
	tempo, err := r.ReadInt32()
	if err != nil {
		return BoardUpdateHeader{}, err
	}
	victory, err := r.ReadByte()
	if err != nil {
		return BoardUpdateHeader{}, err
	}
	gameOver, err := r.ReadByte()
	if err != nil {
		return BoardUpdateHeader{}, err
	}
	points, err := r.ReadInt32()
	if err != nil {
		return BoardUpdateHeader{}, err
	}
	return BoardUpdateHeader{
		Opcode:   Opcode(op),
		Width:    width,
		Height:   height,
		Tempo:    tempo,
		Victory:  victory,
		GameOver: GameOver(gameOver),
		Points:   points,
	}, nil
}

