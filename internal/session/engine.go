package session

import (
	"context"
	"sync"
	"time"

	"github.com/pacd/pacd/internal/engine"
	"github.com/pacd/pacd/internal/pnet"
)

// LevelOutcome reports how a level ended.
type LevelOutcome int

const (
	OutcomeNextLevel LevelOutcome = iota
	OutcomeGameOver
	OutcomeAbort
)

// RunLevel drives one level to completion for sess: it loads the level,
// spawns the pacman/ghost/broadcaster goroutines, joins them per spec.md
// §4.7, and returns the outcome plus the points to carry into the next
// level.
func RunLevel(ctx context.Context, sess *Session, name, dir string, accumulatedPoints int32) (LevelOutcome, int32) {
	board, err := engine.LoadLevel(name, dir, accumulatedPoints)
	if err != nil {
		sess.SetError()
		return OutcomeAbort, accumulatedPoints
	}
	defer engine.UnloadLevel(board)

	board.SetState(engine.StateContinuePlay)
	sess.RebindScore(board.Pacmen[0])

	if err := sendBoardUpdate(sess, board, false); err != nil {
		sess.SetError()
		return OutcomeAbort, board.Pacmen[0].Points
	}

	for {
		outcome, done := runLevelRound(ctx, sess, board)
		if done {
			return outcome, board.Pacmen[0].Points
		}
		if ctx.Err() != nil {
			// The server is shutting down; the round ended without a
			// level outcome, so abort instead of restarting it.
			sess.SetError()
			return OutcomeAbort, board.Pacmen[0].Points
		}
		// Self-healing branch (spec.md §4.7 step 6): board.state was
		// neither NEXT_LEVEL nor QUIT_GAME after a normal pacman exit.
		// Re-emit a DEFAULT frame and restart the spawn loop.
		if err := sendBoardUpdate(sess, board, false); err != nil {
			sess.SetError()
			return OutcomeAbort, board.Pacmen[0].Points
		}
	}
}

// runLevelRound spawns the pacman, ghost, and broadcaster goroutines for one
// pass, joins pacman first, and reports whether the level is finished.
func runLevelRound(ctx context.Context, sess *Session, board *engine.Board) (LevelOutcome, bool) {
	sess.shutdown.Store(false)

	levelCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	pacmanDone := make(chan struct{})
	go func() {
		defer close(pacmanDone)
		runPacman(levelCtx, sess, board)
	}()

	var agents sync.WaitGroup
	for i, g := range board.Ghosts {
		agents.Add(1)
		go func(g *engine.Ghost, step int) {
			defer agents.Done()
			runGhost(levelCtx, board, g, step, cancel)
		}(g, i)
	}
	agents.Add(1)
	go func() {
		defer agents.Done()
		runBroadcaster(levelCtx, sess, board)
	}()

	<-pacmanDone

	if sess.Errored() {
		cancel()
		agents.Wait()
		return OutcomeAbort, true
	}

	sess.SetShutdown()
	cancel()
	agents.Wait()

	switch board.State() {
	case engine.StateNextLevel:
		_ = sendBoardUpdate(sess, board, true)
		return OutcomeNextLevel, true
	case engine.StateQuitGame:
		_ = sendGameOver(sess, board)
		return OutcomeGameOver, true
	default:
		return 0, false
	}
}

// runPacman is the primary agent: it blocks reading one Play frame at a
// time and applies it to the board. A ghost that kills pacman cancels ctx
// directly (spec.md §9); since net.Conn reads are not context-aware, a
// watcher goroutine forces the blocked read to return by setting a read
// deadline in the past the moment ctx is cancelled.
func runPacman(ctx context.Context, sess *Session, board *engine.Board) {
	conn := sess.Conn()
	defer func() { _ = conn.SetReadDeadline(time.Time{}) }()

	watchDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.SetReadDeadline(time.Now())
		case <-watchDone:
		}
	}()
	defer close(watchDone)

	opcode := make([]byte, 1)
	for {
		if err := pnet.ReadAll(conn, opcode); err != nil {
			if ctx.Err() != nil {
				return // cancelled by a ghost kill (board.state already QUIT_GAME) or by server shutdown
			}
			sess.SetError()
			sess.SetShutdown()
			board.SetState(engine.StateQuitGame)
			return
		}

		if pnet.DecodeDisconnect(opcode[0]) {
			sess.SetError()
			sess.SetShutdown()
			board.SetState(engine.StateQuitGame)
			return
		}

		if pnet.Opcode(opcode[0]) != pnet.OpPlay {
			sess.SetError()
			sess.SetShutdown()
			board.SetState(engine.StateQuitGame)
			return
		}

		cmdBuf := make([]byte, 1)
		if err := pnet.ReadAll(conn, cmdBuf); err != nil {
			if ctx.Err() != nil {
				return
			}
			sess.SetError()
			sess.SetShutdown()
			board.SetState(engine.StateQuitGame)
			return
		}

		cmd := cmdBuf[0]
		if cmd == 'Q' {
			board.SetState(engine.StateQuitGame)
			return
		}

		switch engine.MovePacman(board, cmd) {
		case engine.MovePortal:
			board.SetState(engine.StateNextLevel)
			return
		case engine.MoveDied:
			board.SetState(engine.StateQuitGame)
			return
		}
	}
}

// runGhost wakes every tempo*(1+step) ms, checks shutdown/state, and
// attempts one move. A move that kills pacman cancels the shared level
// context directly, stopping pacman (and, as a documented simplification
// of spec.md's single-task cancellation, the other ghosts too — see
// DESIGN.md).
func runGhost(ctx context.Context, board *engine.Board, g *engine.Ghost, step int, cancelLevel context.CancelFunc) {
	interval := time.Duration(board.Tempo) * time.Duration(1+step) * time.Millisecond
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if board.State() != engine.StateContinuePlay {
				return
			}
			if engine.MoveGhost(board, g) == engine.MoveDied {
				board.SetState(engine.StateQuitGame)
				cancelLevel()
				return
			}
		}
	}
}

// runBroadcaster emits a DEFAULT frame every tempo ms, after an initial
// half-tempo offset to stagger it from the ghosts (spec.md §4.7 step 3).
func runBroadcaster(ctx context.Context, sess *Session, board *engine.Board) {
	half := time.Duration(board.Tempo) * time.Millisecond / 2
	offset := time.NewTimer(half)
	defer offset.Stop()

	select {
	case <-ctx.Done():
		return
	case <-offset.C:
	}

	ticker := time.NewTicker(time.Duration(board.Tempo) * time.Millisecond)
	defer ticker.Stop()

	for {
		if sess.ShuttingDown() {
			return
		}
		if err := sendBoardUpdate(sess, board, false); err != nil {
			sess.SetError()
			sess.SetShutdown()
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// sendBoardUpdate serializes and sends one DEFAULT or VICTORY frame. The
// board's writer lock is held for the whole serialize-and-send sequence, so
// a single frame is internally consistent with any in-flight move (spec.md
// §5 ordering rule).
func sendBoardUpdate(sess *Session, board *engine.Board, victory bool) error {
	board.StateLock.Lock()
	defer board.StateLock.Unlock()

	var v uint8
	if victory {
		v = 1
	}
	header := pnet.EncodeBoardUpdateHeader(pnet.BoardUpdateHeader{
		Opcode:   pnet.OpBoard,
		Width:    int32(board.Width),
		Height:   int32(board.Height),
		Tempo:    int32(board.Tempo),
		Victory:  v,
		GameOver: pnet.GameOverNo,
		Points:   board.Pacmen[0].Points,
	})
	frame := append(header, engine.Serialize(board)...)
	return sess.WriteFrame(frame)
}

// sendGameOver sends the GAMEOVER frame (game_over=1).
func sendGameOver(sess *Session, board *engine.Board) error {
	board.StateLock.Lock()
	defer board.StateLock.Unlock()

	header := pnet.EncodeBoardUpdateHeader(pnet.BoardUpdateHeader{
		Opcode:   pnet.OpBoard,
		Width:    int32(board.Width),
		Height:   int32(board.Height),
		Tempo:    int32(board.Tempo),
		GameOver: pnet.GameOverDeath,
		Points:   board.Pacmen[0].Points,
	})
	frame := append(header, engine.Serialize(board)...)
	return sess.WriteFrame(frame)
}

// SendEndgame sends the ENDGAME marker frame (game_over=2), which carries
// no tile payload (spec.md §4.2).
func SendEndgame(sess *Session) error {
	header := pnet.EncodeBoardUpdateHeader(pnet.BoardUpdateHeader{
		Opcode:   pnet.OpBoard,
		GameOver: pnet.GameOverEndgame,
	})
	return sess.WriteFrame(header)
}

// AwaitDisconnect reads one-byte frames from sess until a DISCONNECT marker
// or EOF is observed (spec.md §4.6 step 7).
func AwaitDisconnect(sess *Session) {
	conn := sess.Conn()
	buf := make([]byte, 1)
	for {
		if err := pnet.ReadAll(conn, buf); err != nil {
			return
		}
		if pnet.DecodeDisconnect(buf[0]) {
			return
		}
	}
}
