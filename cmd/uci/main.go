// Command uci is a thin text I/O adapter around the engine package: it
// parses UCI protocol lines and emits progress/bestmove lines, using the
// SearchRequest/Callbacks contract the engine package exposes so the
// core never touches stdout directly.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"chess-engine/board"
	"chess-engine/engine"
)

func main() {
	hashMB := flag.Int("hash", 1, "transposition table size in megabytes")
	flag.Parse()

	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

	a := newAdapter(*hashMB)
	a.loop(os.Stdin, os.Stdout)
}

type adapter struct {
	tt  *engine.Table
	pos *board.Position

	baseFEN string        // position before "moves", kept so handleGo can pass the list as a MovePrefix instead of collapsing it into one FEN
	prefix  []board.Move

	stop  atomic.Bool
	group *errgroup.Group // tracks the in-flight search goroutine, if any

	outMu sync.Mutex // serializes stdout writes against the search goroutine's info/bestmove callbacks
}

func newAdapter(hashMB int) *adapter {
	pos, _ := board.NewFromFEN(board.StartFEN)
	return &adapter{tt: engine.NewTable(hashMB), pos: pos, baseFEN: board.StartFEN}
}

func (a *adapter) loop(in *os.File, out *os.File) {
	scanner := bufio.NewScanner(in)
	w := bufio.NewWriter(out)
	defer w.Flush()

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "uci":
			a.outMu.Lock()
			fmt.Fprintln(w, "id name chess-engine")
			fmt.Fprintln(w, "id author student")
			fmt.Fprintln(w, "option name Hash type spin default 1 min 1 max 32768")
			fmt.Fprintln(w, "option name Clear Hash type button")
			fmt.Fprintln(w, "uciok")
			w.Flush()
			a.outMu.Unlock()
		case "isready":
			a.outMu.Lock()
			fmt.Fprintln(w, "readyok")
			w.Flush()
			a.outMu.Unlock()
		case "ucinewgame":
			a.tt.Clear()
		case "setoption":
			a.handleSetOption(fields)
		case "position":
			a.handlePosition(fields)
		case "go":
			a.handleGo(fields, w)
		case "stop":
			a.stop.Store(true)
		case "quit":
			a.stop.Store(true)
			if a.group != nil {
				a.group.Wait()
			}
			return
		default:
			log.Warn().Str("line", line).Msg("unrecognized uci command")
		}
	}
}

func (a *adapter) handleSetOption(fields []string) {
	joined := strings.Join(fields[1:], " ")
	switch {
	case strings.HasPrefix(joined, "name Hash value "):
		mb, err := strconv.Atoi(strings.TrimPrefix(joined, "name Hash value "))
		if err != nil {
			log.Warn().Err(err).Msg("bad Hash value")
			return
		}
		a.tt.Resize(mb)
	case strings.HasPrefix(joined, "name Clear Hash"):
		a.tt.Clear()
	}
}

func (a *adapter) handlePosition(fields []string) {
	idx := 1
	if idx >= len(fields) {
		return
	}
	var fen string
	switch fields[idx] {
	case "startpos":
		fen = board.StartFEN
		idx++
	case "fen":
		idx++
		start := idx
		for idx < len(fields) && fields[idx] != "moves" {
			idx++
		}
		fen = strings.Join(fields[start:idx], " ")
	default:
		return
	}
	pos, err := board.NewFromFEN(fen)
	if err != nil {
		log.Error().Err(err).Str("fen", fen).Msg("invalid FEN in position command")
		return
	}
	a.pos = pos
	a.baseFEN = fen
	a.prefix = nil

	if idx < len(fields) && fields[idx] == "moves" {
		for _, text := range fields[idx+1:] {
			from, to, promo, err := board.ParseLAN(text)
			if err != nil {
				log.Warn().Err(err).Str("move", text).Msg("bad move text")
				continue
			}
			m := matchPseudoLegal(a.pos, from, to, promo)
			if m == board.NoMove {
				log.Warn().Str("move", text).Msg("move not found in pseudo-legal list")
				continue
			}
			a.pos.MakeMove(m)
			a.prefix = append(a.prefix, m)
		}
	}
}

// matchPseudoLegal resolves a from/to/promotion triple parsed from LAN
// text to the concrete typed Move (capture vs quiet, castle, en passant,
// promotion kind) by matching against the generated pseudo-legal list,
// per ParseLAN's contract.
func matchPseudoLegal(pos *board.Position, from, to board.Square, promo board.PieceType) board.Move {
	for _, m := range board.GeneratePseudoLegal(pos, board.GenAll, nil) {
		if m.From() != from || m.To() != to {
			continue
		}
		if pt := m.Kind().PromotionType(); pt != board.NoPieceType {
			if pt == promo {
				return m
			}
			continue
		}
		if promo == board.NoPieceType {
			return m
		}
	}
	return board.NoMove
}

// handleGo parses "go" parameters and runs the search in the background
// so the stdin loop keeps reading (a "stop" line must interrupt an
// in-flight search, per the UCI protocol). Any still-running previous
// search is waited out first — the GUI is expected to serialize go/stop,
// but this guards against a stray overlap.
func (a *adapter) handleGo(fields []string, w *bufio.Writer) {
	if a.group != nil {
		a.group.Wait()
	}

	req := engine.SearchRequest{FEN: a.baseFEN, MovePrefix: a.prefix}
	for i := 1; i < len(fields); i++ {
		next := func() string {
			i++
			if i < len(fields) {
				return fields[i]
			}
			return "0"
		}
		switch fields[i] {
		case "depth":
			req.MaxDepth, _ = strconv.Atoi(next())
		case "nodes":
			v, _ := strconv.ParseUint(next(), 10, 64)
			req.MaxNodes = v
		case "wtime":
			req.WhiteTimeMs, _ = strconv.ParseInt(next(), 10, 64)
		case "btime":
			req.BlackTimeMs, _ = strconv.ParseInt(next(), 10, 64)
		case "winc":
			req.WhiteIncMs, _ = strconv.ParseInt(next(), 10, 64)
		case "binc":
			req.BlackIncMs, _ = strconv.ParseInt(next(), 10, 64)
		case "movestogo":
			req.MovesToGo, _ = strconv.Atoi(next())
		case "movetime":
			req.FixedMoveMs, _ = strconv.ParseInt(next(), 10, 64)
		}
	}

	a.stop.Store(false)
	req.Stop = &a.stop
	req.Callbacks = engine.Callbacks{
		SendInfo: func(info engine.Info) {
			a.outMu.Lock()
			defer a.outMu.Unlock()
			writeInfo(w, info)
		},
		SendBestMove: func(m board.Move) {
			a.outMu.Lock()
			defer a.outMu.Unlock()
			if m == board.NoMove {
				fmt.Fprintln(w, "bestmove 0000")
			} else {
				fmt.Fprintf(w, "bestmove %s\n", m.String())
			}
			w.Flush()
		},
	}

	g := &errgroup.Group{}
	a.group = g
	g.Go(func() error {
		s := engine.NewSearcher(a.tt)
		_, err := s.Run(req)
		if err != nil {
			log.Error().Err(err).Msg("search failed")
		}
		return err
	})
}

func writeInfo(w *bufio.Writer, info engine.Info) {
	sb := strings.Builder{}
	sb.WriteString("info")
	if info.Flags&engine.InfoDepth != 0 {
		fmt.Fprintf(&sb, " depth %d", info.Depth)
	}
	if info.Flags&engine.InfoMate != 0 {
		fmt.Fprintf(&sb, " score mate %d", info.Mate)
	} else if info.Flags&engine.InfoCP != 0 {
		fmt.Fprintf(&sb, " score cp %d", info.CP)
	}
	if info.Flags&engine.InfoLowerbound != 0 {
		sb.WriteString(" lowerbound")
	}
	if info.Flags&engine.InfoNodes != 0 {
		fmt.Fprintf(&sb, " nodes %d", info.Nodes)
	}
	if info.Flags&engine.InfoNPS != 0 {
		fmt.Fprintf(&sb, " nps %d", info.NPS)
	}
	if info.Flags&engine.InfoTime != 0 {
		fmt.Fprintf(&sb, " time %d", info.TimeMillis)
	}
	fmt.Fprintln(w, sb.String())
	w.Flush()
}
