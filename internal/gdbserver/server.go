// Package gdbserver serves a target to GDB over the remote serial protocol.
// The session is read-only: register and memory writes are refused and
// execution control packets are answered with the stop reason of a dump.
package gdbserver

import (
	"bufio"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"

	"github.com/go-logr/logr"

	"github.com/wnxd/crashdbg/host"
	"github.com/wnxd/crashdbg/target"
)

// maxMemRead bounds one 'm' reply so it fits in PacketSize.
const maxMemRead = 0x1000

// Registers gives the server access to the values a target supplied.
type Registers interface {
	Arch() target.Arch
	Registers(th target.Thread) *host.RegCache
}

type Server struct {
	// mu serializes every call into the target; targets are not safe for
	// concurrent use.
	mu     sync.Mutex
	tgt    target.Target
	regs   Registers
	log    logr.Logger
	thread target.Thread
}

func NewServer(tgt target.Target, regs Registers, log logr.Logger) *Server {
	return &Server{tgt: tgt, regs: regs, log: log.WithName("gdbserver")}
}

// Serve accepts sessions on l until ctx is done. Packets of concurrent
// sessions are handled one at a time.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	go func() {
		<-ctx.Done()
		l.Close()
	}()
	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		conn, err := l.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.HandleConn(conn)
			if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				s.log.Error(err, "session ended", "remote", conn.RemoteAddr().String())
			}
		}()
	}
}

// HandleConn serves a single RSP session over conn.
func (s *Server) HandleConn(conn net.Conn) error {
	defer conn.Close()
	r := bufio.NewReader(conn)
	s.mu.Lock()
	s.thread = nil
	s.mu.Unlock()
	var noAck bool
	for {
		pkt, err := readPacket(r)
		if err != nil {
			return err
		}
		if !noAck {
			ack := "+"
			if !pkt.valid {
				ack = "-"
			}
			if _, err := io.WriteString(conn, ack); err != nil {
				return err
			} else if !pkt.valid {
				continue
			}
		}
		resp, done := s.dispatch(pkt.data)
		if err := writePacket(conn, resp); err != nil {
			return err
		}
		if strings.HasPrefix(pkt.data, "QStartNoAckMode") {
			noAck = true
		}
		if done {
			return nil
		}
	}
}

func (s *Server) dispatch(cmd string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.V(2).Info("packet", "cmd", cmd)
	switch {
	case cmd == "?":
		return s.stopReply(), false
	case strings.HasPrefix(cmd, "qSupported"):
		return "PacketSize=4000;QStartNoAckMode+;qXfer:features:read+", false
	case strings.HasPrefix(cmd, "QStartNoAckMode"):
		return "OK", false
	case strings.HasPrefix(cmd, "qAttached"):
		return "1", false
	case strings.HasPrefix(cmd, "qXfer:features:read:target.xml:"):
		return xferChunk(targetXML(s.regs.Arch()), cmd), false
	case strings.HasPrefix(cmd, "qThreadExtraInfo,"):
		return s.handleThreadExtraInfo(cmd), false
	case cmd == "qC":
		th := s.selected()
		if th == nil {
			return "E01", false
		}
		return "QC" + threadID(th), false
	case cmd == "qfThreadInfo":
		return s.handleThreadInfo(), false
	case cmd == "qsThreadInfo":
		return "l", false
	case strings.HasPrefix(cmd, "Hg"):
		return s.handleSelectThread(cmd[2:]), false
	case strings.HasPrefix(cmd, "Hc"):
		return "OK", false
	case strings.HasPrefix(cmd, "T"):
		return s.handleThreadAlive(cmd[1:]), false
	case cmd == "g":
		return s.handleReadAllRegisters(), false
	case strings.HasPrefix(cmd, "p"):
		return s.handleReadRegister(cmd[1:]), false
	case strings.HasPrefix(cmd, "m"):
		return s.handleReadMemory(cmd[1:]), false
	case strings.HasPrefix(cmd, "G"), strings.HasPrefix(cmd, "P"), strings.HasPrefix(cmd, "M"), strings.HasPrefix(cmd, "X"):
		return "E01", false
	case cmd == "c", cmd == "s", strings.HasPrefix(cmd, "vCont;"):
		// a dump never runs
		return s.stopReply(), false
	case cmd == "D", strings.HasPrefix(cmd, "D;"):
		return "OK", true
	case cmd == "k":
		return "OK", true
	}
	return "", false
}

func (s *Server) selected() target.Thread {
	if s.thread != nil {
		return s.thread
	}
	return s.tgt.CurrentThread()
}

func threadID(th target.Thread) string {
	return strconv.FormatUint(th.PTID().Tid+1, 16)
}

func (s *Server) lookupThread(id string) (target.Thread, bool) {
	switch id {
	case "0", "-1":
		th := s.tgt.CurrentThread()
		return th, th != nil
	}
	n, err := strconv.ParseUint(id, 16, 64)
	if err != nil || n == 0 {
		return nil, false
	}
	for _, th := range s.tgt.Threads() {
		if th.PTID().Tid == n-1 {
			return th, true
		}
	}
	return nil, false
}

func (s *Server) stopReply() string {
	th := s.selected()
	if th == nil {
		return "S05"
	}
	return fmt.Sprintf("T05thread:%s;", threadID(th))
}

func (s *Server) handleThreadInfo() string {
	threads := s.tgt.Threads()
	if len(threads) == 0 {
		return "l"
	}
	ids := make([]string, len(threads))
	for i, th := range threads {
		ids[i] = threadID(th)
	}
	return "m" + strings.Join(ids, ",")
}

func (s *Server) handleThreadExtraInfo(cmd string) string {
	th, ok := s.lookupThread(strings.TrimPrefix(cmd, "qThreadExtraInfo,"))
	if !ok {
		return "E01"
	}
	return hex.EncodeToString([]byte(s.tgt.PidToStr(th.PTID())))
}

func (s *Server) handleSelectThread(id string) string {
	th, ok := s.lookupThread(id)
	if !ok {
		return "E01"
	}
	if id == "0" || id == "-1" {
		s.thread = nil
	} else {
		s.thread = th
	}
	return "OK"
}

func (s *Server) handleThreadAlive(id string) string {
	th, ok := s.lookupThread(id)
	if !ok || !s.tgt.ThreadAlive(th.PTID()) {
		return "E01"
	}
	return "OK"
}

func (s *Server) appendRegister(buf []byte, cache *host.RegCache, reg int) []byte {
	size := s.regs.Arch().RegSize(reg)
	if val := cache.Value(reg); val != nil && len(val) == size {
		return hex.AppendEncode(buf, val)
	}
	for i := 0; i < size; i++ {
		buf = append(buf, 'x', 'x')
	}
	return buf
}

func (s *Server) handleReadAllRegisters() string {
	th := s.selected()
	if th == nil {
		return "E01"
	}
	err := s.tgt.FetchRegisters(th, target.AllRegisters)
	if err != nil {
		s.log.V(1).Info("register fetch failed", "thread", th.PTID().String(), "error", err.Error())
		return "E01"
	}
	arch := s.regs.Arch()
	cache := s.regs.Registers(th)
	var buf []byte
	for reg := 0; reg < arch.NumRegs(); reg++ {
		buf = s.appendRegister(buf, cache, reg)
	}
	return string(buf)
}

func (s *Server) handleReadRegister(idx string) string {
	th := s.selected()
	if th == nil {
		return "E01"
	}
	reg, err := strconv.ParseUint(idx, 16, 31)
	if err != nil {
		return "E01"
	}
	err = s.tgt.FetchRegisters(th, int(reg))
	if errors.Is(err, target.ErrRegisterInvalid) {
		return "E00"
	} else if err != nil {
		return "E01"
	}
	return string(s.appendRegister(nil, s.regs.Registers(th), int(reg)))
}

func (s *Server) handleReadMemory(body string) string {
	addr, n, ok := parsePair(body)
	if !ok {
		return "E01"
	}
	if n > maxMemRead {
		n = maxMemRead
	}
	data, err := s.tgt.MemRead(addr, n)
	if err != nil {
		s.log.V(2).Info("memory read failed", "addr", addr, "len", n, "error", err.Error())
		return "E14"
	}
	return hex.EncodeToString(data)
}
