package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/joshuapare/heapkit/heap/alloc"
)

// command is one parsed script line.
type command struct {
	Line int
	Op   string
	Name string
	Args []uint64
	Text string // payload for write
}

// arity lists the numeric arguments each operation takes after the name.
var arity = map[string]int{
	"malloc":  1,
	"calloc":  2,
	"realloc": 1,
	"free":    0,
	"write":   0,
	"check":   0,
}

// parseScript reads one command per line. Blank lines and lines starting with #
// are skipped.
//
//	malloc a 10
//	calloc b 4 8
//	write a hello
//	realloc a 64
//	free b
//	check
func parseScript(r io.Reader) ([]command, error) {
	var cmds []command
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		op := strings.ToLower(fields[0])
		want, ok := arity[op]
		if !ok {
			return nil, fmt.Errorf("line %d: unknown command %q", n, fields[0])
		}

		cmd := command{Line: n, Op: op}
		if op == "check" {
			if len(fields) != 1 {
				return nil, fmt.Errorf("line %d: check takes no arguments", n)
			}
			cmds = append(cmds, cmd)
			continue
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: %s needs a name", n, op)
		}
		cmd.Name = fields[1]

		if op == "write" {
			if len(fields) < 3 {
				return nil, fmt.Errorf("line %d: write needs text", n)
			}
			cmd.Text = strings.Join(fields[2:], " ")
			cmds = append(cmds, cmd)
			continue
		}

		if len(fields)-2 != want {
			return nil, fmt.Errorf("line %d: %s takes %d argument(s) after the name, got %d", n, op, want, len(fields)-2)
		}
		for _, f := range fields[2:] {
			v, err := strconv.ParseUint(f, 0, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad number %q: %w", n, f, err)
			}
			cmd.Args = append(cmd.Args, v)
		}
		cmds = append(cmds, cmd)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return cmds, nil
}

// stepResult records what one command did.
type stepResult struct {
	Line int    `json:"line"`
	Op   string `json:"op"`
	Name string `json:"name,omitempty"`
	Addr string `json:"addr,omitempty"`
	Err  string `json:"error,omitempty"`
}

// session binds script names to heap addresses.
type session struct {
	h     *alloc.Heap
	names map[string]alloc.Addr
}

func newSession(h *alloc.Heap) *session {
	return &session{h: h, names: make(map[string]alloc.Addr)}
}

// exec runs one command. Allocation failures are part of the result, not errors;
// only a failed check aborts the script.
func (s *session) exec(cmd command) (stepResult, error) {
	res := stepResult{Line: cmd.Line, Op: cmd.Op, Name: cmd.Name}
	var (
		p   alloc.Addr
		err error
	)
	switch cmd.Op {
	case "malloc":
		p, err = s.h.Malloc(cmd.Args[0])
		s.bind(cmd.Name, p, err)
	case "calloc":
		p, err = s.h.Calloc(cmd.Args[0], cmd.Args[1])
		s.bind(cmd.Name, p, err)
	case "realloc":
		p, err = s.h.Realloc(s.names[cmd.Name], cmd.Args[0])
		s.bind(cmd.Name, p, err)
	case "free":
		p = s.names[cmd.Name]
		err = s.h.Free(p)
		delete(s.names, cmd.Name)
	case "write":
		p = s.names[cmd.Name]
		var data []byte
		if data, err = s.h.Bytes(p); err == nil {
			if len(cmd.Text) > len(data) {
				err = fmt.Errorf("%q does not fit in %d bytes", cmd.Text, len(data))
			} else {
				copy(data, cmd.Text)
			}
		}
	case "check":
		if err = s.h.Check(); err != nil {
			res.Err = err.Error()
			return res, fmt.Errorf("line %d: %w", cmd.Line, err)
		}
	}

	if p != alloc.Null {
		res.Addr = p.String()
	}
	if err != nil {
		res.Err = err.Error()
	}
	return res, nil
}

// bind records the result of an allocation. A failed allocation leaves any
// previous binding in place, matching the heap's own failure semantics.
func (s *session) bind(name string, p alloc.Addr, err error) {
	if err != nil {
		return
	}
	s.names[name] = p
}

// run executes every command and stops at the first failed check.
func (s *session) run(cmds []command) ([]stepResult, error) {
	results := make([]stepResult, 0, len(cmds))
	for _, cmd := range cmds {
		res, err := s.exec(cmd)
		results = append(results, res)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

var errUnknownBackend = errors.New("unknown backend")
