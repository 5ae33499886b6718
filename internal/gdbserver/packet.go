package gdbserver

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

type packet struct {
	data  string
	valid bool
}

// readPacket returns the next $...#xx packet, discarding anything before it
// such as stray acks and interrupts.
func readPacket(r *bufio.Reader) (packet, error) {
	for {
		b, err := r.ReadByte()
		if err != nil {
			return packet{}, err
		}
		if b == '$' {
			break
		}
	}
	data := make([]byte, 0, 256)
	var sum byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			return packet{}, err
		}
		if b == '#' {
			break
		}
		data = append(data, b)
		sum += b
	}
	var csum [2]byte
	if _, err := io.ReadFull(r, csum[:]); err != nil {
		return packet{}, err
	}
	want, err := strconv.ParseUint(string(csum[:]), 16, 8)
	return packet{string(data), err == nil && byte(want) == sum}, nil
}

func writePacket(w io.Writer, payload string) error {
	var sum byte
	for i := 0; i < len(payload); i++ {
		sum += payload[i]
	}
	_, err := fmt.Fprintf(w, "$%s#%02x", payload, sum)
	return err
}
