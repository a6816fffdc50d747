package telnet

import (
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const (
	optEcho     byte = 1
	optLinemode byte = 34
)

func pipeConn(t *testing.T) (*Conn, net.Conn) {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() {
		_ = server.Close()
		_ = client.Close()
	})
	return NewConn(server, time.Second, time.Second), client
}

func TestConn_ReadLineFiltersIACAndControls(t *testing.T) {
	conn, client := pipeConn(t)
	go func() {
		_, _ = client.Write([]byte{IAC, DO, OptSuppressGoAhead, 'p', 'r', 0x07, 'e', 'p', '\r', '\n'})
	}()

	line, err := conn.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "prep", line)
}

func TestConn_ReadLineSubNegotiation(t *testing.T) {
	conn, client := pipeConn(t)
	go func() {
		_, _ = client.Write([]byte{IAC, SB, 24, 0, 'x', 't', IAC, SE, 'l', 's', '\n'})
	}()

	line, err := conn.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "ls", line)
}

func TestConn_ReadLineTooLong(t *testing.T) {
	conn, client := pipeConn(t)
	go func() {
		_, _ = client.Write([]byte(strings.Repeat("a", MaxLineLength+10) + "\r\nbattle\r\n"))
	}()

	_, err := conn.ReadLine()
	assert.ErrorIs(t, err, ErrLineTooLong)

	line, err := conn.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "battle", line)
}

func TestConn_ReadLineEOF(t *testing.T) {
	conn, client := pipeConn(t)
	go func() {
		_, _ = client.Write([]byte("partial"))
		_ = client.Close()
	}()

	line, err := conn.ReadLine()
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "partial", line)
}

func TestConn_WriteLines(t *testing.T) {
	conn, client := pipeConn(t)
	done := make(chan []byte, 1)
	go func() {
		buf := make([]byte, 64)
		n, _ := io.ReadAtLeast(client, buf, len("a\r\nb\r\n"))
		done <- buf[:n]
	}()

	require.NoError(t, conn.WriteLines("a", "b"))
	assert.Equal(t, "a\r\nb\r\n", string(<-done))
}

func TestFilterIAC_NoIAC(t *testing.T) {
	input := []byte("hello world")
	assert.Equal(t, input, FilterIAC(input))
}

func TestFilterIAC_OptionCommands(t *testing.T) {
	assert.Equal(t, []byte("hi"), FilterIAC([]byte{IAC, WILL, optEcho, 'h', 'i'}))
	assert.Equal(t, []byte("ok"), FilterIAC([]byte{IAC, WONT, OptSuppressGoAhead, 'o', 'k'}))
	assert.Equal(t, []byte("ab"), FilterIAC([]byte{'a', IAC, DO, optLinemode, 'b'}))
	assert.Empty(t, FilterIAC([]byte{IAC, DONT, optEcho}))
}

func TestFilterIAC_SubNegotiation(t *testing.T) {
	input := []byte{IAC, SB, 24, 0, 'x', 't', 'e', 'r', 'm', IAC, SE, 'z'}
	assert.Equal(t, []byte("z"), FilterIAC(input))
}

func TestFilterIAC_EscapedIACAndNOP(t *testing.T) {
	assert.Equal(t, []byte{'a', IAC, 'b'}, FilterIAC([]byte{'a', IAC, IAC, 'b'}))
	assert.Equal(t, []byte("xy"), FilterIAC([]byte{'x', IAC, NOP, 'y'}))
}

// Property: FilterIAC on input without any IAC bytes returns the input unchanged.
func TestPropertyFilterIAC_NoIACBytesPassThrough(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		input := rapid.SliceOfN(rapid.ByteRange(0, 254), 0, 200).Draw(t, "input")
		assert.Equal(t, input, FilterIAC(input))
	})
}

// Property: FilterIAC output is never longer than its input.
func TestPropertyFilterIAC_OutputNeverLongerThanInput(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		input := rapid.SliceOfN(rapid.Byte(), 0, 200).Draw(t, "input")
		assert.LessOrEqual(t, len(FilterIAC(input)), len(input))
	})
}
