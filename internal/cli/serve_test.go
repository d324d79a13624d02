package cli

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestServeCommand_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout, stderr bytes.Buffer
	code := Execute(ctx, []string{"serve", "--addr", "127.0.0.1:0"}, &stdout, &stderr)
	require.Equal(t, ExitSuccess, code, stderr.String())
	assert.Contains(t, stdout.String(), "Listening on ws://127.0.0.1:")
}

func TestServeCommand_BadAddress(t *testing.T) {
	res := execute(t, "serve", "--addr", "not-an-address")
	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.stderr, "failed to listen")
}

func TestServeCommand_AnswersFrames(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var stdout, stderr bytes.Buffer
	done := make(chan int, 1)
	go func() {
		done <- Execute(ctx, []string{"serve", "--addr", addr}, &stdout, &stderr)
	}()

	var ws *websocket.Conn
	require.Eventually(t, func() bool {
		ws, _, err = websocket.DefaultDialer.Dial("ws://"+addr, nil)
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	frame := `{"correlationId":"c-1","operation":"flatten","payload":{"root":{"a":{"b":1},"c":true}}}`
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(frame)))
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, msg, err := ws.ReadMessage()
	require.NoError(t, err)

	reply := gjson.ParseBytes(msg)
	assert.Equal(t, "success", reply.Get("status").String())
	assert.Equal(t, "c-1", reply.Get("correlationId").String())
	assert.Equal(t, "a:b", reply.Get("result.leaves.0.path").String())
	assert.Equal(t, "c", reply.Get("result.leaves.1.path").String())
	ws.Close()

	cancel()
	select {
	case code := <-done:
		assert.Equal(t, ExitSuccess, code, stderr.String())
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop")
	}
}
