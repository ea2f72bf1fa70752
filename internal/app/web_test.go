// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/env_logger/internal/env"
)

func testRecord(temp float64) env.Record {
	return env.Record{
		Reading: env.Reading{Temperature: temp, Pressure: 1013.25, Humidity: 55},
		Time:    time.Date(2024, 3, 7, 9, 5, 3, 0, time.UTC),
	}
}

func TestLatestEndpoint(t *testing.T) {
	hub := newEnvHub()
	srv := httptest.NewServer(hub.routes(""))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/env")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	hub.update(testRecord(20))
	hub.update(testRecord(21))

	resp, err = http.Get(srv.URL + "/api/env")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var got env.Record
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, 21.0, got.Temperature)
}

func TestStreamPushesLatestThenUpdates(t *testing.T) {
	hub := newEnvHub()
	srv := httptest.NewServer(hub.routes(""))
	defer srv.Close()

	hub.update(testRecord(20))

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var got env.Record
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, 20.0, got.Temperature)

	// The first message is written after the client is subscribed.
	hub.update(testRecord(19.5))
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, 19.5, got.Temperature)
}

func TestStreamUnsubscribesOnClose(t *testing.T) {
	hub := newEnvHub()
	srv := httptest.NewServer(hub.routes(""))
	defer srv.Close()
	hub.update(testRecord(20))

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	var got env.Record
	require.NoError(t, conn.ReadJSON(&got))
	conn.Close()

	assert.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return len(hub.clients) == 0
	}, 2*time.Second, 10*time.Millisecond)
}
