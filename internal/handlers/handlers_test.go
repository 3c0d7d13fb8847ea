package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minesweeper-engine/internal/besttime"
	"github.com/vancomm/minesweeper-engine/internal/config"
	"github.com/vancomm/minesweeper-engine/internal/mines"
	"github.com/vancomm/minesweeper-engine/internal/session"
)

func TestMain(m *testing.M) {
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	os.Exit(m.Run())
}

type testServer struct {
	*httptest.Server
	sessions *session.Manager
	tracker  *besttime.Tracker
}

func newTestServer(t *testing.T, params mines.GameParams) *testServer {
	t.Helper()
	log, _ := test.NewNullLogger()
	tracker, err := besttime.NewTracker(
		context.Background(), besttime.NewMemoryStore(), params.Key(), 0, log,
	)
	require.NoError(t, err)
	sessions := session.NewManager(
		params,
		tracker,
		session.NewTokens([]byte("secret"), time.Hour),
		session.Options{TickInterval: 10 * time.Millisecond, Log: log},
	)

	mux := http.NewServeMux()
	NewGameHandler(log, sessions, tracker, config.Upgrader(nil)).Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		srv.Close()
		sessions.Close()
	})
	return &testServer{Server: srv, sessions: sessions, tracker: tracker}
}

func (s *testServer) do(t *testing.T, method, path, token string, out any) int {
	t.Helper()
	req, err := http.NewRequest(method, s.URL+path, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := s.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	if out != nil && res.StatusCode < 300 && res.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(res.Body).Decode(out))
	}
	return res.StatusCode
}

type gameResponse struct {
	ID             string     `json:"id"`
	Size           int        `json:"size"`
	MineCount      int        `json:"mine_count"`
	Status         string     `json:"status"`
	Mode           string     `json:"mode"`
	ElapsedSeconds int        `json:"elapsed_seconds"`
	TimerRunning   bool       `json:"timer_running"`
	RemainingFlags int        `json:"remaining_flags"`
	Grid           [][]string `json:"grid"`
	LosingCell     *PointDTO  `json:"losing_cell"`
}

type eventResponse struct {
	Kind           string `json:"kind"`
	ElapsedSeconds int    `json:"elapsed_seconds"`
	BestSeconds    int    `json:"best_seconds"`
}

type actionResponse struct {
	Event *eventResponse `json:"event"`
	Game  *gameResponse  `json:"game"`
	Error string         `json:"error"`
}

func (s *testServer) newGame(t *testing.T) (string, string) {
	t.Helper()
	var created struct {
		Token string        `json:"token"`
		Game  *gameResponse `json:"game"`
	}
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/v1/game", "", &created))
	require.NotEmpty(t, created.Token)
	return created.Game.ID, created.Token
}

// cells returns the coordinates of mine or safe cells of a live game.
func (s *testServer) cells(t *testing.T, id string, mine bool) (cells [][2]int) {
	t.Helper()
	sess, err := s.sessions.Get(id)
	require.NoError(t, err)
	sess.View(func(game *mines.GameState) {
		grid := game.Grid()
		for row := range grid {
			for col := range grid[row] {
				if grid[row][col].HasMine == mine {
					cells = append(cells, [2]int{row, col})
				}
			}
		}
	})
	return
}

func actionPath(id string, cell [2]int) string {
	return fmt.Sprintf("/v1/game/%s/action?row=%d&col=%d", id, cell[0], cell[1])
}

func TestNewGame(t *testing.T) {
	srv := newTestServer(t, mines.DefaultParams)

	var created struct {
		Token string        `json:"token"`
		Game  *gameResponse `json:"game"`
	}
	status := srv.do(t, http.MethodPost, "/v1/game", "", &created)

	require.Equal(t, http.StatusCreated, status)
	game := created.Game
	assert.NotEmpty(t, game.ID)
	assert.Equal(t, 10, game.Size)
	assert.Equal(t, 10, game.MineCount)
	assert.Equal(t, "in_progress", game.Status)
	assert.Equal(t, "reveal", game.Mode)
	assert.Equal(t, 10, game.RemainingFlags)
	assert.False(t, game.TimerRunning)
	assert.Nil(t, game.LosingCell)
	require.Len(t, game.Grid, 10)
	for _, row := range game.Grid {
		assert.Equal(t, strings.Repeat("#", 10), strings.Join(row, ""))
	}
}

func TestFetchRequiresToken(t *testing.T) {
	srv := newTestServer(t, mines.DefaultParams)
	id, token := srv.newGame(t)
	otherID, _ := srv.newGame(t)

	assert.Equal(t, http.StatusUnauthorized, srv.do(t, http.MethodGet, "/v1/game/"+id, "", nil))
	assert.Equal(t, http.StatusUnauthorized, srv.do(t, http.MethodGet, "/v1/game/"+otherID, token, nil))

	var game gameResponse
	assert.Equal(t, http.StatusOK, srv.do(t, http.MethodGet, "/v1/game/"+id, token, &game))
	assert.Equal(t, id, game.ID)
}

func TestActionBadRequest(t *testing.T) {
	srv := newTestServer(t, mines.DefaultParams)
	id, token := srv.newGame(t)

	for _, query := range []string{"", "?row=1", "?row=a&col=1"} {
		status := srv.do(t, http.MethodPost, "/v1/game/"+id+"/action"+query, token, nil)
		assert.Equal(t, http.StatusBadRequest, status, query)
	}
}

func TestActionOutOfBoundsIsIgnored(t *testing.T) {
	srv := newTestServer(t, mines.DefaultParams)
	id, token := srv.newGame(t)

	var res actionResponse
	status := srv.do(t, http.MethodPost, actionPath(id, [2]int{-1, 50}), token, &res)

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "none", res.Event.Kind)
	assert.False(t, res.Game.TimerRunning)
}

func TestWinRecordsBestTime(t *testing.T) {
	srv := newTestServer(t, mines.GameParams{Size: 4, MineCount: 3})
	id, token := srv.newGame(t)

	var best BestTimeDTO
	require.Equal(t, http.StatusOK, srv.do(t, http.MethodGet, "/v1/besttime", "", &best))
	assert.Equal(t, "4x4:3", best.Board)
	assert.Nil(t, best.BestSeconds)

	var res actionResponse
	for _, cell := range srv.cells(t, id, false) {
		require.Equal(t, http.StatusOK, srv.do(t, http.MethodPost, actionPath(id, cell), token, &res))
		if res.Game.Status != "in_progress" {
			break
		}
		for _, row := range res.Game.Grid {
			assert.NotContains(t, row, "*", "mine exposed during play")
		}
	}

	assert.Equal(t, "won", res.Event.Kind)
	assert.Equal(t, "won", res.Game.Status)
	assert.Equal(t, res.Event.ElapsedSeconds, res.Event.BestSeconds)
	assert.False(t, res.Game.TimerRunning)

	require.Equal(t, http.StatusOK, srv.do(t, http.MethodGet, "/v1/besttime", "", &best))
	require.NotNil(t, best.BestSeconds)
	assert.Equal(t, res.Event.ElapsedSeconds, *best.BestSeconds)
}

func TestLoss(t *testing.T) {
	srv := newTestServer(t, mines.DefaultParams)
	id, token := srv.newGame(t)
	mine := srv.cells(t, id, true)[0]

	var res actionResponse
	require.Equal(t, http.StatusOK, srv.do(t, http.MethodPost, actionPath(id, mine), token, &res))

	assert.Equal(t, "lost", res.Event.Kind)
	assert.Equal(t, "lost", res.Game.Status)
	require.NotNil(t, res.Game.LosingCell)
	assert.Equal(t, PointDTO{mine[0], mine[1]}, *res.Game.LosingCell)
	assert.Equal(t, losingMineGlyph, res.Game.Grid[mine[0]][mine[1]])
	for _, row := range res.Game.Grid {
		assert.NotContains(t, row, "#", "board fully revealed after a loss")
	}
	_, ok := srv.tracker.Best()
	assert.False(t, ok)
}

func TestToggleModeAndFlag(t *testing.T) {
	srv := newTestServer(t, mines.DefaultParams)
	id, token := srv.newGame(t)

	var game gameResponse
	require.Equal(t, http.StatusOK, srv.do(t, http.MethodPost, "/v1/game/"+id+"/mode", token, &game))
	assert.Equal(t, "flag", game.Mode)

	var res actionResponse
	require.Equal(t, http.StatusOK, srv.do(t, http.MethodPost, actionPath(id, [2]int{0, 0}), token, &res))
	assert.Equal(t, "F", res.Game.Grid[0][0])
	assert.Equal(t, 9, res.Game.RemainingFlags)
	assert.True(t, res.Game.TimerRunning)
}

func TestRestart(t *testing.T) {
	srv := newTestServer(t, mines.DefaultParams)
	id, token := srv.newGame(t)
	mine := srv.cells(t, id, true)[0]
	require.Equal(t, http.StatusOK, srv.do(t, http.MethodPost, actionPath(id, mine), token, nil))

	var game gameResponse
	require.Equal(t, http.StatusOK, srv.do(t, http.MethodPost, "/v1/game/"+id+"/restart", token, &game))

	assert.Equal(t, id, game.ID)
	assert.Equal(t, "in_progress", game.Status)
	assert.Equal(t, 0, game.ElapsedSeconds)
	assert.Nil(t, game.LosingCell)
}

func TestDelete(t *testing.T) {
	srv := newTestServer(t, mines.DefaultParams)
	id, token := srv.newGame(t)

	assert.Equal(t, http.StatusNoContent, srv.do(t, http.MethodDelete, "/v1/game/"+id, token, nil))
	assert.Equal(t, http.StatusNotFound, srv.do(t, http.MethodGet, "/v1/game/"+id, token, nil))
	assert.Equal(t, 0, srv.sessions.Len())
}

func dial(t *testing.T, srv *testServer, id, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/game/" + id + "/connect?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readReply skips pushed updates until the answer to a message arrives.
func readReply(t *testing.T, conn *websocket.Conn) actionResponse {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var res actionResponse
		require.NoError(t, conn.ReadJSON(&res))
		if res.Event != nil || res.Error != "" {
			return res
		}
	}
}

func TestConnect(t *testing.T) {
	srv := newTestServer(t, mines.DefaultParams)
	id, token := srv.newGame(t)
	conn := dial(t, srv, id, token)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("g")))
	res := readReply(t, conn)
	assert.Equal(t, "none", res.Event.Kind)
	assert.Equal(t, id, res.Game.ID)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("m\nm\nm")))
	res = readReply(t, conn)
	assert.Equal(t, "flag", res.Game.Mode)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("a 1 x")))
	res = readReply(t, conn)
	assert.Equal(t, "second argument must be an int", res.Error)

	mine := srv.cells(t, id, true)[0]
	cmd := fmt.Sprintf("m\na %d %d", mine[0], mine[1])
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(cmd)))
	res = readReply(t, conn)
	assert.Equal(t, "lost", res.Event.Kind)
	assert.Equal(t, "lost", res.Game.Status)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("n")))
	res = readReply(t, conn)
	assert.Equal(t, "in_progress", res.Game.Status)
}

func TestConnectPushesTicks(t *testing.T) {
	srv := newTestServer(t, mines.DefaultParams)
	id, token := srv.newGame(t)
	conn := dial(t, srv, id, token)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("m\na 0 0")))
	readReply(t, conn)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var res actionResponse
		require.NoError(t, conn.ReadJSON(&res))
		if res.Event == nil && res.Game.ElapsedSeconds > 0 {
			break
		}
	}
}

func TestConnectClosedWithSession(t *testing.T) {
	srv := newTestServer(t, mines.DefaultParams)
	id, token := srv.newGame(t)
	conn := dial(t, srv, id, token)

	require.NoError(t, srv.sessions.Remove(id))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			assert.NotErrorIs(t, err, os.ErrDeadlineExceeded)
			return
		}
	}
}

func TestConnectRequiresToken(t *testing.T) {
	srv := newTestServer(t, mines.DefaultParams)
	id, _ := srv.newGame(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/game/" + id + "/connect"
	_, res, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}
