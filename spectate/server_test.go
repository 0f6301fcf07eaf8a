package spectate

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lixenwraith/hushmaze/audio"
	"github.com/lixenwraith/hushmaze/level"
	"github.com/lixenwraith/hushmaze/maze"
	"github.com/lixenwraith/hushmaze/sound"
	"github.com/lixenwraith/hushmaze/vmath"
)

type stillPlayback struct{ stopped bool }

func (p *stillPlayback) Position() float64 { return 0 }
func (p *stillPlayback) Length() float64   { return 2 }
func (p *stillPlayback) Playing() bool     { return !p.stopped }
func (p *stillPlayback) SetPaused(bool)    {}
func (p *stillPlayback) Stop()             { p.stopped = true }

type stillBackend struct{}

func (stillBackend) Play(audio.Clip, float64) (audio.Playback, error) {
	return &stillPlayback{}, nil
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func publishedServer(t *testing.T) (*Server, *maze.Grid) {
	t.Helper()
	g, err := maze.GenerateEmpty(4, 3)
	if err != nil {
		t.Fatal(err)
	}
	s := NewServer(Options{EdgeThickness: 0.2, AgentRadius: 0.5})
	s.Publish(level.Snapshot{Grid: g, CellSize: 4, Exit: maze.Point{X: 3, Y: 2}})
	return s, g
}

func TestHealthAndUnpublished(t *testing.T) {
	s := NewServer(Options{})
	if rec := get(t, s, "/healthz"); rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("healthz = %d %q", rec.Code, rec.Body.String())
	}
	for _, path := range []string{"/api/maze", "/api/sounds", "/api/state", "/api/path?sx=1&sy=1&ex=2&ey=2"} {
		if rec := get(t, s, path); rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s before publish = %d", path, rec.Code)
		}
	}
}

func TestMazeEndpoint(t *testing.T) {
	s, g := publishedServer(t)

	rec := get(t, s, "/api/maze")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var resp MazeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Width != 4 || resp.Height != 3 || resp.CellSize != 4 {
		t.Errorf("dimensions = %+v", resp)
	}
	if resp.Walls[0][0] != int(maze.WallLeft|maze.WallBack) {
		t.Errorf("corner walls = %b", resp.Walls[0][0])
	}
	if resp.ASCII != g.String() {
		t.Error("ascii does not match grid")
	}
	if resp.Exit != (maze.Point{X: 3, Y: 2}) {
		t.Errorf("exit = %v", resp.Exit)
	}
}

func TestPathEndpoint(t *testing.T) {
	s, _ := publishedServer(t)

	rec := get(t, s, "/api/path?sx=2&sy=2&ex=14&ey=10")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var resp PathResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	n := len(resp.Waypoints)
	if n < 2 || resp.Waypoints[0] != (vmath.Vec2{X: 2, Y: 2}) || resp.Waypoints[n-1] != (vmath.Vec2{X: 14, Y: 10}) {
		t.Errorf("waypoints = %v", resp.Waypoints)
	}
	if resp.Distance <= 0 {
		t.Errorf("distance = %v", resp.Distance)
	}

	tests := []struct {
		query string
		code  int
	}{
		{"sx=a&sy=2&ex=14&ey=10", http.StatusBadRequest},
		{"sx=2&sy=2&ex=14", http.StatusBadRequest},
		{"sx=2&sy=2&ex=14&ey=10&r=-1", http.StatusBadRequest},
		{"sx=2&sy=2&ex=40&ey=10", http.StatusNotFound},
		{"sx=2&sy=2&ex=6&ey=2&r=0", http.StatusOK},
	}
	for _, tt := range tests {
		if rec := get(t, s, "/api/path?"+tt.query); rec.Code != tt.code {
			t.Errorf("%s = %d, want %d", tt.query, rec.Code, tt.code)
		}
	}
}

func TestSoundsEndpoint(t *testing.T) {
	s, g := publishedServer(t)
	if body := get(t, s, "/api/sounds").Body.String(); strings.TrimSpace(body) != "[]" {
		t.Errorf("empty sounds = %q", body)
	}

	s.Publish(level.Snapshot{Grid: g, CellSize: 4, Sounds: []level.SoundState{
		{ID: 9, Category: "item", Radius: 3, Alpha: 0.5},
	}})
	var sounds []level.SoundState
	if err := json.Unmarshal(get(t, s, "/api/sounds").Body.Bytes(), &sounds); err != nil {
		t.Fatal(err)
	}
	if len(sounds) != 1 || sounds[0].ID != 9 || sounds[0].Category != "item" {
		t.Errorf("sounds = %+v", sounds)
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	h := NewHub()
	c := newConnection(nil, 1)
	h.register(c)

	h.Broadcast([]byte("a"))
	h.Broadcast([]byte("b"))
	if h.Clients() != 0 || h.Dropped() != 1 {
		t.Fatalf("clients %d dropped %d", h.Clients(), h.Dropped())
	}
	if msg := <-c.send; string(msg) != "a" {
		t.Errorf("first message = %q", msg)
	}
	if _, ok := <-c.send; ok {
		t.Error("queue not closed after drop")
	}

	// Unregistering a dropped client is a no-op
	h.unregister(c)
}

func TestHubRelaysRouter(t *testing.T) {
	f, err := sound.NewField(sound.DefaultFieldConfig(), stillBackend{})
	if err != nil {
		t.Fatal(err)
	}
	h := NewHub()
	h.Attach(f.Router())
	c := newConnection(nil, 4)
	h.register(c)

	hd, _ := f.Emit(vmath.Vec2{X: 1, Y: 2}, sound.Monster, sound.Monster, 1)
	var m Message
	if err := json.Unmarshal(<-c.send, &m); err != nil {
		t.Fatal(err)
	}
	if m.Type != MessageAdded || m.ID != hd.ID() || m.Class != "monster" || m.Position == nil || *m.Position != (vmath.Vec2{X: 1, Y: 2}) {
		t.Errorf("added message = %+v", m)
	}
	if m.Duration != 2 {
		t.Errorf("duration = %v", m.Duration)
	}

	f.Stop(hd)
	m = Message{}
	if err := json.Unmarshal(<-c.send, &m); err != nil {
		t.Fatal(err)
	}
	if m.Type != MessageRemoved || m.ID != hd.ID() {
		t.Errorf("removed message = %+v", m)
	}

	h.Detach()
	if f.Router().SubscriberCount(sound.Monster) != 0 {
		t.Error("hub still subscribed after Detach")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not reached")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWebsocketFeed(t *testing.T) {
	s := NewServer(Options{})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return s.Hub().Clients() == 1 })

	s.Hub().Broadcast([]byte(`{"type":"added","id":1,"class":"item"}`))
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := ws.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(msg), `"added"`) {
		t.Errorf("message = %s", msg)
	}

	ws.Close()
	waitFor(t, func() bool { return s.Hub().Clients() == 0 })
}
