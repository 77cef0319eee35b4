// Package testserver boots a complete panel host for end-to-end tests.
package testserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/rpggio/filetracker/internal/auth"
	"github.com/rpggio/filetracker/internal/domain/project"
	"github.com/rpggio/filetracker/internal/domain/session"
	"github.com/rpggio/filetracker/internal/domain/user"
	"github.com/rpggio/filetracker/internal/mcp"
	"github.com/rpggio/filetracker/internal/message"
	"github.com/rpggio/filetracker/internal/router"
	"github.com/rpggio/filetracker/internal/sqlite"
	"github.com/rpggio/filetracker/internal/transport"
	"github.com/rpggio/filetracker/internal/workspace"
)

// Browser stands in for the user's browser during the login flow. Tests
// set Visit before triggering a login; it receives the login page URL.
type Browser struct {
	mu    sync.Mutex
	Visit func(loginURL string)
}

func (b *Browser) Open(url string) error {
	b.mu.Lock()
	visit := b.Visit
	b.mu.Unlock()
	if visit != nil {
		go visit(url)
	}
	return nil
}

// SetVisit replaces the browser behavior.
func (b *Browser) SetVisit(fn func(loginURL string)) {
	b.mu.Lock()
	b.Visit = fn
	b.mu.Unlock()
}

type TestServer struct {
	Server    *httptest.Server
	DB        *sqlite.DB
	Sessions  *session.Store
	Projects  *project.Service
	Hub       *transport.Hub
	Browser   *Browser
	Workspace *workspace.Enumerator
}

// New starts a panel host whose workspace is folders.
func New(t *testing.T, folders ...string) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	sessions := session.NewStore(sqlite.NewKVRepository(db), nil)
	projects := project.NewService(sqlite.NewProjectRepository(db), nil)
	hub := transport.NewHub(nil)
	browser := &Browser{}
	ws := workspace.New(folders)

	authServer := auth.NewServer(auth.Config{Host: "127.0.0.1", Port: 0}, sessions, browser, hub, hub, nil)
	r := router.New(sessions, projects, ws, authServer, hub)
	server := httptest.NewServer(transport.NewServer(r, hub, nil))

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return &TestServer{
		Server:    server,
		DB:        db,
		Sessions:  sessions,
		Projects:  projects,
		Hub:       hub,
		Browser:   browser,
		Workspace: ws,
	}
}

// Frame is a decoded host frame.
type Frame struct {
	Type  string          `json:"type"`
	Level string          `json:"level,omitempty"`
	Value json.RawMessage `json:"value,omitempty"`
}

// Text decodes a string value.
func (f Frame) Text(t *testing.T) string {
	t.Helper()
	var s string
	require.NoError(t, json.Unmarshal(f.Value, &s))
	return s
}

// Panel is a connected panel.
type Panel struct {
	t    *testing.T
	conn *websocket.Conn
}

// Open connects a panel and waits for its first render.
func (ts *TestServer) Open(t *testing.T) (*Panel, string) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.Server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	p := &Panel{t: t, conn: conn}
	return p, p.Render()
}

// Send posts a request frame.
func (p *Panel) Send(req message.Request) {
	p.t.Helper()
	data, err := message.EncodeRequest(req)
	require.NoError(p.t, err)
	require.NoError(p.t, p.conn.WriteMessage(websocket.TextMessage, data))
}

// Next reads the next frame.
func (p *Panel) Next() Frame {
	p.t.Helper()
	require.NoError(p.t, p.conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var f Frame
	require.NoError(p.t, p.conn.ReadJSON(&f))
	return f
}

// Until reads frames until one of type typ arrives and returns it together
// with every frame read before it.
func (p *Panel) Until(typ string) (Frame, []Frame) {
	p.t.Helper()
	var seen []Frame
	for {
		f := p.Next()
		if f.Type == typ {
			return f, seen
		}
		seen = append(seen, f)
	}
}

// Render reads up to the next render frame and returns its HTML.
func (p *Panel) Render() string {
	p.t.Helper()
	f, _ := p.Until(message.TypeRender)
	return f.Text(p.t)
}

// Context is a short deadline for direct store checks.
func Context(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// LoginAs returns a browser visit that completes the login with u the way
// the login page's local form does.
func LoginAs(t *testing.T, u user.User) func(string) {
	return func(loginURL string) {
		encoded, err := user.Encode(u)
		if err != nil {
			t.Errorf("encode user: %v", err)
			return
		}
		visit(t, strings.TrimSuffix(loginURL, "/login")+"/authenticated?user="+encoded)
	}
}

// VisitRaw returns a browser visit that hands raw back as the profile.
func VisitRaw(t *testing.T, raw string) func(string) {
	return func(loginURL string) {
		visit(t, strings.TrimSuffix(loginURL, "/login")+"/authenticated?user="+url.QueryEscape(raw))
	}
}

func visit(t *testing.T, target string) {
	resp, err := http.Get(target)
	if err != nil {
		t.Errorf("visit %s: %v", target, err)
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

// MCP connects an agent client to an MCP server sharing the host's storage
// and workspace.
func (ts *TestServer) MCP(t *testing.T) *sdkmcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()

	server := mcp.NewServer(mcp.Config{
		Sessions:  ts.Sessions,
		Projects:  ts.Projects,
		Workspace: ts.Workspace,
		Version:   "test",
	})
	ss, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ss.Close() })

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { cs.Close() })
	return cs
}
