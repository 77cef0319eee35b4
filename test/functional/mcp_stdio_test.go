package functional_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

// stdioSession wraps an MCP client session talking to `filetracker mcp`.
type stdioSession struct {
	session *sdkmcp.ClientSession
	cancel  context.CancelFunc
}

func newStdioSession(t *testing.T, workspace string, extraEnv ...string) *stdioSession {
	t.Helper()

	binaryPath := "./bin/filetracker"
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		binaryPath = "../../bin/filetracker"
		if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
			t.Skip("filetracker binary not found. Run 'go build -o bin/filetracker ./cmd/filetracker' first.")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	cmd := exec.CommandContext(ctx, binaryPath, "mcp", workspace)
	cmd.Env = append(os.Environ(),
		"FILETRACKER_DB_PATH="+filepath.Join(t.TempDir(), "filetracker.db"),
		"FILETRACKER_STORE_BACKEND=sqlite",
	)
	cmd.Env = append(cmd.Env, extraEnv...)

	client := sdkmcp.NewClient(&sdkmcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, &sdkmcp.CommandTransport{Command: cmd}, nil)
	if err != nil {
		cancel()
		t.Fatalf("Failed to connect: %v", err)
	}

	t.Cleanup(func() {
		session.Close()
		cancel()
	})

	return &stdioSession{session: session, cancel: cancel}
}

func (s *stdioSession) call(t *testing.T, name string, args map[string]any) *sdkmcp.CallToolResult {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if args == nil {
		args = map[string]any{}
	}
	result, err := s.session.CallTool(ctx, &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err, "CallTool %s failed", name)
	require.NotEmpty(t, result.Content, "Tool %s returned no content", name)
	return result
}

func text(t *testing.T, result *sdkmcp.CallToolResult) string {
	t.Helper()
	for _, content := range result.Content {
		if textContent, ok := content.(*sdkmcp.TextContent); ok {
			return textContent.Text
		}
	}
	t.Fatal("no text content")
	return ""
}

func TestStdioFunctional_ProtocolCompliance(t *testing.T) {
	s := newStdioSession(t, t.TempDir())

	initResult := s.session.InitializeResult()
	require.NotNil(t, initResult)
	require.NotNil(t, initResult.ServerInfo)
	require.Equal(t, "filetracker", initResult.ServerInfo.Name)
	require.NotEmpty(t, initResult.Instructions)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tools, err := s.session.ListTools(ctx, nil)
	require.NoError(t, err)

	toolMap := make(map[string]*sdkmcp.Tool)
	for _, tool := range tools.Tools {
		toolMap[tool.Name] = tool
	}
	for _, name := range []string{"whoami", "list_projects", "snapshot_workspace", "delete_project"} {
		require.Contains(t, toolMap, name)
		require.NotEmpty(t, toolMap[name].Description)
	}
}

func TestStdioFunctional_RequiresLogin(t *testing.T) {
	s := newStdioSession(t, t.TempDir())

	result := s.call(t, "whoami", nil)
	require.True(t, result.IsError)
	require.Contains(t, text(t, result), "NOT_LOGGED_IN")
}

func TestStdioFunctional_DocumentationResource(t *testing.T) {
	s := newStdioSession(t, t.TempDir())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resources, err := s.session.ListResources(ctx, nil)
	require.NoError(t, err)
	require.NotEmpty(t, resources.Resources)

	read, err := s.session.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: "filetracker://docs/snapshots"})
	require.NoError(t, err)
	require.NotEmpty(t, read.Contents)
	require.Equal(t, "text/markdown", read.Contents[0].MIMEType)
}

func TestStdioFunctional_LogFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "filetracker.log")
	s := newStdioSession(t, t.TempDir(),
		"FILETRACKER_LOG_PATH="+logPath,
		"FILETRACKER_LOG_LEVEL=debug",
	)

	_ = s.call(t, "list_projects", nil)

	require.Eventually(t, func() bool {
		data, err := os.ReadFile(logPath)
		if err != nil {
			return false
		}
		text := string(data)
		return strings.Contains(text, `msg="mcp request"`) &&
			strings.Contains(text, "tool=list_projects")
	}, 5*time.Second, 100*time.Millisecond)
}
