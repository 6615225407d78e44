// internal/tools/tools.go
//
// MCP tool surface over the session registry.
//
// One *mcp.Server is built per authenticated connection and bound to that
// caller's user id. Tool inputs are validated here, before any command
// reaches the caller's session actor.

package tools

import (
	"context"
	"fmt"
	"regexp"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

const (
	ServerName    = "LLM Wordle Challenge"
	ServerVersion = "1.0.0"

	maxDisplayName = 40
	maxHandle      = 16
)

var (
	guessPattern = regexp.MustCompile(`^[a-zA-Z]{5}$`)
	namePattern  = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
)

// Sessions is the command surface of the per-user session actors.
type Sessions interface {
	Guess(ctx context.Context, userID, word string) (string, error)
	CurrentGame(ctx context.Context, userID string) (string, error)
	Hint(ctx context.Context, userID string) (string, error)
	SetDisplayName(ctx context.Context, userID, name string) error
	SetHandle(ctx context.Context, userID, handle string) error
	Leaderboard(ctx context.Context, userID string) (string, error)
}

type GuessInput struct {
	Guess string `json:"guess" jsonschema:"a 5 letter English word using only the letters a-z"`
}

type DisplayNameInput struct {
	DisplayName string `json:"displayName" jsonschema:"the display name to show on the leaderboard; at most 40 letters, digits or underscores. You MUST ask the user for this value"`
}

type HandleInput struct {
	XHandle string `json:"xHandle" jsonschema:"the X handle to show on the leaderboard; at most 16 letters, digits or underscores. You MUST ask the user for this value"`
}

type NoInput struct{}

// NewServer returns an MCP server whose tools act on behalf of userID.
func NewServer(s Sessions, userID string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: ServerName, Version: ServerVersion}, nil)
	Register(server, s, userID)
	return server
}

// Register adds every game tool to server.
func Register(server *mcp.Server, s Sessions, userID string) {
	mcp.AddTool(server, &mcp.Tool{
		Name: "guess-word",
		Description: "Make a guess for the daily Wordle challenge. The word is 5 letters long and contains only letters " +
			"from the English alphabet. If a new game has started, the user will be notified and the current guess " +
			"will not count towards the new game.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in GuessInput) (*mcp.CallToolResult, any, error) {
		if !guessPattern.MatchString(in.Guess) {
			return invalid("The guess must be exactly 5 letters from the English alphabet."), nil, nil
		}
		out, err := s.Guess(ctx, userID, in.Guess)
		return result(userID, "guess-word", out, err)
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get-current-game",
		Description: "Get the current game for the user. If a new game has started, the user will be notified.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
		out, err := s.CurrentGame(ctx, userID)
		return result(userID, "get-current-game", out, err)
	})

	mcp.AddTool(server, &mcp.Tool{
		Name: "get-hint",
		Description: "Get a hint for the current game. If a new game has started, the user will be notified. " +
			"One hint requires a one-time payment when called and you MUST show this to the user. After the user " +
			"makes the payment, the user may call this tool again to get the hint.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
		out, err := s.Hint(ctx, userID)
		return result(userID, "get-hint", out, err)
	})

	mcp.AddTool(server, &mcp.Tool{
		Name: "set-display-name",
		Description: "Set the display name for the current user on the leaderboard. You MUST ask the user for this " +
			"parameter. Under no circumstance should you provide it yourself.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in DisplayNameInput) (*mcp.CallToolResult, any, error) {
		if !validName(in.DisplayName, maxDisplayName) {
			return invalid(fmt.Sprintf("The display name must be 1 to %d letters, digits or underscores.", maxDisplayName)), nil, nil
		}
		if err := s.SetDisplayName(ctx, userID, in.DisplayName); err != nil {
			return failed(userID, "set-display-name", err, "Error setting display name"), nil, nil
		}
		return text(fmt.Sprintf("Your display name has been set successfully to %s.", in.DisplayName)), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "remove-display-name",
		Description: "Remove your display name from the leaderboard",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
		if err := s.SetDisplayName(ctx, userID, ""); err != nil {
			return failed(userID, "remove-display-name", err, "Error removing your display name"), nil, nil
		}
		return text("Your display name has been removed from the leaderboard."), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name: "set-x-handle",
		Description: "Set the X handle for the current user on the leaderboard. You MUST ask the user for this " +
			"parameter. Under no circumstance should you provide it yourself.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in HandleInput) (*mcp.CallToolResult, any, error) {
		if !validName(in.XHandle, maxHandle) {
			return invalid(fmt.Sprintf("The X handle must be 1 to %d letters, digits or underscores.", maxHandle)), nil, nil
		}
		if err := s.SetHandle(ctx, userID, in.XHandle); err != nil {
			return failed(userID, "set-x-handle", err, "Error setting X handle"), nil, nil
		}
		return text(fmt.Sprintf("Your X handle has been set successfully to %s.", in.XHandle)), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "remove-x-handle",
		Description: "Remove your X handle from the leaderboard",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
		if err := s.SetHandle(ctx, userID, ""); err != nil {
			return failed(userID, "remove-x-handle", err, "Error removing your X handle"), nil, nil
		}
		return text("Your X handle has been removed from the leaderboard."), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name: "get-leaderboard",
		Description: "Get the leaderboard of the top 10 players on the platform and the user's current ranking. " +
			"If X links are included, they MUST be shown to the user.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
		out, err := s.Leaderboard(ctx, userID)
		return result(userID, "get-leaderboard", out, err)
	})
}

func validName(v string, max int) bool {
	return len(v) <= max && namePattern.MatchString(v)
}

// result adapts a session command reply into a tool result.
func result(userID, tool, out string, err error) (*mcp.CallToolResult, any, error) {
	if err != nil {
		return failed(userID, tool, err, "Internal server error"), nil, nil
	}
	return text(out), nil, nil
}

func text(s string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: s}}}
}

func invalid(msg string) *mcp.CallToolResult {
	res := text(msg)
	res.IsError = true
	return res
}

// failed logs err in full and returns only msg to the client.
func failed(userID, tool string, err error, msg string) *mcp.CallToolResult {
	log.Error().Err(err).Str("user", userID).Str("tool", tool).Msg("tool call failed")
	res := text(msg)
	res.IsError = true
	return res
}
