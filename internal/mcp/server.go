// Package mcp provides Model Context Protocol server functionality.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/helixml/briefer/domain/icebreaker"
	"github.com/helixml/briefer/domain/transcript"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// defaultLimit applies when a tool call gives no positive limit.
const defaultLimit = 20

// TranscriptLister returns recent transcripts, newest first.
type TranscriptLister interface {
	Recent(ctx context.Context, company string, limit int) ([]transcript.Transcript, error)
}

// IcebreakerLister returns recent icebreakers, newest first.
type IcebreakerLister interface {
	Recent(ctx context.Context, company string, limit int) ([]icebreaker.Icebreaker, error)
}

// Server wraps the MCP server with read-only tools over stored records.
type Server struct {
	mcpServer   *server.MCPServer
	transcripts TranscriptLister
	icebreakers IcebreakerLister
	version     string
	logger      *slog.Logger
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(transcripts TranscriptLister, icebreakers IcebreakerLister, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		transcripts: transcripts,
		icebreakers: icebreakers,
		version:     version,
		logger:      logger,
	}

	mcpServer := server.NewMCPServer(
		"briefer",
		version,
		server.WithToolCapabilities(true),
	)
	s.registerTools(mcpServer)

	s.mcpServer = mcpServer
	return s
}

func (s *Server) registerTools(mcpServer *server.MCPServer) {
	mcpServer.AddTool(mcp.NewTool("list_transcripts",
		mcp.WithDescription("List summarised meeting transcripts, newest first"),
		mcp.WithString("company_name",
			mcp.Description("Only return transcripts for this company (case-insensitive)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of transcripts to return (default: 20)"),
		),
	), s.handleListTranscripts)

	mcpServer.AddTool(mcp.NewTool("list_icebreakers",
		mcp.WithDescription("List generated LinkedIn icebreakers, newest first"),
		mcp.WithString("company_name",
			mcp.Description("Only return icebreakers for this company (case-insensitive)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of icebreakers to return (default: 20)"),
		),
	), s.handleListIcebreakers)

	mcpServer.AddTool(mcp.NewTool("get_version",
		mcp.WithDescription("Get the briefer server version"),
	), s.handleGetVersion)
}

type transcriptResult struct {
	ID            int64     `json:"id"`
	CompanyName   string    `json:"company_name"`
	Attendees     []string  `json:"attendees"`
	Date          string    `json:"date,omitempty"`
	Summary       string    `json:"ai_summary"`
	DateGenerated time.Time `json:"date_generated"`
}

func (s *Server) handleListTranscripts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	records, err := s.transcripts.Recent(ctx, companyArg(request), limitArg(request))
	if err != nil {
		s.logger.Error("list transcripts failed", slog.Any("error", err))
		return mcp.NewToolResultError(fmt.Sprintf("failed to list transcripts: %v", err)), nil
	}

	results := make([]transcriptResult, 0, len(records))
	for _, t := range records {
		r := transcriptResult{
			ID:            t.ID(),
			CompanyName:   t.CompanyName(),
			Attendees:     t.Attendees(),
			Summary:       t.Summary(),
			DateGenerated: t.DateGenerated(),
		}
		if d, ok := t.Date(); ok {
			r.Date = d.Format(transcript.DateLayout)
		}
		results = append(results, r)
	}

	return jsonResult(results)
}

type icebreakerResult struct {
	ID            int64     `json:"id"`
	CompanyName   string    `json:"company_name"`
	LinkedInBio   string    `json:"linkedin_bio"`
	Icebreaker    string    `json:"icebreaker"`
	DateGenerated time.Time `json:"date_generated"`
}

func (s *Server) handleListIcebreakers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	records, err := s.icebreakers.Recent(ctx, companyArg(request), limitArg(request))
	if err != nil {
		s.logger.Error("list icebreakers failed", slog.Any("error", err))
		return mcp.NewToolResultError(fmt.Sprintf("failed to list icebreakers: %v", err)), nil
	}

	results := make([]icebreakerResult, 0, len(records))
	for _, ib := range records {
		results = append(results, icebreakerResult{
			ID:            ib.ID(),
			CompanyName:   ib.CompanyName(),
			LinkedInBio:   ib.LinkedInBio(),
			Icebreaker:    ib.Text(),
			DateGenerated: ib.DateGenerated(),
		})
	}

	return jsonResult(results)
}

func (s *Server) handleGetVersion(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(s.version), nil
}

func companyArg(request mcp.CallToolRequest) string {
	return strings.TrimSpace(request.GetString("company_name", ""))
}

func limitArg(request mcp.CallToolRequest) int {
	if limit := request.GetInt("limit", defaultLimit); limit > 0 {
		return limit
	}
	return defaultLimit
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio runs the MCP server on stdio.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
