// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the Trakker catalog to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/trakker/internal/catalog"
	"github.com/starford/trakker/internal/models"
	"github.com/starford/trakker/internal/schema"
)

const formatURI = "trakker://document-format"

// Server wraps the MCP server with catalog tools.
type Server struct {
	mcp    *server.MCPServer
	svc    *catalog.Service
	dumper schema.Dumper
}

// New creates a new MCP server with all catalog tools registered.
func New(svc *catalog.Service, dumper schema.Dumper) *Server {
	s := &Server{svc: svc, dumper: dumper}

	s.mcp = server.NewMCPServer(
		"Trakker",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_artists",
		mcp.WithDescription("List every artist with nested tracks, links and tags."),
	), s.listArtists)

	s.mcp.AddTool(mcp.NewTool("get_artist",
		mcp.WithDescription("Fetch one artist by id."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Artist id")),
	), s.getArtist)

	s.mcp.AddTool(mcp.NewTool("get_track",
		mcp.WithDescription("Fetch one track by id, including its artist, links and tags."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Track id")),
	), s.getTrack)

	s.mcp.AddTool(mcp.NewTool("get_link",
		mcp.WithDescription("Fetch one link by id, including its artist, track and tags."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Link id")),
	), s.getLink)

	s.mcp.AddTool(mcp.NewTool("get_tag",
		mcp.WithDescription("Fetch one tag by id, including every artist, track and link it labels."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Tag id")),
	), s.getTag)

	s.mcp.AddTool(mcp.NewTool("create_tag",
		mcp.WithDescription("Create a tag. Names are unique across tags."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Tag name")),
	), s.createTag)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Document Format",
			mcp.WithResourceDescription("Shape of the JSON documents returned by the catalog tools."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listArtists(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	artists, err := s.svc.ListArtists(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.dumper.Artists(artists))
}

func (s *Server) getArtist(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return getByID(ctx, req, s.svc.GetArtist, s.dumper.Artist)
}

func (s *Server) getTrack(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return getByID(ctx, req, s.svc.GetTrack, s.dumper.Track)
}

func (s *Server) getLink(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return getByID(ctx, req, s.svc.GetLink, s.dumper.Link)
}

func (s *Server) getTag(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return getByID(ctx, req, s.svc.GetTag, s.dumper.Tag)
}

func (s *Server) createTag(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if name == "" {
		return mcp.NewToolResultError("name must not be empty"), nil
	}
	tag, err := s.svc.CreateTag(ctx, &models.Tag{Name: name})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.dumper.Tag(tag))
}

func (s *Server) readFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     DocumentFormat,
		},
	}, nil
}

func getByID[T any](
	ctx context.Context,
	req mcp.CallToolRequest,
	get func(context.Context, int64) (*T, error),
	dump func(*T) schema.Document,
) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if id < 1 {
		return mcp.NewToolResultError(fmt.Sprintf("invalid id: %d", id)), nil
	}
	item, err := get(ctx, int64(id))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(dump(item))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("mcpserver: encode result: %w", err)
	}
	return mcp.NewToolResultText(string(out)), nil
}
