package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// uriScheme is the custom URI scheme for storyfeed resources.
const uriScheme = "storyfeed://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "topics",
		Name:        "topics",
		Description: "Topics with their configured keywords, landmarks and organisations",
		MIMEType:    "application/json",
	}, s.handleTopicsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "topics/{topicId}/roundups",
		Name:        "topic-roundups",
		Description: "Daily and weekly roundups of a topic",
		MIMEType:    "application/json",
	}, s.handleRoundupsResource)
}

// handleTopicsResource returns every topic.
func (s *Server) handleTopicsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	topics, err := s.ports.Topics.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing topics: %w", err)
	}

	type topicInfo struct {
		ID            string   `json:"id"`
		Slug          string   `json:"slug"`
		Name          string   `json:"name"`
		Keywords      []string `json:"keywords,omitempty"`
		Landmarks     []string `json:"landmarks,omitempty"`
		Organizations []string `json:"organizations,omitempty"`
	}

	infos := make([]topicInfo, len(topics))
	for i := range topics {
		infos[i] = topicInfo{
			ID:            topics[i].ID,
			Slug:          topics[i].Slug,
			Name:          topics[i].Name,
			Keywords:      topics[i].Keywords,
			Landmarks:     topics[i].Landmarks,
			Organizations: topics[i].Organizations,
		}
	}

	return jsonResult(req.Params.URI, infos)
}

// handleRoundupsResource returns the roundups of one topic.
func (s *Server) handleRoundupsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Ranking == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	topicID := extractTopicID(req.Params.URI)
	if topicID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	roundups, err := s.ports.Ranking.ListRoundups(ctx, topicID)
	if err != nil {
		return nil, fmt.Errorf("listing roundups: %w", err)
	}

	type roundupInfo struct {
		ID          string `json:"id"`
		Kind        string `json:"kind"`
		PeriodStart string `json:"period_start"`
		PeriodEnd   string `json:"period_end"`
		Stories     int    `json:"stories"`
	}

	infos := make([]roundupInfo, len(roundups))
	for i := range roundups {
		infos[i] = roundupInfo{
			ID:          roundups[i].ID,
			Kind:        string(roundups[i].Kind),
			PeriodStart: roundups[i].PeriodStart.Format("2006-01-02"),
			PeriodEnd:   roundups[i].PeriodEnd.Format("2006-01-02"),
			Stories:     len(roundups[i].StoryIDs),
		}
	}

	return jsonResult(req.Params.URI, infos)
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractTopicID extracts the topic ID from a URI like storyfeed://topics/{topicId}/roundups.
func extractTopicID(uri string) string {
	const prefix = uriScheme + "topics/"
	const suffix = "/roundups"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	rest := strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(rest, suffix) {
		return ""
	}
	id := strings.TrimSuffix(rest, suffix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
