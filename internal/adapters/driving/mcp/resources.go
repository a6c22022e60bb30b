package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for storm resources.
	uriScheme = "storm://"

	// contextWindow is the window served by the report context resource.
	contextWindow = 2
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "companies",
		Name:        "companies",
		Description: "Canonical names of every company with ingested reports",
		MIMEType:    "application/json",
	}, s.handleCompaniesResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "reports/{reportId}/context/{seq}",
		Name:        "report-context",
		Description: "Fragments surrounding a sequence position of a report",
		MIMEType:    "application/json",
	}, s.handleContextResource)
}

// handleCompaniesResource returns the company roster.
func (s *Server) handleCompaniesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	names := []string{}
	if s.ports.Companies != nil {
		listed, err := s.ports.Companies.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing companies: %w", err)
		}
		if listed != nil {
			names = listed
		}
	}
	return jsonResource(req.Params.URI, names)
}

// handleContextResource returns the fragments around storm://reports/{id}/context/{seq}.
func (s *Server) handleContextResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Reports == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	reportID, seq, ok := parseContextURI(req.Params.URI)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	fragments, err := s.ports.Reports.Context(ctx, reportID, seq, contextWindow)
	if err != nil {
		return nil, fmt.Errorf("reading context: %w", err)
	}

	type fragmentInfo struct {
		ID            int64  `json:"id"`
		ChunkType     string `json:"chunk_type"`
		SectionPath   string `json:"section_path"`
		SequenceOrder int    `json:"sequence_order"`
		Content       string `json:"content"`
	}
	infos := make([]fragmentInfo, len(fragments))
	for i := range fragments {
		infos[i] = fragmentInfo{
			ID:            fragments[i].ID,
			ChunkType:     fragments[i].ChunkType.String(),
			SectionPath:   fragments[i].SectionPath,
			SequenceOrder: fragments[i].SequenceOrder,
			Content:       fragments[i].RawContent,
		}
	}
	return jsonResource(req.Params.URI, infos)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
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

// parseContextURI extracts the report id and sequence from
// storm://reports/{reportId}/context/{seq}.
func parseContextURI(uri string) (int64, int, bool) {
	const prefix = uriScheme + "reports/"

	rest, found := strings.CutPrefix(uri, prefix)
	if !found {
		return 0, 0, false
	}
	idPart, seqPart, found := strings.Cut(rest, "/context/")
	if !found {
		return 0, 0, false
	}

	reportID, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return 0, 0, false
	}
	seq, err := strconv.Atoi(seqPart)
	if err != nil {
		return 0, 0, false
	}
	return reportID, seq, true
}
