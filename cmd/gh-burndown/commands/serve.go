package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/goblinsan/gh-burndown/pkg/chart"
	"github.com/goblinsan/gh-burndown/pkg/config"
	"github.com/goblinsan/gh-burndown/pkg/engine"
	"github.com/goblinsan/gh-burndown/pkg/types"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

const burndownToolName = "sprint_burndown"

// JSON-RPC 2.0 types for MCP protocol
type jsonRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type jsonRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *jsonRPCError   `json:"error,omitempty"`
}

type jsonRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// MCP protocol types
type mcpInitializeResult struct {
	ProtocolVersion string          `json:"protocolVersion"`
	Capabilities    mcpCapabilities `json:"capabilities"`
	ServerInfo      mcpServerInfo   `json:"serverInfo"`
}

type mcpCapabilities struct {
	Tools *struct{} `json:"tools,omitempty"`
}

type mcpServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type mcpToolsListResult struct {
	Tools []mcpToolDef `json:"tools"`
}

type mcpToolDef struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

type mcpToolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

type mcpToolCallResult struct {
	Content []mcpContent `json:"content"`
	IsError bool         `json:"isError,omitempty"`
}

type mcpContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// burndownArgs are per-call overrides of the loaded configuration.
type burndownArgs struct {
	Owner         string   `json:"owner"`
	ProjectNumber int      `json:"project_number"`
	ProjectType   string   `json:"project_type"`
	Repo          string   `json:"repo"`
	SprintStart   string   `json:"sprint_start"`
	SprintEnd     string   `json:"sprint_end"`
	SprintLabel   string   `json:"sprint_label"`
	SprintField   string   `json:"sprint_field"`
	PointsField   string   `json:"points_field"`
	PlannedPoints *float64 `json:"planned_points"`
	SavePath      string   `json:"save_path"`
	ChartType     string   `json:"chart_type"`
}

var burndownToolSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "owner": {"type": "string", "description": "Organization, repository owner or user login owning the project"},
    "project_number": {"type": "integer", "description": "Project number as shown in the board URL"},
    "project_type": {"type": "string", "enum": ["organization", "repository", "user"]},
    "repo": {"type": "string", "description": "Repository name, required for repository projects"},
    "sprint_start": {"type": "string", "description": "ISO date, e.g. 2024-01-01"},
    "sprint_end": {"type": "string", "description": "ISO date, e.g. 2024-01-14"},
    "sprint_label": {"type": "string", "description": "Label (or sprint field value) selecting the sprint's items"},
    "sprint_field": {"type": "string", "description": "Name of the single select, iteration or text field holding the sprint"},
    "points_field": {"type": "string", "description": "Name of the field holding story points"},
    "planned_points": {"type": "number", "description": "Committed points; overrides the item total"},
    "save_path": {"type": "string", "description": "If set, also write the chart to this path"},
    "chart_type": {"type": "string", "enum": ["static", "interactive", "both"]}
  }
}`)

// Seams for tests.
var (
	serveConfig  = loadConfig
	serveFetcher = func(cfg types.Config) engine.ProjectFetcher { return newClient(cfg) }
)

func handleMCPRequest(req jsonRPCRequest) jsonRPCResponse {
	switch req.Method {
	case "initialize":
		return jsonRPCResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result: mcpInitializeResult{
				ProtocolVersion: "2024-11-05",
				Capabilities:    mcpCapabilities{Tools: &struct{}{}},
				ServerInfo:      mcpServerInfo{Name: "gh-burndown", Version: Version},
			},
		}

	case "notifications/initialized":
		// Client acknowledgment, no response needed (notification, no ID)
		return jsonRPCResponse{}

	case "tools/list":
		return jsonRPCResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result: mcpToolsListResult{
				Tools: []mcpToolDef{
					{
						Name:        burndownToolName,
						Description: "Fetches a GitHub Projects V2 board, filters it to a sprint and returns the sprint's items, total story points and the daily remaining and ideal burndown series.",
						InputSchema: burndownToolSchema,
					},
				},
			},
		}

	case "tools/call":
		return handleToolCall(req)

	default:
		return jsonRPCResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &jsonRPCError{Code: -32601, Message: fmt.Sprintf("method not found: %s", req.Method)},
		}
	}
}

func toolError(id json.RawMessage, format string, args ...interface{}) jsonRPCResponse {
	return jsonRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result: mcpToolCallResult{
			Content: []mcpContent{{Type: "text", Text: fmt.Sprintf(format, args...)}},
			IsError: true,
		},
	}
}

func handleToolCall(req jsonRPCRequest) jsonRPCResponse {
	var params mcpToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return jsonRPCResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &jsonRPCError{Code: -32602, Message: fmt.Sprintf("invalid params: %v", err)},
		}
	}

	if params.Name != burndownToolName {
		return toolError(req.ID, "unknown tool: %s", params.Name)
	}

	var args burndownArgs
	if len(params.Arguments) > 0 {
		if err := json.Unmarshal(params.Arguments, &args); err != nil {
			return toolError(req.ID, "failed to parse arguments: %v", err)
		}
	}

	cfg, log, err := serveConfig()
	if err != nil {
		return toolError(req.ID, "failed to load configuration: %v", err)
	}
	args.apply(&cfg)
	if err := config.Check(cfg); err != nil {
		return toolError(req.ID, "%v", err)
	}

	report, err := burndown(context.Background(), cfg, log)
	if err != nil {
		return toolError(req.ID, "burndown failed: %v", err)
	}

	reportJSON, _ := json.Marshal(report)
	return jsonRPCResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: mcpToolCallResult{
			Content: []mcpContent{{Type: "text", Text: string(reportJSON)}},
		},
	}
}

// burndown runs the engine and, when a save path was requested, renders it.
func burndown(ctx context.Context, cfg types.Config, log zerolog.Logger) (*engine.Report, error) {
	report, err := engine.Run(ctx, serveFetcher(cfg), cfg, engine.Options{Logger: log})
	if err != nil {
		return nil, err
	}
	if cfg.SavePath != "" {
		if err := chart.Render(cfg.ChartType, report.Burndown, report.Project.ProjectName, cfg.SavePath, log); err != nil {
			return nil, fmt.Errorf("failed to render chart: %w", err)
		}
	}
	return report, nil
}

func (a burndownArgs) apply(cfg *types.Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.Owner, a.Owner)
	set(&cfg.Repo, a.Repo)
	set(&cfg.SprintStart, a.SprintStart)
	set(&cfg.SprintEnd, a.SprintEnd)
	set(&cfg.SprintLabel, a.SprintLabel)
	set(&cfg.SprintField, a.SprintField)
	set(&cfg.PointsField, a.PointsField)
	// Tool calls only write a chart when asked to.
	cfg.SavePath = a.SavePath
	if a.ProjectNumber != 0 {
		cfg.ProjectNumber = a.ProjectNumber
	}
	if a.ProjectType != "" {
		cfg.ProjectType = types.ProjectType(strings.ToLower(a.ProjectType))
	}
	if a.PlannedPoints != nil {
		cfg.PlannedPoints = a.PlannedPoints
	}
	if a.ChartType != "" {
		cfg.ChartType = config.NormalizeChartType(a.ChartType)
	}
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server over stdio",
	Long:  `Run the MCP server to allow AI agents (Claude, Gemini, etc.) to query sprint burndowns via the Model Context Protocol over stdin/stdout. Logs go to stderr.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
		encoder := json.NewEncoder(os.Stdout)

		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}

			var req jsonRPCRequest
			if err := json.Unmarshal(line, &req); err != nil {
				resp := jsonRPCResponse{
					JSONRPC: "2.0",
					Error:   &jsonRPCError{Code: -32700, Message: fmt.Sprintf("parse error: %v", err)},
				}
				encoder.Encode(resp)
				continue
			}

			resp := handleMCPRequest(req)
			// Notifications (no ID) don't get a response
			if resp.JSONRPC == "" {
				continue
			}
			encoder.Encode(resp)
		}

		return scanner.Err()
	},
}
