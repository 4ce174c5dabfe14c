// Package tools holds the static registry of agent-callable tools. The
// same entries back the eino agents and the MCP server.
package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"stx-trader/internal/domain"

	"github.com/cloudwego/eino/components/tool"
	t_utils "github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Tool is one registry entry: a callable plus the schema advertised to
// language models and MCP clients.
type Tool struct {
	Name        string                           `json:"name"`
	Title       string                           `json:"title"`
	Description string                           `json:"description"`
	Params      map[string]*schema.ParameterInfo `json:"params,omitempty"`

	invokable tool.InvokableTool
	addMCP    func(s *mcp.Server)
}

// Invokable returns the eino form of the tool.
func (t *Tool) Invokable() tool.InvokableTool {
	return t.invokable
}

// Call runs the tool with JSON arguments and returns its JSON output.
func (t *Tool) Call(ctx context.Context, argumentsJSON string) (string, error) {
	return t.invokable.InvokableRun(ctx, argumentsJSON)
}

// newTool binds fn under name for both eino and MCP.
func newTool[In, Out any](name, title, description string, params map[string]*schema.ParameterInfo, fn func(context.Context, In) (Out, error)) *Tool {
	info := &schema.ToolInfo{
		Name:        name,
		Desc:        description,
		ParamsOneOf: schema.NewParamsOneOfByParams(params),
	}
	return &Tool{
		Name:        name,
		Title:       title,
		Description: description,
		Params:      params,
		invokable:   t_utils.NewTool(info, fn),
		addMCP: func(s *mcp.Server) {
			// Outputs carry decimals that marshal as strings, so no output
			// schema is inferred.
			mcp.AddTool(s, &mcp.Tool{Name: name, Title: title, Description: description},
				func(ctx context.Context, _ *mcp.CallToolRequest, in In) (*mcp.CallToolResult, any, error) {
					out, err := fn(ctx, in)
					if err != nil {
						return nil, nil, err
					}
					return nil, out, nil
				})
		},
	}
}

// Registry maps tool names to tools. It is filled once at startup.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*Tool
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]*Tool)}
}

func (r *Registry) Register(t *Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tools[t.Name]; ok {
		return fmt.Errorf("register %s: %w", t.Name, domain.ErrToolAlreadyExists)
	}
	r.tools[t.Name] = t
	return nil
}

func (r *Registry) Get(name string) (*Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, domain.ErrToolNotFound)
	}
	return t, nil
}

// List returns all tools sorted by name.
func (r *Registry) List() []*Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Tool, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// EinoTools resolves names to tools for an agent's tool node.
func (r *Registry) EinoTools(names ...string) ([]tool.BaseTool, error) {
	out := make([]tool.BaseTool, 0, len(names))
	for _, name := range names {
		t, err := r.Get(name)
		if err != nil {
			return nil, err
		}
		out = append(out, t.invokable)
	}
	return out, nil
}
