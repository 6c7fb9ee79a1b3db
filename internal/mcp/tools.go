package mcp

import (
	"context"

	"github.com/felixgeelhaar/recall/internal/memory"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type scored[R any] struct {
	Record R   `json:"record"`
	Score  int `json:"score"`
}

// recordTools builds the tools every store kind shares. prefix names the
// record kind in tool names, e.g. "command_search".
func recordTools[R memory.Record[R]](s *Server, prefix string, st *memory.Store[R]) []server.ServerTool {
	return []server.ServerTool{
		tool(mcp.NewTool(prefix+"_search",
			mcp.WithDescription("Search "+st.Kind()+" by relevance. Does not count as a use."),
			mcp.WithString("query", mcp.Required(), mcp.Description("Case-insensitive substring to look for")),
			limitArg(),
		), func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			q, err := req.RequireString("query")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			matches := st.SearchScored(q, limit(req))
			out := make([]scored[R], len(matches))
			for i, m := range matches {
				out[i] = scored[R]{Record: m.Record, Score: m.Score}
			}
			return jsonResult(out)
		}),

		tool(mcp.NewTool(prefix+"_get",
			mcp.WithDescription("Fetch a "+prefix+" by id and record the use."),
			mcp.WithString("id", mcp.Required()),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := req.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			r, ok, err := st.Get(ctx, id)
			if err != nil {
				return s.storeError(prefix+"_get", err), nil
			}
			if !ok {
				return notFound(prefix, id), nil
			}
			return jsonResult(r)
		}),

		tool(mcp.NewTool(prefix+"_delete",
			mcp.WithDescription("Delete a "+prefix+" by id."),
			mcp.WithDestructiveHintAnnotation(true),
			mcp.WithString("id", mcp.Required()),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := req.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			ok, err := st.Delete(ctx, id)
			if err != nil {
				return s.storeError(prefix+"_delete", err), nil
			}
			if !ok {
				return notFound(prefix, id), nil
			}
			return mcp.NewToolResultText("deleted " + id), nil
		}),

		tool(mcp.NewTool(prefix+"_list_category",
			mcp.WithDescription("List the "+st.Kind()+" in a category."),
			mcp.WithString("category", mcp.Required()),
		), func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			c, err := req.RequireString("category")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return jsonResult(st.ListByCategory(c))
		}),

		tool(mcp.NewTool(prefix+"_most_used",
			mcp.WithDescription("List the most used "+st.Kind()+"."),
			limitArg(),
		), func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return jsonResult(st.MostUsed(limit(req)))
		}),

		tool(mcp.NewTool(prefix+"_recent",
			mcp.WithDescription("List the most recently added "+st.Kind()+"."),
			limitArg(),
		), func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return jsonResult(st.Recent(limit(req)))
		}),

		tool(mcp.NewTool(prefix+"_categories",
			mcp.WithDescription("List the distinct categories, optionally filtered by a glob."),
			mcp.WithString("match", mcp.Description("Glob such as dev/** or k8s-*")),
		), func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return labelsResult(st.Categories(), req)
		}),

		tool(mcp.NewTool(prefix+"_tags",
			mcp.WithDescription("List the distinct tags, optionally filtered by a glob."),
			mcp.WithString("match", mcp.Description("Glob such as dev/** or k8s-*")),
		), func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return labelsResult(st.Tags(), req)
		}),
	}
}

func labelsResult(labels []string, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, err := memory.FilterLabels(labels, req.GetString("match", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(out)
}

func (s *Server) commandTools() []server.ServerTool {
	st := s.commands
	tools := []server.ServerTool{
		tool(mcp.NewTool("command_add",
			mcp.WithDescription("Remember a shell command."),
			mcp.WithString("command", mcp.Required(), mcp.Description("The command line")),
			mcp.WithString("description", mcp.Required()),
			mcp.WithString("category", mcp.Description("Defaults to "+memory.DefaultCategory)),
			mcp.WithString("context", mcp.Description("Where or when the command applies")),
			tagsArg(),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			command, err := req.RequireString("command")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			description, err := req.RequireString("description")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			c := &memory.Command{
				Header: memory.Header{
					Category: req.GetString("category", ""),
					Tags:     optTags(req),
				},
				Command:     command,
				Description: description,
				Context:     req.GetString("context", ""),
			}
			id, err := st.Add(ctx, c)
			if err != nil {
				return s.storeError("command_add", err), nil
			}
			return jsonResult(map[string]string{"id": id})
		}),

		tool(mcp.NewTool("command_update",
			mcp.WithDescription("Change fields of a remembered command. Omitted fields are kept."),
			mcp.WithString("id", mcp.Required()),
			mcp.WithString("command"),
			mcp.WithString("description"),
			mcp.WithString("category"),
			mcp.WithString("context"),
			tagsArg(),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := req.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			ok, err := st.Update(ctx, id, memory.CommandPatch{
				Command:     optString(req, "command"),
				Description: optString(req, "description"),
				Context:     optString(req, "context"),
				Category:    optString(req, "category"),
				Tags:        optTags(req),
			})
			if err != nil {
				return s.storeError("command_update", err), nil
			}
			if !ok {
				return notFound("command", id), nil
			}
			return mcp.NewToolResultText("updated " + id), nil
		}),

		tool(mcp.NewTool("command_stats",
			mcp.WithDescription("Summarize the command store."),
		), func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return jsonResult(st.Stats())
		}),
	}
	return append(tools, recordTools(s, "command", st.Store)...)
}

func (s *Server) contextTools() []server.ServerTool {
	st := s.contexts
	tools := []server.ServerTool{
		tool(mcp.NewTool("context_add",
			mcp.WithDescription("Remember a piece of background context under a key."),
			mcp.WithString("key", mcp.Required()),
			mcp.WithString("title", mcp.Required()),
			mcp.WithString("content", mcp.Required()),
			mcp.WithString("category", mcp.Description("Defaults to "+memory.DefaultCategory)),
			mcp.WithNumber("priority", mcp.Description("1 (low) to 5 (high), default 1")),
			tagsArg(),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			var fields [3]string
			for i, name := range []string{"key", "title", "content"} {
				v, err := req.RequireString(name)
				if err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
				fields[i] = v
			}
			c := &memory.Context{
				Header: memory.Header{
					Category: req.GetString("category", ""),
					Tags:     optTags(req),
				},
				Key:      fields[0],
				Title:    fields[1],
				Content:  fields[2],
				Priority: req.GetInt("priority", 0),
			}
			id, err := st.Add(ctx, c)
			if err != nil {
				return s.storeError("context_add", err), nil
			}
			return jsonResult(map[string]string{"id": id})
		}),

		tool(mcp.NewTool("context_update",
			mcp.WithDescription("Change fields of a remembered context. Omitted fields are kept."),
			mcp.WithString("id", mcp.Required()),
			mcp.WithString("key"),
			mcp.WithString("title"),
			mcp.WithString("content"),
			mcp.WithString("category"),
			mcp.WithNumber("priority"),
			tagsArg(),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := req.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			patch := memory.ContextPatch{
				Key:      optString(req, "key"),
				Title:    optString(req, "title"),
				Content:  optString(req, "content"),
				Category: optString(req, "category"),
				Tags:     optTags(req),
			}
			if _, ok := req.GetArguments()["priority"]; ok {
				p := req.GetInt("priority", 0)
				patch.Priority = &p
			}
			ok, err := st.Update(ctx, id, patch)
			if err != nil {
				return s.storeError("context_update", err), nil
			}
			if !ok {
				return notFound("context", id), nil
			}
			return mcp.NewToolResultText("updated " + id), nil
		}),

		tool(mcp.NewTool("context_get_by_key",
			mcp.WithDescription("Fetch a context by key and record the use."),
			mcp.WithString("key", mcp.Required()),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			key, err := req.RequireString("key")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			c, ok, err := st.GetByKey(ctx, key)
			if err != nil {
				return s.storeError("context_get_by_key", err), nil
			}
			if !ok {
				return notFound("context key", key), nil
			}
			return jsonResult(c)
		}),

		tool(mcp.NewTool("context_keys",
			mcp.WithDescription("List the distinct context keys, optionally filtered by a glob."),
			mcp.WithString("match"),
		), func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return labelsResult(st.Keys(), req)
		}),

		tool(mcp.NewTool("context_high_priority",
			mcp.WithDescription("List contexts with priority 3 or more."),
			limitArg(),
		), func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return jsonResult(st.HighPriority(limit(req)))
		}),

		tool(mcp.NewTool("context_stats",
			mcp.WithDescription("Summarize the context store."),
		), func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return jsonResult(st.Stats())
		}),
	}
	return append(tools, recordTools(s, "context", st.Store)...)
}
