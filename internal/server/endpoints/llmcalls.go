package endpoints

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cinemind/cinemind/internal/api"
	"github.com/cinemind/cinemind/internal/llmcall"
	"github.com/cinemind/cinemind/internal/svcctx"
)

const defaultCallLimit = 50

// LLMCallsResponse contains a list of model calls, newest first.
type LLMCallsResponse struct {
	Calls []llmcall.Call `json:"calls"`
	Total int            `json:"total"`
}

// ListLLMCallsEndpoint handles GET /api/llmcalls.
type ListLLMCallsEndpoint struct{}

func (e *ListLLMCallsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/llmcalls", adminOnly(e.handler)
}

func (e *ListLLMCallsEndpoint) RequiresInit() bool { return true }
func (e *ListLLMCallsEndpoint) Group() string      { return "llmcalls" }

// handler godoc
//
//	@Summary		List model calls
//	@Description	Recent generative model calls with their prompt hash, raw response and outcome
//	@Tags			llmcalls
//	@Produce		json
//	@Security		BearerAuth
//	@Param			operation	query		string	false	"Filter by operation (mood_search or metadata_synthesis)"
//	@Param			prompt_key	query		string	false	"Filter by prompt key"
//	@Param			success		query		bool	false	"Filter by success status"
//	@Param			limit		query		int		false	"Max results (default 50)"
//	@Success		200			{object}	LLMCallsResponse
//	@Failure		400			{object}	ErrorResponse
//	@Failure		401			{object}	ErrorResponse
//	@Failure		403			{object}	ErrorResponse
//	@Router			/api/llmcalls [get]
func (e *ListLLMCallsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	rec := svcctx.CallsFrom(r.Context())
	if rec == nil {
		writeError(w, http.StatusInternalServerError, "call log not available")
		return
	}
	filter, err := parseCallFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	calls := rec.List(filter)
	writeJSON(w, http.StatusOK, LLMCallsResponse{Calls: calls, Total: len(calls)})
}

// parseCallFilter reads operation, prompt_key, success and limit. A limit
// of 0 or none means defaultCallLimit.
func parseCallFilter(q url.Values) (llmcall.QueryFilter, error) {
	f := llmcall.QueryFilter{
		Operation: q.Get("operation"),
		PromptKey: q.Get("prompt_key"),
		Limit:     defaultCallLimit,
	}
	if v := q.Get("success"); v != "" {
		ok, err := strconv.ParseBool(v)
		if err != nil {
			return f, fmt.Errorf("invalid success filter: %q must be true or false", v)
		}
		f.Success = &ok
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, fmt.Errorf("invalid limit: %q must be a non-negative integer", v)
		}
		if n > 0 {
			f.Limit = n
		}
	}
	return f, nil
}

func (e *ListLLMCallsEndpoint) Command(client func() *api.Client) *cobra.Command {
	var (
		operation, promptKey, outcome string
		limit                         int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent model calls, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			switch outcome {
			case "":
			case "success":
				q.Set("success", "true")
			case "failed":
				q.Set("success", "false")
			default:
				return fmt.Errorf("--outcome must be success or failed, got %q", outcome)
			}
			for key, val := range map[string]string{"operation": operation, "prompt_key": promptKey} {
				if val != "" {
					q.Set(key, val)
				}
			}
			if limit > 0 {
				q.Set("limit", strconv.Itoa(limit))
			}

			path := "/api/llmcalls"
			if len(q) > 0 {
				path += "?" + q.Encode()
			}
			var resp LLMCallsResponse
			if err := client().Get(cmd.Context(), path, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	f := cmd.Flags()
	f.StringVar(&operation, "operation", "", "mood_search or metadata_synthesis")
	f.StringVar(&promptKey, "prompt-key", "", "Only calls rendered from this prompt")
	f.StringVar(&outcome, "outcome", "", "success or failed")
	f.IntVar(&limit, "limit", 0, "Max results (server default 50)")
	return cmd
}

// GetLLMCallEndpoint handles GET /api/llmcalls/{id}.
type GetLLMCallEndpoint struct{}

func (e *GetLLMCallEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/llmcalls/{id}", adminOnly(e.handler)
}

func (e *GetLLMCallEndpoint) RequiresInit() bool { return true }
func (e *GetLLMCallEndpoint) Group() string      { return "llmcalls" }

// handler godoc
//
//	@Summary	Get a model call
//	@Tags		llmcalls
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Call ID"
//	@Success	200	{object}	llmcall.Call
//	@Failure	403	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/api/llmcalls/{id} [get]
func (e *GetLLMCallEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	rec := svcctx.CallsFrom(r.Context())
	if rec == nil {
		writeError(w, http.StatusInternalServerError, "call log not available")
		return
	}
	c, err := rec.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (e *GetLLMCallEndpoint) Command(client func() *api.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one model call",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var c llmcall.Call
			if err := client().Get(cmd.Context(), "/api/llmcalls/"+url.PathEscape(args[0]), &c); err != nil {
				return err
			}
			return api.Output(c)
		},
	}
}
