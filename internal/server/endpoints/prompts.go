package endpoints

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/cinemind/cinemind/internal/api"
	"github.com/cinemind/cinemind/internal/prompts"
	"github.com/cinemind/cinemind/internal/svcctx"
)

// PromptsListResponse contains all prompts.
type PromptsListResponse struct {
	Prompts []prompts.EmbeddedPrompt `json:"prompts"`
}

// ListPromptsEndpoint handles GET /api/prompts.
type ListPromptsEndpoint struct{}

func (e *ListPromptsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/prompts", adminOnly(withPrompts(e.handler))
}

func (e *ListPromptsEndpoint) RequiresInit() bool { return false }
func (e *ListPromptsEndpoint) Group() string      { return "prompts" }

// handler godoc
//
//	@Summary		List all prompts
//	@Description	Get the embedded prompt templates with their hashes and variables
//	@Tags			prompts
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	PromptsListResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		403	{object}	ErrorResponse
//	@Router			/api/prompts [get]
func (e *ListPromptsEndpoint) handler(w http.ResponseWriter, r *http.Request, reg *prompts.Registry) {
	writeJSON(w, http.StatusOK, PromptsListResponse{Prompts: reg.List()})
}

// withPrompts resolves the prompt registry before calling h.
func withPrompts(h func(http.ResponseWriter, *http.Request, *prompts.Registry)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reg := svcctx.PromptsFrom(r.Context())
		if reg == nil {
			writeError(w, http.StatusInternalServerError, "prompt registry not available")
			return
		}
		h(w, r, reg)
	}
}

func (e *ListPromptsEndpoint) Command(client func() *api.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List embedded prompt templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp PromptsListResponse
			if err := client().Get(cmd.Context(), "/api/prompts", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// GetPromptEndpoint handles GET /api/prompts/{key}.
type GetPromptEndpoint struct{}

func (e *GetPromptEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/prompts/{key}", adminOnly(withPrompts(e.handler))
}

func (e *GetPromptEndpoint) RequiresInit() bool { return false }
func (e *GetPromptEndpoint) Group() string      { return "prompts" }

// handler godoc
//
//	@Summary	Get a prompt by key
//	@Tags		prompts
//	@Produce	json
//	@Security	BearerAuth
//	@Param		key	path		string	true	"Prompt key (e.g. mood.recommend)"
//	@Success	200	{object}	prompts.EmbeddedPrompt
//	@Failure	404	{object}	ErrorResponse
//	@Router		/api/prompts/{key} [get]
func (e *GetPromptEndpoint) handler(w http.ResponseWriter, r *http.Request, reg *prompts.Registry) {
	p, err := reg.Get(r.PathValue("key"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (e *GetPromptEndpoint) Command(client func() *api.Client) *cobra.Command {
	var textOnly bool
	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Show one prompt template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p prompts.EmbeddedPrompt
			if err := client().Get(cmd.Context(), "/api/prompts/"+url.PathEscape(args[0]), &p); err != nil {
				return err
			}
			if textOnly {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), p.Text)
				return err
			}
			return api.Output(p)
		},
	}
	cmd.Flags().BoolVar(&textOnly, "text", false, "Print only the template source")
	return cmd
}
