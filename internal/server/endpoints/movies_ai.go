package endpoints

import (
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cinemind/cinemind/internal/api"
	"github.com/cinemind/cinemind/internal/catalog"
	"github.com/cinemind/cinemind/internal/providers"
	"github.com/cinemind/cinemind/internal/svcctx"
)

// DraftStatusHeader reports how cleanly the model output validated:
// ok, partial or malformed.
const DraftStatusHeader = "X-Draft-Status"

// MoodSearchRequest is the request body for mood search.
type MoodSearchRequest struct {
	Mood string `json:"mood" example:"something cozy for a rainy evening"`
}

// MoodSearchEndpoint handles POST /api/movies/mood-search.
type MoodSearchEndpoint struct{}

func (e *MoodSearchEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/movies/mood-search", e.handler
}

func (e *MoodSearchEndpoint) RequiresInit() bool { return true }
func (e *MoodSearchEndpoint) RateLimited() bool  { return true }
func (e *MoodSearchEndpoint) Group() string      { return "movies" }

// handler godoc
//
//	@Summary		Recommend movies for a mood
//	@Description	Asks the generative model to rank catalog movies for a free-text mood.
//	@Description	Unusable or failed model output yields an empty list, not an error.
//	@Tags			ai
//	@Accept			json
//	@Produce		json
//	@Param			request	body		MoodSearchRequest	true	"Mood"
//	@Success		200		{array}		catalog.Movie
//	@Failure		400		{object}	ErrorResponse
//	@Failure		429		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Failure		503		{object}	ErrorResponse
//	@Router			/api/movies/mood-search [post]
func (e *MoodSearchEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req MoodSearchRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec := svcctx.RecommenderFrom(r.Context())
	if rec == nil {
		writeServiceError(w, r, providers.ErrNotConfigured)
		return
	}

	movies, err := rec.MoodSearch(r.Context(), req.Mood)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, movies)
}

func (e *MoodSearchEndpoint) Command(client func() *api.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "mood-search <mood...>",
		Short: "Recommend movies for a mood",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var movies []catalog.Movie
			req := MoodSearchRequest{Mood: strings.Join(args, " ")}
			if err := client().Post(cmd.Context(), "/api/movies/mood-search", req, &movies); err != nil {
				return err
			}
			return api.Output(movies)
		},
	}
}

// GenerateMetadataRequest is the request body for metadata synthesis.
type GenerateMetadataRequest struct {
	Title string `json:"title" example:"Heat"`
}

// GenerateMetadataEndpoint handles POST /api/movies/ai-generate.
type GenerateMetadataEndpoint struct{}

func (e *GenerateMetadataEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/movies/ai-generate", adminOnly(e.handler)
}

func (e *GenerateMetadataEndpoint) RequiresInit() bool { return true }
func (e *GenerateMetadataEndpoint) RateLimited() bool  { return true }
func (e *GenerateMetadataEndpoint) Group() string      { return "movies" }

// handler godoc
//
//	@Summary		Draft movie metadata from a title
//	@Description	Returns proposed description, genre, release date and rating. Nothing is saved.
//	@Description	Fields the model could not supply are omitted; an empty object means fill in manually.
//	@Tags			ai
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		GenerateMetadataRequest	true	"Title"
//	@Success		200		{object}	catalog.Draft
//	@Header			200		{string}	X-Draft-Status	"ok, partial or malformed"
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		502		{object}	ErrorResponse
//	@Failure		503		{object}	ErrorResponse
//	@Router			/api/movies/ai-generate [post]
func (e *GenerateMetadataEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req GenerateMetadataRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec := svcctx.RecommenderFrom(r.Context())
	if rec == nil {
		writeServiceError(w, r, providers.ErrNotConfigured)
		return
	}

	res, err := rec.Synthesize(r.Context(), req.Title)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set(DraftStatusHeader, string(res.Status))
	writeJSON(w, http.StatusOK, res.Draft)
}

func (e *GenerateMetadataEndpoint) Command(client func() *api.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "ai-generate <title...>",
		Short: "Draft metadata for a movie title (admin)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var draft catalog.Draft
			req := GenerateMetadataRequest{Title: strings.Join(args, " ")}
			if err := client().Post(cmd.Context(), "/api/movies/ai-generate", req, &draft); err != nil {
				return err
			}
			return api.Output(draft)
		},
	}
}
