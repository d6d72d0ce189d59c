package endpoints

import (
	"fmt"
	"net/http"
	"net/url"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cinemind/cinemind/internal/api"
	"github.com/cinemind/cinemind/internal/catalog"
	"github.com/cinemind/cinemind/internal/svcctx"
)

// ListMoviesEndpoint handles GET /api/movies.
type ListMoviesEndpoint struct{}

func (e *ListMoviesEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/movies", e.handler
}

func (e *ListMoviesEndpoint) RequiresInit() bool { return true }
func (e *ListMoviesEndpoint) Group() string      { return "movies" }

// handler godoc
//
//	@Summary	List all movies
//	@Tags		movies
//	@Produce	json
//	@Success	200	{array}		catalog.Movie
//	@Failure	500	{object}	ErrorResponse
//	@Router		/api/movies [get]
func (e *ListMoviesEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	movies, err := svcctx.CatalogFrom(r.Context()).FindAll(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, movies)
}

func (e *ListMoviesEndpoint) Command(client func() *api.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all movies",
		RunE: func(cmd *cobra.Command, args []string) error {
			var movies []catalog.Movie
			if err := client().Get(cmd.Context(), "/api/movies", &movies); err != nil {
				return err
			}
			return api.Output(movies)
		},
	}
}

// GetMovieEndpoint handles GET /api/movies/{id}.
type GetMovieEndpoint struct{}

func (e *GetMovieEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/movies/{id}", e.handler
}

func (e *GetMovieEndpoint) RequiresInit() bool { return true }
func (e *GetMovieEndpoint) Group() string      { return "movies" }

// handler godoc
//
//	@Summary	Get a movie
//	@Tags		movies
//	@Produce	json
//	@Param		id	path		string	true	"Movie ID"
//	@Success	200	{object}	catalog.Movie
//	@Failure	404	{object}	ErrorResponse
//	@Router		/api/movies/{id} [get]
func (e *GetMovieEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	m, err := svcctx.CatalogFrom(r.Context()).Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (e *GetMovieEndpoint) Command(client func() *api.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get a movie by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var m catalog.Movie
			if err := client().Get(cmd.Context(), "/api/movies/"+url.PathEscape(args[0]), &m); err != nil {
				return err
			}
			return api.Output(m)
		},
	}
}

// CreateMovieEndpoint handles POST /api/movies.
type CreateMovieEndpoint struct{}

func (e *CreateMovieEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/movies", adminOnly(e.handler)
}

func (e *CreateMovieEndpoint) RequiresInit() bool { return true }
func (e *CreateMovieEndpoint) Group() string      { return "movies" }

// handler godoc
//
//	@Summary	Create a movie
//	@Tags		movies
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		catalog.MovieInput	true	"Movie"
//	@Success	201		{object}	catalog.Movie
//	@Failure	400		{object}	ErrorResponse
//	@Failure	401		{object}	ErrorResponse
//	@Failure	403		{object}	ErrorResponse
//	@Router		/api/movies [post]
func (e *CreateMovieEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var in catalog.MovieInput
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	m, err := svcctx.CatalogFrom(r.Context()).Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	svcctx.LoggerFrom(r.Context()).Info("movie created", "movie_id", m.ID, "title", m.Title)
	writeJSON(w, http.StatusCreated, m)
}

func (e *CreateMovieEndpoint) Command(client func() *api.Client) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a movie from a YAML file (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readMovieFile(file)
			if err != nil {
				return err
			}
			var m catalog.Movie
			if err := client().Post(cmd.Context(), "/api/movies", in, &m); err != nil {
				return err
			}
			return api.Output(m)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML file with the movie fields")
	cmd.MarkFlagRequired("file")
	return cmd
}

// UpdateMovieEndpoint handles PUT /api/movies/{id}.
type UpdateMovieEndpoint struct{}

func (e *UpdateMovieEndpoint) Route() (string, string, http.HandlerFunc) {
	return "PUT", "/api/movies/{id}", adminOnly(e.handler)
}

func (e *UpdateMovieEndpoint) RequiresInit() bool { return true }
func (e *UpdateMovieEndpoint) Group() string      { return "movies" }

// handler godoc
//
//	@Summary	Update a movie
//	@Tags		movies
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string				true	"Movie ID"
//	@Param		request	body		catalog.MovieInput	true	"Movie"
//	@Success	200		{object}	catalog.Movie
//	@Failure	400		{object}	ErrorResponse
//	@Failure	404		{object}	ErrorResponse
//	@Router		/api/movies/{id} [put]
func (e *UpdateMovieEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var in catalog.MovieInput
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	m, err := svcctx.CatalogFrom(r.Context()).Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (e *UpdateMovieEndpoint) Command(client func() *api.Client) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a movie's fields from a YAML file (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readMovieFile(file)
			if err != nil {
				return err
			}
			var m catalog.Movie
			if err := client().Put(cmd.Context(), "/api/movies/"+url.PathEscape(args[0]), in, &m); err != nil {
				return err
			}
			return api.Output(m)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML file with the movie fields")
	cmd.MarkFlagRequired("file")
	return cmd
}

// DeleteMovieResponse confirms a deletion.
type DeleteMovieResponse struct {
	Message string `json:"message"`
}

// DeleteMovieEndpoint handles DELETE /api/movies/{id}.
type DeleteMovieEndpoint struct{}

func (e *DeleteMovieEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/movies/{id}", adminOnly(e.handler)
}

func (e *DeleteMovieEndpoint) RequiresInit() bool { return true }
func (e *DeleteMovieEndpoint) Group() string      { return "movies" }

// handler godoc
//
//	@Summary	Delete a movie
//	@Tags		movies
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Movie ID"
//	@Success	200	{object}	DeleteMovieResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/api/movies/{id} [delete]
func (e *DeleteMovieEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := svcctx.CatalogFrom(r.Context()).Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	svcctx.LoggerFrom(r.Context()).Info("movie deleted", "movie_id", id)
	writeJSON(w, http.StatusOK, DeleteMovieResponse{Message: "movie removed"})
}

func (e *DeleteMovieEndpoint) Command(client func() *api.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a movie (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp DeleteMovieResponse
			if err := client().Delete(cmd.Context(), "/api/movies/"+url.PathEscape(args[0]), &resp); err != nil {
				return err
			}
			fmt.Println(resp.Message)
			return nil
		},
	}
}

func readMovieFile(path string) (catalog.MovieInput, error) {
	var in catalog.MovieInput
	data, err := os.ReadFile(path)
	if err != nil {
		return in, fmt.Errorf("failed to read movie file: %w", err)
	}
	if err := yaml.Unmarshal(data, &in); err != nil {
		return in, fmt.Errorf("failed to parse movie file: %w", err)
	}
	return in, nil
}
