package endpoints

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/cinemind/cinemind/internal/api"
	"github.com/cinemind/cinemind/internal/auth"
	"github.com/cinemind/cinemind/internal/catalog"
	"github.com/cinemind/cinemind/internal/recommend"
	"github.com/cinemind/cinemind/internal/svcctx"
	"github.com/cinemind/cinemind/internal/users"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User  *users.User `json:"user"`
	Token string      `json:"token"`
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// WatchlistRequest names the movie to add or remove.
type WatchlistRequest struct {
	MovieID string `json:"movieId" validate:"required"`
}

// StatsResponse carries catalog-wide counts.
type StatsResponse struct {
	TotalUsers  int `json:"totalUsers"`
	TotalMovies int `json:"totalMovies"`
}

func issueToken(r *http.Request, u *users.User) (string, error) {
	return svcctx.TokensFrom(r.Context()).Issue(auth.Principal{ID: u.ID, Role: string(u.Role)})
}

// RegisterEndpoint handles POST /api/users/register.
type RegisterEndpoint struct{}

func (e *RegisterEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/users/register", e.handler
}

func (e *RegisterEndpoint) RequiresInit() bool { return true }
func (e *RegisterEndpoint) Group() string      { return "users" }

// handler godoc
//
//	@Summary	Register an account
//	@Tags		users
//	@Accept		json
//	@Produce	json
//	@Param		request	body		users.Registration	true	"Account"
//	@Success	201		{object}	AuthResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	409		{object}	ErrorResponse
//	@Router		/api/users/register [post]
func (e *RegisterEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var reg users.Registration
	if err := decodeBody(w, r, &reg); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	u, err := svcctx.UsersFrom(r.Context()).Register(r.Context(), reg)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	token, err := issueToken(r, u)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, AuthResponse{User: u, Token: token})
}

func (e *RegisterEndpoint) Command(client func() *api.Client) *cobra.Command {
	var reg users.Registration
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp AuthResponse
			if err := client().Post(cmd.Context(), "/api/users/register", reg, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&reg.FirstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&reg.LastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&reg.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&reg.Password, "password", "", "Password (min 6 characters)")
	return cmd
}

// LoginEndpoint handles POST /api/users/login.
type LoginEndpoint struct {
	// SaveToken, when set, lets the CLI persist the returned token.
	SaveToken func(token string) error
}

func (e *LoginEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/users/login", e.handler
}

func (e *LoginEndpoint) RequiresInit() bool { return true }
func (e *LoginEndpoint) Group() string      { return "users" }

// handler godoc
//
//	@Summary	Log in
//	@Tags		users
//	@Accept		json
//	@Produce	json
//	@Param		request	body		LoginRequest	true	"Credentials"
//	@Success	200		{object}	AuthResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	401		{object}	ErrorResponse
//	@Router		/api/users/login [post]
func (e *LoginEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}
	u, err := svcctx.UsersFrom(r.Context()).Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	token, err := issueToken(r, u)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthResponse{User: u, Token: token})
}

func (e *LoginEndpoint) Command(client func() *api.Client) *cobra.Command {
	var req LoginRequest
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and save the token for later api commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp AuthResponse
			if err := client().Post(cmd.Context(), "/api/users/login", req, &resp); err != nil {
				return err
			}
			if e.SaveToken != nil {
				if err := e.SaveToken(resp.Token); err != nil {
					return err
				}
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password")
	return cmd
}

// watchlistMovies resolves ids to movies in watchlist order.
func watchlistMovies(r *http.Request, ids []string) ([]catalog.Movie, error) {
	movies, _, err := recommend.NewResolver(svcctx.CatalogFrom(r.Context())).Resolve(r.Context(), ids)
	return movies, err
}

// GetWatchlistEndpoint handles GET /api/users/watchlist.
type GetWatchlistEndpoint struct{}

func (e *GetWatchlistEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/users/watchlist", userOnly(e.handler)
}

func (e *GetWatchlistEndpoint) RequiresInit() bool { return true }
func (e *GetWatchlistEndpoint) Group() string      { return "users" }

// handler godoc
//
//	@Summary	Get the caller's watchlist
//	@Tags		users
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{array}		catalog.Movie
//	@Failure	401	{object}	ErrorResponse
//	@Router		/api/users/watchlist [get]
func (e *GetWatchlistEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	u, err := svcctx.UsersFrom(r.Context()).Store().Get(r.Context(), p.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	movies, err := watchlistMovies(r, u.Watchlist)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, movies)
}

func (e *GetWatchlistEndpoint) Command(client func() *api.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "watchlist",
		Short: "Show your watchlist",
		RunE: func(cmd *cobra.Command, args []string) error {
			var movies []catalog.Movie
			if err := client().Get(cmd.Context(), "/api/users/watchlist", &movies); err != nil {
				return err
			}
			return api.Output(movies)
		},
	}
}

// watchlistEdit implements both watchlist mutation endpoints.
type watchlistEdit struct {
	path string
	use  string
	desc string

	// mustExist rejects ids that are not in the catalog.
	mustExist bool
	edit      func(s users.Store, ctx context.Context, userID, movieID string) ([]string, error)
}

func (e watchlistEdit) handler(w http.ResponseWriter, r *http.Request) {
	var req WatchlistRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "movieId is required")
		return
	}

	if e.mustExist {
		if _, err := svcctx.CatalogFrom(r.Context()).Get(r.Context(), req.MovieID); err != nil {
			writeServiceError(w, r, err)
			return
		}
	}

	p, _ := auth.FromContext(r.Context())
	ids, err := e.edit(svcctx.UsersFrom(r.Context()).Store(), r.Context(), p.ID, req.MovieID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	movies, err := watchlistMovies(r, ids)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, movies)
}

func (e watchlistEdit) command(client func() *api.Client) *cobra.Command {
	return &cobra.Command{
		Use:   e.use + " <movie-id>",
		Short: e.desc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var movies []catalog.Movie
			if err := client().Put(cmd.Context(), e.path, WatchlistRequest{MovieID: args[0]}, &movies); err != nil {
				return err
			}
			return api.Output(movies)
		},
	}
}

var (
	addToWatchlist = watchlistEdit{
		path:      "/api/users/watchlist/add",
		use:       "watchlist-add",
		desc:      "Add a movie to your watchlist",
		mustExist: true,
		edit:      users.Store.AddToWatchlist,
	}
	removeFromWatchlist = watchlistEdit{
		path: "/api/users/watchlist/remove",
		use:  "watchlist-remove",
		desc: "Remove a movie from your watchlist",
		edit: users.Store.RemoveFromWatchlist,
	}
)

// AddToWatchlistEndpoint handles PUT /api/users/watchlist/add.
type AddToWatchlistEndpoint struct{}

func (e *AddToWatchlistEndpoint) Route() (string, string, http.HandlerFunc) {
	return "PUT", addToWatchlist.path, userOnly(e.handler)
}

func (e *AddToWatchlistEndpoint) RequiresInit() bool { return true }
func (e *AddToWatchlistEndpoint) Group() string      { return "users" }

// handler godoc
//
//	@Summary	Add a movie to the caller's watchlist
//	@Tags		users
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		WatchlistRequest	true	"Movie"
//	@Success	200		{array}		catalog.Movie
//	@Failure	401		{object}	ErrorResponse
//	@Failure	404		{object}	ErrorResponse
//	@Router		/api/users/watchlist/add [put]
func (e *AddToWatchlistEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	addToWatchlist.handler(w, r)
}

func (e *AddToWatchlistEndpoint) Command(client func() *api.Client) *cobra.Command {
	return addToWatchlist.command(client)
}

// RemoveFromWatchlistEndpoint handles PUT /api/users/watchlist/remove.
type RemoveFromWatchlistEndpoint struct{}

func (e *RemoveFromWatchlistEndpoint) Route() (string, string, http.HandlerFunc) {
	return "PUT", removeFromWatchlist.path, userOnly(e.handler)
}

func (e *RemoveFromWatchlistEndpoint) RequiresInit() bool { return true }
func (e *RemoveFromWatchlistEndpoint) Group() string      { return "users" }

// handler godoc
//
//	@Summary	Remove a movie from the caller's watchlist
//	@Tags		users
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		WatchlistRequest	true	"Movie"
//	@Success	200		{array}		catalog.Movie
//	@Failure	401		{object}	ErrorResponse
//	@Router		/api/users/watchlist/remove [put]
func (e *RemoveFromWatchlistEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	removeFromWatchlist.handler(w, r)
}

func (e *RemoveFromWatchlistEndpoint) Command(client func() *api.Client) *cobra.Command {
	return removeFromWatchlist.command(client)
}

// StatsEndpoint handles GET /api/users/stats.
type StatsEndpoint struct{}

func (e *StatsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/users/stats", adminOnly(e.handler)
}

func (e *StatsEndpoint) RequiresInit() bool { return true }
func (e *StatsEndpoint) Group() string      { return "users" }

// handler godoc
//
//	@Summary	Catalog and account counts
//	@Tags		users
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	StatsResponse
//	@Failure	401	{object}	ErrorResponse
//	@Failure	403	{object}	ErrorResponse
//	@Router		/api/users/stats [get]
func (e *StatsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	nUsers, err := svcctx.UsersFrom(ctx).Store().Count(ctx)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	nMovies, err := svcctx.CatalogFrom(ctx).Count(ctx)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StatsResponse{TotalUsers: nUsers, TotalMovies: nMovies})
}

func (e *StatsEndpoint) Command(client func() *api.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show user and movie counts (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp StatsResponse
			if err := client().Get(cmd.Context(), "/api/users/stats", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
