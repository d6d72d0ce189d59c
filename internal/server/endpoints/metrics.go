package endpoints

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cinemind/cinemind/internal/api"
	"github.com/cinemind/cinemind/internal/svcctx"
)

// MetricsEndpoint handles GET /metrics in the Prometheus text format.
type MetricsEndpoint struct{}

func (e *MetricsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/metrics", e.handler
}

func (e *MetricsEndpoint) RequiresInit() bool { return false }

func (e *MetricsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	m := svcctx.MetricsFrom(r.Context())
	if m == nil {
		writeError(w, http.StatusServiceUnavailable, "metrics not available")
		return
	}
	m.Handler().ServeHTTP(w, r)
}

func (e *MetricsEndpoint) Command(client func() *api.Client) *cobra.Command {
	var prefix string
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Print Prometheus metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := client().Raw(cmd.Context(), "/metrics")
			if err != nil {
				return err
			}
			defer body.Close()
			if prefix == "" {
				_, err = io.Copy(cmd.OutOrStdout(), body)
				return err
			}
			data, err := io.ReadAll(body)
			if err != nil {
				return err
			}
			for _, line := range strings.Split(string(data), "\n") {
				if strings.HasPrefix(line, prefix) {
					fmt.Fprintln(cmd.OutOrStdout(), line)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "cinemind_", "Only print series starting with this prefix")
	return cmd
}
