package main

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var serveAddr string

func buildServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a Prometheus /metrics endpoint",
		RunE:  runServe,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", ":9090", "Address to listen on")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := slog.Default()
	if _, err := newApp(logger); err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	logger.Info("serving metrics", "addr", serveAddr)
	return http.ListenAndServe(serveAddr, mux)
}
