// Command web runs the Feel The Beats backend: a stateless HTTP API that
// authenticates users against streaming providers via OAuth and provisions
// generated playlists on their accounts.
package main

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"Feel-The-Beats-Go/pkg/artwork"
	"Feel-The-Beats-Go/pkg/config"
	"Feel-The-Beats-Go/pkg/db"
	"Feel-The-Beats-Go/pkg/handlers"
	"Feel-The-Beats-Go/pkg/playlist"
	"Feel-The-Beats-Go/pkg/provider"
	"Feel-The-Beats-Go/pkg/session"
	"Feel-The-Beats-Go/pkg/spotify"
	"Feel-The-Beats-Go/pkg/youtube"
)

func main() {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("load configuration")
	}

	codec, err := session.NewCodec(cfg.CookieSecret)
	if err != nil {
		log.WithError(err).Fatal("init session codec")
	}

	registry := provider.NewRegistry(
		spotify.NewProvider(cfg.SpotifyClientID, cfg.SpotifyClientSecret),
		youtube.NewProvider(cfg.YouTubeClientID, cfg.YouTubeClientSecret),
	)

	database, err := db.New(cfg.DatabasePath)
	if err != nil {
		log.WithError(err).Fatal("open database")
	}
	defer database.Close()

	app := &handlers.Application{
		Registry:    registry,
		Sessions:    codec,
		Provisioner: playlist.NewProvisioner(registry),
		DB:          database,
		Artwork:     artwork.New(),
		SignKey:     []byte(cfg.CookieSecret),
		AppURL:      cfg.AppURL,
		Production:  cfg.Production(),
	}

	srv := &http.Server{
		Addr:    ":" + strconv.Itoa(cfg.Port),
		Handler: handlers.SecurityHeaders(newMux(app)),
	}
	log.WithFields(logrus.Fields{"addr": srv.Addr, "env": cfg.Environment}).Info("starting server")
	if err := srv.ListenAndServe(); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func newMux(app *handlers.Application) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/", app.Auth)
	mux.HandleFunc("/api/logout", app.Logout)
	mux.HandleFunc("/api/me", app.Me)
	mux.HandleFunc("/api/playlists", app.CreatePlaylist)
	mux.HandleFunc("/api/library", app.Library)
	mux.HandleFunc("/api/library/", app.DeleteLibraryPlaylist)
	mux.HandleFunc("/api/artwork", app.ArtworkLookup)
	mux.HandleFunc("/healthz", app.Health)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}
