// Package web is the HTTP surface of the service: a JSON API over the
// setting catalog, the server registry, the profile registry and the
// moderation state machine. Authorization happens inside the operations;
// this layer only carries the caller's claimed identity through.
package web

import (
	"context"
	"net/http"
	"time"

	"emperror.dev/errors"
	"github.com/vicentefelipechile/enlacevrc/access"
	"github.com/vicentefelipechile/enlacevrc/auditlog"
	"github.com/vicentefelipechile/enlacevrc/common"
	"github.com/vicentefelipechile/enlacevrc/common/config"
	"github.com/vicentefelipechile/enlacevrc/guilds"
	"github.com/vicentefelipechile/enlacevrc/moderation"
	"github.com/vicentefelipechile/enlacevrc/profiles"
	"github.com/vicentefelipechile/enlacevrc/settings"
	"goji.io"
	"goji.io/pat"
)

var logger = common.GetFixedPrefixLogger("web")

var confListenAddr = config.RegisterOption("enlacevrc.web.listen_addr", "Address the API server binds to", ":8080")

// EntrySource is the read side of the audit log, for the log listing
// endpoint.
type EntrySource interface {
	GetEntries(ctx context.Context, limit int, before int64) ([]*auditlog.Entry, error)
}

// Server bundles the engines the handlers dispatch into.
type Server struct {
	Gate       *access.Gate
	Catalog    settings.CatalogStore
	Config     settings.ConfigStore
	Propagator *settings.Propagator
	Registry   *guilds.Registry
	Guilds     guilds.Store
	Profiles   profiles.Store
	Moderator  *moderation.Moderator
	Logs       EntrySource
}

// BuildMux wires every route. Kept separate from Run so tests can serve
// the exact production routing table through httptest.
func (s *Server) BuildMux() *goji.Mux {
	mux := goji.NewMux()
	mux.Use(MiddlewareLogRequests)
	mux.Use(MiddlewareExtractCaller)

	mux.HandleFunc(pat.Post("/settings"), s.handleDefineSetting)
	mux.HandleFunc(pat.Get("/settings"), s.handleListSettings)

	mux.HandleFunc(pat.Post("/servers"), s.handleCreateServer)
	mux.HandleFunc(pat.Get("/servers"), s.handleListServers)
	mux.HandleFunc(pat.Delete("/servers/:guildID"), s.handleDeleteServer)

	mux.HandleFunc(pat.Get("/servers/:guildID/settings"), s.handleListServerSettings)
	mux.HandleFunc(pat.Put("/servers/:guildID/settings/:key"), s.handleSetServerSetting)
	mux.HandleFunc(pat.Delete("/servers/:guildID/settings/:key"), s.handleDeleteServerSetting)

	mux.HandleFunc(pat.Post("/servers/:guildID/groups"), s.handleAddGroupBinding)
	mux.HandleFunc(pat.Get("/servers/:guildID/groups"), s.handleListGroupBindings)
	mux.HandleFunc(pat.Delete("/servers/:guildID/groups/:groupID"), s.handleRemoveGroupBinding)

	mux.HandleFunc(pat.Post("/profiles"), s.handleCreateProfile)
	mux.HandleFunc(pat.Get("/profiles/:id"), s.handleGetProfile)
	mux.HandleFunc(pat.Delete("/profiles/:id"), s.handleDeleteProfile)

	mux.HandleFunc(pat.Post("/profiles/:id/ban"), s.handleBan)
	mux.HandleFunc(pat.Post("/profiles/:id/unban"), s.handleUnban)
	mux.HandleFunc(pat.Post("/profiles/:id/verify"), s.handleVerify)
	mux.HandleFunc(pat.Post("/profiles/:id/unverify"), s.handleUnverify)

	mux.HandleFunc(pat.Get("/logs"), s.handleListLogs)

	return mux
}

// Run serves the API until the listener fails. Blocking.
func (s *Server) Run() error {
	addr := confListenAddr.GetString()
	logger.Infof("starting the API server on %s", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      s.BuildMux(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	err := server.ListenAndServe()
	return errors.WithMessage(err, "web.Run")
}
