package main

import (
	"flag"
	"os"

	"github.com/vicentefelipechile/enlacevrc/access"
	"github.com/vicentefelipechile/enlacevrc/auditlog"
	"github.com/vicentefelipechile/enlacevrc/common"
	"github.com/vicentefelipechile/enlacevrc/common/prom"
	"github.com/vicentefelipechile/enlacevrc/guilds"
	"github.com/vicentefelipechile/enlacevrc/moderation"
	"github.com/vicentefelipechile/enlacevrc/profiles"
	"github.com/vicentefelipechile/enlacevrc/settings"
	"github.com/vicentefelipechile/enlacevrc/web"
)

var flagDebug = flag.Bool("debug", false, "Enable debug logging")

func main() {
	flag.Parse()

	common.SetupGlobalLogger(*flagDebug)

	logger := common.GetFixedPrefixLogger("main")
	logger.Infof("starting enlacevrc version %s", common.VERSION)

	err := common.CoreInit(true)
	if err != nil {
		logger.WithError(err).Error("failed initializing core")
		os.Exit(1)
	}

	prom.Run()

	audit := auditlog.NewSQLSink()
	gate := access.NewGate(access.NewSQLResolver())

	catalog := settings.NewSQLCatalog()
	configStore := settings.NewSQLConfigStore()
	guildStore := guilds.NewSQLStore()
	profileStore := profiles.NewSQLStore()

	propagator := settings.NewPropagator(catalog, configStore, guildStore, audit)

	server := &web.Server{
		Gate:       gate,
		Catalog:    catalog,
		Config:     configStore,
		Propagator: propagator,
		Registry:   guilds.NewRegistry(guildStore, propagator),
		Guilds:     guildStore,
		Profiles:   profileStore,
		Moderator:  moderation.NewModerator(gate, profileStore, guildStore, moderation.NewSQLMethodStore(), audit),
		Logs:       audit,
	}

	auditlog.RetryRecord(audit, auditlog.LevelSystem, "service started", "system")

	err = server.Run()
	if err != nil {
		logger.WithError(err).Error("api server stopped")
		os.Exit(1)
	}
}
