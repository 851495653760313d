package common

import (
	"database/sql"
	"fmt"

	"emperror.dev/errors"
	"github.com/jmoiron/sqlx"
	// postgres driver
	_ "github.com/lib/pq"
	"github.com/mediocregopher/radix/v3"
	"github.com/sirupsen/logrus"
	"github.com/vicentefelipechile/enlacevrc/common/config"
)

const (
	VERSION = "1.4.0"
)

var (
	confPQHost     = config.RegisterOption("enlacevrc.pq.host", "Postgres host", "localhost")
	confPQUsername = config.RegisterOption("enlacevrc.pq.username", "Postgres user", "postgres")
	confPQPassword = config.RegisterOption("enlacevrc.pq.password", "Postgres password", "")
	confPQDB       = config.RegisterOption("enlacevrc.pq.db", "Postgres database name", "enlacevrc")
	confPQSSLMode  = config.RegisterOption("enlacevrc.pq.sslmode", "Postgres ssl mode", "disable")

	confRedis = config.RegisterOption("enlacevrc.redis", "Redis address", "localhost:6379")

	confMaxSQLConns = config.RegisterOption("enlacevrc.sql.max_conns", "Max postgres connections", 3)
)

var (
	PQ        *sql.DB
	SQLX      *sqlx.DB
	RedisPool *radix.Pool

	logger = GetFixedPrefixLogger("common")
)

// CoreInit loads the config, connects to postgres and redis and applies
// queued schemas. It has to run before any other package is used.
func CoreInit(loadConfig bool) error {
	if loadConfig {
		config.AddSource(&config.EnvSource{})
		config.Load()
	}

	err := connectRedis(confRedis.GetString())
	if err != nil {
		return err
	}

	err = connectDB(confPQHost.GetString(), confPQUsername.GetString(),
		confPQPassword.GetString(), confPQDB.GetString(), confMaxSQLConns.GetInt())
	if err != nil {
		return err
	}

	initQueuedSchemas()

	return nil
}

func connectRedis(addr string) error {
	pool, err := radix.NewPool("tcp", addr, 10)
	if err != nil {
		return errors.WithMessage(err, "connectRedis")
	}

	RedisPool = pool
	return nil
}

func connectDB(host, user, pass, dbName string, maxConns int) error {
	if host == "" {
		host = "localhost"
	}

	connStr := fmt.Sprintf("host=%s user=%s dbname=%s sslmode=%s password='%s'",
		host, user, dbName, confPQSSLMode.GetString(), pass)
	connStrCensored := fmt.Sprintf("host=%s user=%s dbname=%s sslmode=%s password='%s'",
		host, user, dbName, confPQSSLMode.GetString(), "***")

	logger.Info("Postgres connection string being used: " + connStrCensored)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return errors.WithStackIf(err)
	}

	PQ = db
	SQLX = sqlx.NewDb(PQ, "postgres")
	PQ.SetMaxOpenConns(maxConns)
	PQ.SetMaxIdleConns(maxConns)
	logrus.Debug("Initialized postgres database connection")
	return nil
}
