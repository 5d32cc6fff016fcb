// Package platform assembles the record store from functional options.
package platform

import (
	"context"
	"fmt"

	"github.com/aretw0/loamcal/pkg/adapters/fs"
	"github.com/aretw0/loamcal/pkg/adapters/sqlite"
	"github.com/aretw0/loamcal/pkg/core"
)

// New builds the repository for uri and wraps it in a core.Service.
// The URI is adapter-specific: a vault directory for "fs", a database file for "sqlite".
//
//	svc, err := platform.New("./vault", platform.WithAutoInit(true))
func New(uri string, opts ...Option) (*core.Service, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	repo, err := initRepository(uri, o)
	if err != nil {
		return nil, err
	}

	svcOpts := []core.ServiceOption{core.WithServiceReadOnly(o.flag("read_only"))}
	if o.logger != nil {
		svcOpts = append(svcOpts, core.WithServiceLogger(o.logger))
	}
	if size, ok := o.config["event_buffer"].(int); ok && size > 0 {
		svcOpts = append(svcOpts, core.WithEventBuffer(size))
	}
	return core.NewService(repo, svcOpts...), nil
}

// Init builds and initializes the repository for uri.
func Init(uri string, opts ...Option) (core.Repository, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return initRepository(uri, o)
}

func initRepository(uri string, o *options) (core.Repository, error) {
	if o.repository != nil {
		return o.repository, nil
	}

	var repo core.Repository
	switch o.adapter {
	case "fs":
		repo = initFS(uri, o)
	case "sqlite":
		repo = initSQLite(uri, o)
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}

	if err := repo.Initialize(context.Background()); err != nil {
		return nil, err
	}
	return repo, nil
}

// resolvePath applies the dev sandbox to uri.
func resolvePath(uri string, o *options) (string, bool) {
	readOnly := o.flag("read_only")
	devSafety := true
	if v, ok := o.config["dev_safety"].(bool); ok {
		devSafety = v
	}
	bypass := readOnly || !devSafety
	useTemp := o.flag("temp_dir") || (IsDevRun() && !bypass)
	resolved := ResolveVaultPath(uri, useTemp)

	if o.logger != nil && useTemp {
		o.logger.Warn("running in SAFE MODE (Dev/Test)", "original_path", uri, "resolved_path", resolved)
	} else if o.logger != nil && IsDevRun() && readOnly {
		o.logger.Debug("running in READ-ONLY mode (bypassing dev sandbox)", "path", resolved)
	}
	return resolved, useTemp
}

func initFS(uri string, o *options) core.Repository {
	path, useTemp := resolvePath(uri, o)
	autoInit := o.flag("auto_init")
	systemDir, _ := o.config["system_dir"].(string)
	errorHandler, _ := o.config["watcher_error_handler"].(func(error))

	return fs.NewRepository(fs.Config{
		Path:         path,
		AutoInit:     autoInit || useTemp,
		MustExist:    o.flag("must_exist"),
		ReadOnly:     o.flag("read_only"),
		Logger:       o.logger,
		SystemDir:    systemDir,
		ErrorHandler: errorHandler,
	})
}

func initSQLite(uri string, o *options) core.Repository {
	path, _ := resolvePath(uri, o)
	return sqlite.NewRepository(sqlite.Config{
		Path:     path,
		ReadOnly: o.flag("read_only"),
		Logger:   o.logger,
	})
}
