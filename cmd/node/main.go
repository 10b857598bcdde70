package main

import (
	"path/filepath"

	"github.com/alecthomas/kong"
	log "github.com/sirupsen/logrus"

	"github.com/squareup/shardnode/conf"
	shardlog "github.com/squareup/shardnode/log"
	"github.com/squareup/shardnode/metadata"
	"github.com/squareup/shardnode/metrics"
	prommetrics "github.com/squareup/shardnode/metrics/prometheus"
	"github.com/squareup/shardnode/node"
	"github.com/squareup/shardnode/pagestore"
	"github.com/squareup/shardnode/statement"
	"github.com/squareup/shardnode/walog"
)

var arguments struct {
	NodeID               string `help:"Identifier for this node within the cluster." required:""`
	DataDir              string `help:"Directory holding this node's Page Store and per-tablespace logs." default:""`
	DefaultTableSpace    string `help:"Name of the tablespace this node boots by default." default:"default"`
	Debug                bool   `help:"Enable verbose logging."`
	Shell                bool   `help:"Drop into an interactive shell after starting."`
	VI                   bool   `help:"Enable VI mode in the interactive shell."`
	EnableMetrics        bool   `help:"Export a Prometheus /metrics endpoint."`
	MetricsListenAddress string `help:"Address the metrics endpoint listens on." default:"localhost:9102"`

	Log shardlog.Config `embed:"" prefix:"log-"`
}

func main() {
	kctx := kong.Parse(&arguments)
	kctx.FatalIfErrorf(run())
}

func run() error {
	if err := arguments.Log.Configure(); err != nil {
		return err
	}

	cnf := conf.NewDefaultConfig()
	cnf.NodeID = arguments.NodeID
	cnf.DataDir = arguments.DataDir
	cnf.DefaultTableSpace = arguments.DefaultTableSpace
	cnf.Debug = arguments.Debug
	cnf.TestServer = arguments.DataDir == ""
	cnf.EnableMetrics = arguments.EnableMetrics
	cnf.MetricsListenAddress = arguments.MetricsListenAddress
	if err := cnf.Validate(); err != nil {
		return err
	}

	pageStore, err := newPageStore(cnf)
	if err != nil {
		return err
	}

	var metricsFactory metrics.Factory
	if cnf.EnableMetrics {
		factory := prommetrics.NewFactory(*cnf)
		if err := factory.Start(); err != nil {
			return err
		}
		defer func() {
			if err := factory.Stop(); err != nil {
				log.Errorf("error stopping metrics factory: %v", err)
			}
		}()
		metricsFactory = factory
	}

	mgr := node.New(node.Config{
		NodeConfig:     cnf,
		MetadataStore:  metadata.NewInMemory(),
		PageStore:      pageStore,
		NewLog:         newLogFactory(cnf),
		MetricsFactory: metricsFactory,
	})
	if err := mgr.Start(); err != nil {
		return err
	}
	defer func() {
		if err := mgr.Close(); err != nil {
			log.Errorf("error closing node manager: %v", err)
		}
	}()

	if arguments.Shell {
		return runShell(mgr)
	}
	select {} // prevent main exiting
}

func newPageStore(cnf *conf.Config) (pagestore.Store, error) {
	if cnf.TestServer {
		return pagestore.NewInMemory(), nil
	}
	return pagestore.NewPebbleStore(filepath.Join(cnf.DataDir, "pages"))
}

func newLogFactory(cnf *conf.Config) func(name statement.TableSpaceName) (walog.Log, error) {
	if cnf.TestServer {
		return func(name statement.TableSpaceName) (walog.Log, error) {
			return walog.NewInMemory(), nil
		}
	}
	return func(name statement.TableSpaceName) (walog.Log, error) {
		return walog.NewPebbleLog(filepath.Join(cnf.DataDir, "logs", string(name)))
	}
}
