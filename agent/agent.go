package agent

import (
	"net/http"
	"sync"

	"github.com/approvd/approvd/analytics"
	"github.com/approvd/approvd/config"
	"github.com/approvd/approvd/definition"
	"github.com/approvd/approvd/engine"
	"github.com/approvd/approvd/logger"
	"github.com/approvd/approvd/model"
	"github.com/approvd/approvd/notify"
	"github.com/approvd/approvd/rest"
	"github.com/approvd/approvd/scheduler"
	"github.com/approvd/approvd/store"
	storeredis "github.com/approvd/approvd/store/redis"
	"github.com/approvd/approvd/util"
)

type Agent struct {
	Config       config.Config
	requestStore store.RequestStore
	definitions  *definition.Service
	scheduler    *scheduler.WheelScheduler
	dispatcher   *notify.Dispatcher
	decisions    *analytics.DecisionLog
	engine       *engine.Engine
	httpServer   *rest.Server
	shutdown     bool
	shutdownLock sync.Mutex
	wg           sync.WaitGroup
}

func New(conf config.Config) (*Agent, error) {
	a := &Agent{
		Config: conf,
	}
	setup := []func() error{
		a.setupStore,
		a.setupDefinitionService,
		a.setupNotifier,
		a.setupEngine,
		a.setupHttpServer,
	}
	for _, fn := range setup {
		if err := fn(); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *Agent) setupStore() error {
	switch a.Config.StorageType {
	case config.STORAGE_TYPE_REDIS:
		a.requestStore = storeredis.NewRequestStore(storeredis.Config{
			Addrs:     a.Config.RedisConfig.Addrs,
			Namespace: a.Config.RedisConfig.Namespace,
		}, util.NewJsonCodec[model.Request]())
	default:
		a.requestStore = store.NewInMemoryStore(a.Config.Retention)
	}
	return nil
}

func (a *Agent) setupDefinitionService() error {
	a.definitions = definition.NewService(definition.NewFileSource(a.Config.DefinitionFile))
	_, err := a.definitions.Reload()
	return err
}

func (a *Agent) setupNotifier() error {
	var notifier notify.Notifier
	switch a.Config.NotifierType {
	case config.NOTIFIER_TYPE_REDIS:
		notifier = notify.NewRedisNotifier(notify.RedisConfig{
			Addrs:     a.Config.RedisConfig.Addrs,
			Namespace: a.Config.RedisConfig.Namespace,
		})
	default:
		notifier = notify.NewLogNotifier()
	}
	a.dispatcher = notify.NewDispatcher(notifier, a.Config.NotifierCapacity, &a.wg)
	return nil
}

func (a *Agent) setupEngine() error {
	if a.Config.DecisionLogFile != "" {
		decisions, err := analytics.NewDecisionLog(a.Config.DecisionLogFile)
		if err != nil {
			return err
		}
		a.decisions = decisions
	}
	a.scheduler = scheduler.NewWheelScheduler(a.Config.TimerTick, a.Config.TimerWheelSize, func(requestId string, stepIndex int) {
		a.engine.HandleTimeout(requestId, stepIndex)
	})
	a.engine = engine.New(a.definitions, a.requestStore, a.scheduler, a.dispatcher, a.decisions)
	return nil
}

func (a *Agent) setupHttpServer() error {
	var err error
	a.httpServer, err = rest.NewServer(a.Config.HttpPort, a.engine)
	if err != nil {
		return err
	}
	return nil
}

func (a *Agent) Start() error {
	a.dispatcher.Start()
	a.scheduler.Start()
	go func() {
		if err := a.httpServer.Start(); err != nil && err != http.ErrServerClosed {
			_ = a.Shutdown()
			panic(err)
		}
	}()
	return nil
}

func (a *Agent) Shutdown() error {
	logger.Info("shutting down server")
	a.shutdownLock.Lock()
	defer a.shutdownLock.Unlock()
	if a.shutdown {
		return nil
	}
	a.shutdown = true

	shutdown := []func() error{
		a.httpServer.Stop,
		func() error {
			a.scheduler.Stop()
			return nil
		},
		func() error {
			a.dispatcher.Stop()
			return nil
		},
	}
	for _, fn := range shutdown {
		if err := fn(); err != nil {
			return err
		}
	}
	logger.Info("waiting for all services to shutdown...")
	a.wg.Wait()
	return nil
}
