package setup

import (
	"context"
	"time"

	"github.com/ochan-dev/ochan/internal/config"
	"github.com/ochan-dev/ochan/internal/events"
	"github.com/ochan-dev/ochan/internal/geo"
	"github.com/ochan-dev/ochan/internal/handler"
	"github.com/ochan-dev/ochan/internal/logger"
	"github.com/ochan-dev/ochan/internal/service"
	"github.com/ochan-dev/ochan/internal/storage/pg"
	"github.com/ochan-dev/ochan/internal/utils"
)

type Dependencies struct {
	Config  *config.Config
	Storage *pg.Storage
	Bus     *events.Bus
	Cache   *service.ThreadCache
	Handler *handler.Handler
}

func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	storage, err := pg.New(cfg)
	if err != nil {
		return nil, err
	}

	secret := cfg.AuthorIdKey()
	if secret == "" {
		logger.Log.Warn("author_id_key is not configured, author ids will not survive restarts")
		secret = utils.GeneratePepper()
	}

	bus := events.NewBus()
	cache := service.NewThreadCache(cfg.Public.ThreadCacheTTL * time.Second)

	boardService := service.NewBoard(storage)
	threadService := service.NewThread(storage, cache, cfg.Public.ThreadsPerPage)
	postService := service.NewPost(
		storage,
		storage,
		service.NewDraftValidator(cfg.Public.MaxBodyLength),
		bus,
		geo.Noop{},
		secret,
		cfg.Public.AuthorCountry,
	)

	h := handler.New(boardService, threadService, postService, cfg)

	return &Dependencies{
		Config:  cfg,
		Storage: storage,
		Bus:     bus,
		Cache:   cache,
		Handler: h,
	}, nil
}

// StartCacheInvalidator evicts a thread's cached view whenever a reply
// lands in it, so readers never wait out the TTL after a bump.
func (d *Dependencies) StartCacheInvalidator(ctx context.Context) error {
	messages, err := d.Bus.SubscribeThreadNewReply(ctx)
	if err != nil {
		return err
	}
	go func() {
		for msg := range messages {
			ev, err := events.DecodeThreadNewReply(msg)
			if err != nil {
				logger.Log.Warn("dropping malformed new-reply event", "error", err)
				msg.Ack()
				continue
			}
			d.Cache.Invalidate(service.ThreadKey(ev.Board, ev.ThreadNumber))
			msg.Ack()
		}
	}()
	return nil
}

func (d *Dependencies) Cleanup() {
	if err := d.Bus.Close(); err != nil {
		logger.Log.Error("failed to close event bus", "error", err)
	}
	if err := d.Storage.Cleanup(); err != nil {
		logger.Log.Error("failed to close storage", "error", err)
	}
}
