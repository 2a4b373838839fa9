package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"capital-quiz/internal/app"
	"capital-quiz/internal/audio"
	"capital-quiz/internal/audio/otosink"
	"capital-quiz/internal/config"
	"capital-quiz/internal/infra/file"
	"capital-quiz/internal/infra/memory"
	pgstore "capital-quiz/internal/infra/postgres"
	redisstore "capital-quiz/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
)

// stores holds the configured persistence and whatever must be closed with it.
type stores struct {
	settings app.SettingsStore
	sessions app.SessionRepository
	closers  []func()
}

func (s *stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func openStores(ctx context.Context, cfg config.Config) (*stores, error) {
	st := &stores{}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		st.closers = append(st.closers, func() { _ = redisClient.Close() })
	}

	switch backend := cfg.SettingsBackend(); backend {
	case config.BackendMemory:
		st.settings = memory.NewSettingsStore()
	case config.BackendFile:
		st.settings = file.NewSettingsStore(cfg.Settings.Path)
	case config.BackendRedis:
		if redisClient == nil {
			st.Close()
			return nil, fmt.Errorf("settings backend redis needs redis.addr")
		}
		st.settings = redisstore.NewSettingsStore(redisClient)
	case config.BackendPostgres:
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			st.Close()
			return nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			st.Close()
			return nil, err
		}
		st.closers = append(st.closers, pool.Close)
		st.settings = pgstore.NewSettingsStore(pool)
	default:
		st.Close()
		return nil, fmt.Errorf("unknown settings backend %q", backend)
	}

	if redisClient != nil {
		st.sessions = redisstore.NewSessionStore(redisClient, config.TTLDuration(cfg.Redis.TTL, 30*time.Minute))
	} else {
		st.sessions = memory.NewSessionStore()
	}
	return st, nil
}

func newService(st *stores, sounds app.SoundPlayer) *app.QuizService {
	provider := app.NewQuestionProvider(memory.NewQuestionBank())
	return app.NewQuizService(st.sessions, st.settings, provider, sounds)
}

// localSounds plays through the audio device when assets are configured, and stays silent otherwise.
func localSounds(cfg config.Config) app.SoundPlayer {
	if cfg.Sound.AssetDir == "" {
		return audio.Nop{}
	}
	sink, err := otosink.New()
	if err != nil {
		log.Printf("sound disabled: %v", err)
		return audio.Nop{}
	}
	return audio.NewPlayer(cfg.Sound.AssetDir, sink)
}
