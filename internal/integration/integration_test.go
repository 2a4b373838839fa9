package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"capital-quiz/internal/app"
	"capital-quiz/internal/domain"
	"capital-quiz/internal/infra/memory"
	pgstore "capital-quiz/internal/infra/postgres"
	pgmigrations "capital-quiz/internal/infra/postgres/migrations"
	infraredis "capital-quiz/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

func TestHighScoreSurvivesRestartOnPostgres(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	migrateSchema(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()
	store := pgstore.NewSettingsStore(pool)

	playPerfectGame(t, ctx, newService(store, memory.NewSessionStore()), "p1")

	// a fresh service is a fresh process: only the store carries state
	service := newService(store, memory.NewSessionStore())
	state, err := service.Start(ctx, "p1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if state.HighScore != 3 {
		t.Fatalf("expected high score 3 after restart, got %d", state.HighScore)
	}

	saved, err := store.Save(ctx, "p1", domain.Settings{HighScore: 1, SoundEnabled: false, Difficulty: domain.DifficultyHard})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.HighScore != 3 || saved.SoundEnabled || saved.Difficulty != domain.DifficultyHard {
		t.Fatalf("expected GREATEST to keep 3 and other fields updated, got %+v", saved)
	}
}

func TestHighScoreSurvivesRestartOnRedis(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	client, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer client.Close()
	store := infraredis.NewSettingsStore(client)

	playPerfectGame(t, ctx, newService(store, infraredis.NewSessionStore(client, 5*time.Minute)), "p1")

	service := newService(store, infraredis.NewSessionStore(client, 5*time.Minute))
	state, err := service.Start(ctx, "p1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if state.HighScore != 3 {
		t.Fatalf("expected high score 3 after restart, got %d", state.HighScore)
	}
}

func playPerfectGame(t *testing.T, ctx context.Context, service *app.QuizService, profile string) {
	t.Helper()
	state, err := service.Start(ctx, profile)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	for !state.GameOver() {
		tr, err := service.SubmitAnswer(ctx, profile, state.Question.Capital)
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		state = tr.State
	}
	if err := service.End(ctx, profile); err != nil {
		t.Fatalf("end: %v", err)
	}
}

func newService(settings app.SettingsStore, sessions app.SessionRepository) *app.QuizService {
	questions := make([]domain.Question, 0, 3)
	for i := 0; i < 3; i++ {
		capital := fmt.Sprintf("Capital %d", i)
		questions = append(questions, domain.Question{
			ID:      fmt.Sprintf("q%d", i),
			Country: fmt.Sprintf("Country %d", i),
			Capital: capital,
			Options: []string{"Decoy A", capital, "Decoy B", "Decoy C"},
		})
	}
	bank := memory.NewStaticQuestionBank(map[domain.Difficulty][]domain.Question{
		domain.DifficultyNormal: questions,
		domain.DifficultyHard:   questions,
	})
	return app.NewQuizService(sessions, settings, app.NewQuestionProvider(bank), nil)
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func migrateSchema(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test skipped in short mode")
	}
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
