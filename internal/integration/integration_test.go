package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"benefits-points-service/internal/app"
	"benefits-points-service/internal/domain"
	pginfra "benefits-points-service/internal/infra/postgres"
	pgmigrations "benefits-points-service/internal/infra/postgres/migrations"
	infraredis "benefits-points-service/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

func TestAwardFlowEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	applyMigrations(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}

	store := pginfra.NewUserStore(pool)
	missionCatalog := infraredis.NewCatalogRepository(redisClient, pginfra.NewCatalogLoader(pool), 5*time.Minute)

	auth := app.NewAuthService(store, []byte("it-secret"), time.Hour)
	leaderboard := app.NewLeaderboardService(store)
	ledger := app.NewLedgerService(store, missionCatalog, nil)
	chests := app.NewChestService(store, missionCatalog, nil)
	profile := app.NewProfileService(store, ledger)

	alice, err := auth.Register(ctx, app.RegisterInput{Name: "Alice", Email: "alice@test.dev", Password: "s3cret"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	bob, err := auth.Register(ctx, app.RegisterInput{Name: "Bob", Email: "bob@test.dev", Password: "s3cret"})
	if err != nil {
		t.Fatalf("register bob: %v", err)
	}

	token, _, err := auth.Login(ctx, "alice@test.dev", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if id, err := auth.VerifyToken(token); err != nil || id != alice.ID {
		t.Fatalf("verify token: id=%s err=%v", id, err)
	}

	// Profile completion pays the fixed mission through the ledger.
	phone := "11999990000"
	record, awarded, err := profile.Update(ctx, alice.ID, app.ProfileUpdate{Phone: &phone})
	if err != nil {
		t.Fatalf("profile update: %v", err)
	}
	if !awarded || record.Points != 10 || !record.ProfileMissionCompleted {
		t.Fatalf("expected profile award, got awarded=%v record=%+v", awarded, record)
	}

	// Quiz award from the seeded catalog: 5*2 base + 5 time bonus.
	quizAward, err := ledger.CompleteQuizMission(ctx, alice.ID, "quiz2", 5, 150)
	if err != nil {
		t.Fatalf("complete quiz: %v", err)
	}
	if quizAward.PointsAwarded != 15 || quizAward.TotalPoints != 25 {
		t.Fatalf("unexpected quiz award %+v", quizAward)
	}
	if _, err := ledger.CompleteQuizMission(ctx, alice.ID, "quiz2", 10, 1); !errors.Is(err, domain.ErrMissionCompleted) {
		t.Fatalf("expected ErrMissionCompleted on retry, got %v", err)
	}

	chestAward, err := chests.OpenCatalogChest(ctx, alice.ID, "chest_1")
	if err != nil {
		t.Fatalf("open chest: %v", err)
	}
	if chestAward.TotalPoints != 35 {
		t.Fatalf("expected total 35 after chest, got %d", chestAward.TotalPoints)
	}

	view, err := leaderboard.GetLeaderboard(ctx, bob.ID, 10, 0)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if view.Total != 2 || view.Leaderboard[0].UserID != alice.ID || view.Leaderboard[0].Points != 35 {
		t.Fatalf("expected alice leading with 35, got %+v", view)
	}
	if view.Me.UserID != bob.ID || view.Me.Position != 2 {
		t.Fatalf("expected bob at position 2, got %+v", view.Me)
	}
}

func applyMigrations(t *testing.T, ctx context.Context, dsn string) {
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

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "points", "POSTGRES_PASSWORD": "pointspass", "POSTGRES_DB": "pointsdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
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
	dsn := fmt.Sprintf("postgres://points:pointspass@%s:%s/pointsdb?sslmode=disable", host, port.Port())
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

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
