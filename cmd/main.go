package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"job-advisor/handler"
	"job-advisor/internal/cache"
	"job-advisor/internal/catalog"
	"job-advisor/internal/config"
	"job-advisor/internal/db"
	"job-advisor/internal/feedback"
	"job-advisor/internal/integrations/openai"
	"job-advisor/internal/integrations/paramstore"
	"job-advisor/internal/repository"
	"job-advisor/internal/usecase"
)

// settings is everything read from the environment. Nothing else in the
// binary looks at os.Getenv.
type settings struct {
	stateTable      string
	paramPrefix     string
	databaseURL     string
	redisURL        string
	historyLimit    int
	maxQuestionLen  int
	settingsRefresh time.Duration
}

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	ctx := context.Background()

	env, err := loadSettings()
	if err != nil {
		slog.Error("invalid environment", "err", err)
		os.Exit(1)
	}

	h, closeAll, err := build(ctx, env)
	if err != nil {
		slog.Error("startup failed", "err", err)
		os.Exit(1)
	}
	defer closeAll()

	lambda.Start(h.Handle)
}

func loadSettings() (settings, error) {
	var missing []error
	required := func(key string) string {
		v := os.Getenv(key)
		if v == "" {
			missing = append(missing, fmt.Errorf("%s is not set", key))
		}
		return v
	}
	s := settings{
		stateTable:      required("STATE_TABLE"),
		paramPrefix:     required("PARAM_PREFIX"),
		databaseURL:     required("DATABASE_URL"),
		redisURL:        required("REDIS_URL"),
		historyLimit:    envInt("HISTORY_LIMIT", 5),
		maxQuestionLen:  envInt("MAX_QUESTION_LENGTH", 1000),
		settingsRefresh: time.Duration(envInt("SETTINGS_REFRESH_SECONDS", 300)) * time.Second,
	}
	return s, errors.Join(missing...)
}

// build wires every dependency. The returned func releases the database and
// Redis connections.
func build(ctx context.Context, env settings) (*handler.Handler, func(), error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load AWS config: %w", err)
	}

	params, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
	if err != nil {
		return nil, nil, fmt.Errorf("parameter store: %w", err)
	}
	loader, err := config.NewLoader(params, env.paramPrefix, env.settingsRefresh)
	if err != nil {
		return nil, nil, fmt.Errorf("settings loader: %w", err)
	}
	history, err := repository.New(awsdynamodb.NewFromConfig(awsCfg), env.stateTable)
	if err != nil {
		return nil, nil, fmt.Errorf("history store: %w", err)
	}

	pool, err := db.NewPostgresPool(ctx, env.databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres: %w", err)
	}
	rdb, err := db.NewRedisClient(ctx, env.redisURL)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("redis: %w", err)
	}
	closeAll := func() {
		_ = rdb.Close()
		pool.Close()
	}

	h, err := assemble(env, loader, history, pool, rdb)
	if err != nil {
		closeAll()
		return nil, nil, err
	}
	return h, closeAll, nil
}

func assemble(env settings, loader *config.Loader, history *repository.Client, pool *pgxpool.Pool, rdb *redis.Client) (*handler.Handler, error) {
	jobs, err := catalog.New(pool)
	if err != nil {
		return nil, fmt.Errorf("job catalog: %w", err)
	}
	votes, err := feedback.New(pool)
	if err != nil {
		return nil, fmt.Errorf("feedback store: %w", err)
	}
	answers, err := cache.NewStore(rdb)
	if err != nil {
		return nil, fmt.Errorf("answer cache: %w", err)
	}

	svc, err := usecase.NewAskService(usecase.Deps{
		Config:   loader,
		LLM:      openai.NewClient(),
		Catalog:  jobs,
		Cache:    answers,
		History:  history,
		Feedback: votes,
		Logger:   slog.Default(),
	}, env.historyLimit, env.maxQuestionLen)
	if err != nil {
		return nil, fmt.Errorf("ask service: %w", err)
	}
	return handler.NewHandler(svc)
}

func envInt(key string, def int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return n
}
