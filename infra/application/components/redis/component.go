package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/grand-thief-cash/mlbeval/infra/application/components/logging"
	"github.com/grand-thief-cash/mlbeval/infra/application/consts"
	"github.com/grand-thief-cash/mlbeval/infra/application/core"
)

type RedisComponent struct {
	*core.BaseComponent
	cfg    *Config
	client redis.UniversalClient
}

func NewRedisComponent(cfg *Config) *RedisComponent {
	return &RedisComponent{
		BaseComponent: core.NewBaseComponent(consts.COMPONENT_REDIS, consts.COMPONENT_LOGGING),
		cfg:           cfg,
	}
}

func (rc *RedisComponent) options() *redis.UniversalOptions {
	opts := &redis.UniversalOptions{
		Addrs:           rc.cfg.Addresses,
		DB:              rc.cfg.DB,
		Username:        rc.cfg.Username,
		Password:        rc.cfg.Password,
		PoolSize:        rc.cfg.PoolSize,
		MinIdleConns:    rc.cfg.MinIdleConns,
		DialTimeout:     rc.cfg.DialTimeout,
		ReadTimeout:     rc.cfg.ReadTimeout,
		WriteTimeout:    rc.cfg.WriteTimeout,
		ConnMaxLifetime: rc.cfg.ConnMaxLifetime,
		ConnMaxIdleTime: rc.cfg.ConnMaxIdleTime,
	}
	if rc.cfg.Mode == "sentinel" {
		opts.MasterName = rc.cfg.SentinelMaster
	}
	// UniversalClient 按地址数量选择 cluster, single 模式只取第一个地址
	if rc.cfg.Mode == "single" && len(opts.Addrs) > 1 {
		opts.Addrs = opts.Addrs[:1]
	}
	return opts
}

func (rc *RedisComponent) Start(ctx context.Context) error {
	if err := rc.BaseComponent.Start(ctx); err != nil {
		return err
	}
	if rc.cfg == nil {
		return errors.New("redis config nil")
	}
	if len(rc.cfg.Addresses) == 0 {
		return fmt.Errorf("redis addresses empty")
	}

	rc.client = redis.NewUniversalClient(rc.options())

	if rc.cfg.pingOnStart() {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rc.ping(pingCtx); err != nil {
			_ = rc.client.Close()
			rc.client = nil
			return fmt.Errorf("redis ping failed: %w", err)
		}
	}

	logging.Info(ctx, "redis component started",
		zap.String("mode", rc.cfg.Mode),
		zap.Strings("addrs", rc.cfg.Addresses),
	)
	return nil
}

func (rc *RedisComponent) Stop(ctx context.Context) error {
	defer rc.BaseComponent.Stop(ctx)
	if rc.client != nil {
		err := rc.client.Close()
		rc.client = nil
		logging.Info(ctx, "redis component stopped")
		return err
	}
	return nil
}

func (rc *RedisComponent) HealthCheck() error {
	if err := rc.BaseComponent.HealthCheck(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return rc.ping(ctx)
}

func (rc *RedisComponent) ping(ctx context.Context) error {
	if rc.client == nil {
		return errors.New("redis client nil")
	}
	return rc.client.Ping(ctx).Err()
}

func (rc *RedisComponent) Client() redis.UniversalClient {
	return rc.client
}
