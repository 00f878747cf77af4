package persist

import (
	"context"
	"os"
	"path/filepath"

	"github.com/matzehuels/nodecanvas/pkg/config"
	"github.com/matzehuels/nodecanvas/pkg/db"
	"github.com/matzehuels/nodecanvas/pkg/errors"
)

// Open builds the sink cfg.Backend names. A multi backend opens each member
// in order; if one fails the members opened so far are closed.
func Open(ctx context.Context, cfg config.StorageConfig) (Sink, error) {
	switch cfg.Backend {
	case config.BackendFile, "":
		return sinkOrNil(NewFileSink(cfg.Dir))
	case config.BackendNull:
		return NewNullSink(), nil
	case config.BackendRedis:
		return sinkOrNil(NewRedisSink(ctx, RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		}))
	case config.BackendMongo:
		return sinkOrNil(NewMongoSink(ctx, MongoConfig{
			URI:        cfg.MongoURI,
			Database:   cfg.MongoDatabase,
			Collection: cfg.MongoCollection,
		}))
	case config.BackendSQLite:
		if cfg.SQLitePath != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0755); err != nil {
				return nil, storageErr(err, "create %s", filepath.Dir(cfg.SQLitePath))
			}
		}
		svc, err := db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		s, err := NewSQLSink(ctx, svc)
		if err != nil {
			_ = svc.Close()
			return nil, err
		}
		return s, nil
	case config.BackendMulti:
		var sinks []Sink
		for _, b := range cfg.Backends {
			if b == config.BackendMulti {
				return nil, errors.New(errors.ErrCodeInvalidConfig, "multi backend cannot contain multi")
			}
			member := cfg
			member.Backend = b
			s, err := Open(ctx, member)
			if err != nil {
				_ = NewMulti(sinks...).Close()
				return nil, err
			}
			sinks = append(sinks, s)
		}
		return NewMulti(sinks...), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown storage backend %q", cfg.Backend)
	}
}

// sinkOrNil keeps a failed constructor's typed nil out of the Sink interface.
func sinkOrNil[S Sink](s S, err error) (Sink, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}
