// pkg/db/db.go
package db

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Redis connects to url and pings it. An empty url means no Redis and
// returns (nil, nil); the job then runs without a lock.
func Redis(ctx context.Context, url string, log *zap.SugaredLogger) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	cli := redis.NewClient(opts)
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := cli.Ping(pctx).Err(); err != nil {
		_ = cli.Close()
		return nil, err
	}
	log.Infow("redis ready", "addr", opts.Addr, "url", redactURL(url))
	return cli, nil
}

func redactURL(u string) string {
	if i := strings.LastIndex(u, "@"); i > 0 {
		if j := strings.Index(u, "://"); j >= 0 && j < i {
			return u[:j+3] + "***@" + u[i+1:]
		}
		return "***@" + u[i+1:]
	}
	return u
}
