package clients

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// UserLookup is the subset of the user service used for enrichment.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// CachedUserDirectory keeps user profiles in redis for a short TTL.  Misses
// and "not found" answers always go to the primary; only hits are cached.
// A nil redis client turns the cache into a pass-through.
type CachedUserDirectory struct {
	primary UserLookup
	rdb     *redis.Client
	ttl     time.Duration
	prefix  string
	log     *zap.Logger
}

// NewCachedUserDirectory caches primary's hits under prefix for ttl.  rdb
// may be nil.
func NewCachedUserDirectory(primary UserLookup, rdb *redis.Client, ttl time.Duration, prefix string, log *zap.Logger) *CachedUserDirectory {
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedUserDirectory{primary: primary, rdb: rdb, ttl: ttl, prefix: prefix, log: log}
}

func (d *CachedUserDirectory) key(id string) string { return d.prefix + ":user:" + id }

func (d *CachedUserDirectory) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if d.rdb == nil {
		return d.primary.GetUserByID(ctx, id)
	}

	cached, err := d.rdb.Get(ctx, d.key(id)).Bytes()
	if err == nil {
		var u model.User
		if err := json.Unmarshal(cached, &u); err == nil {
			return &u, nil
		}
	} else if err != redis.Nil {
		d.log.Warn("user cache read failed", zap.String("user_id", id), zap.Error(err))
	}

	u, err := d.primary.GetUserByID(ctx, id)
	if err != nil || u == nil {
		return u, err
	}

	data, _ := json.Marshal(u)
	if err := d.rdb.Set(ctx, d.key(id), data, d.ttl).Err(); err != nil {
		d.log.Warn("user cache write failed", zap.String("user_id", id), zap.Error(err))
	}
	return u, nil
}
