package risk

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

const (
	blockedBuyersKey   = "escrow:risk:blocked-buyers"
	verifiedSellersKey = "escrow:risk:verified-sellers"
)

// SetClient is the subset of the Redis client used by the screener.
type SetClient interface {
	SIsMember(ctx context.Context, key string, member interface{}) *redis.BoolCmd
	SAdd(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
	SRem(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
}

// Redis screens against sets shared by every instance, so a block applied by
// the trust team takes effect everywhere at once.
type Redis struct {
	client                 SetClient
	requireVerifiedSellers bool
	reviewAbove            int64
}

var _ Screener = (*Redis)(nil)

// NewRedis creates a Redis-backed screener.
func NewRedis(client SetClient, requireVerifiedSellers bool, reviewAbove int64) *Redis {
	return &Redis{client: client, requireVerifiedSellers: requireVerifiedSellers, reviewAbove: reviewAbove}
}

// Connect initializes a Redis client from URL or host:port input.
func Connect(redisURL string) (*redis.Client, error) {
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: redisURL}), nil
}

func (r *Redis) Screen(ctx context.Context, sub Subject) (Decision, error) {
	blocked, err := r.client.SIsMember(ctx, blockedBuyersKey, sub.BuyerID).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("failed to check buyer blocklist: %w", err)
	}
	if blocked {
		return Decision{Flagged: true, Reason: ReasonBuyerBlocked}, nil
	}

	if r.requireVerifiedSellers {
		verified, err := r.client.SIsMember(ctx, verifiedSellersKey, sub.SellerID).Result()
		if err != nil {
			return Decision{}, fmt.Errorf("failed to check seller verification: %w", err)
		}
		if !verified {
			return Decision{Flagged: true, Reason: ReasonSellerNotVerified}, nil
		}
	}
	return amountDecision(r.reviewAbove, sub), nil
}

// BlockBuyer adds the buyer to the shared blocklist.
func (r *Redis) BlockBuyer(ctx context.Context, buyerID string) error {
	return r.client.SAdd(ctx, blockedBuyersKey, buyerID).Err()
}

// UnblockBuyer removes the buyer from the shared blocklist.
func (r *Redis) UnblockBuyer(ctx context.Context, buyerID string) error {
	return r.client.SRem(ctx, blockedBuyersKey, buyerID).Err()
}

// VerifySeller marks the seller as verified.
func (r *Redis) VerifySeller(ctx context.Context, sellerID string) error {
	return r.client.SAdd(ctx, verifiedSellersKey, sellerID).Err()
}
