package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix     = "user:%s"
	PropertyKeyPrefix = "property:%s"
)

const (
	UserTTL     = 5 * time.Minute
	PropertyTTL = 10 * time.Minute
)

func UserKey(userID string) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PropertyKey(propertyID string) string {
	return fmt.Sprintf(PropertyKeyPrefix, propertyID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID string) {
	Invalidate(ctx, UserKey(userID))
}
