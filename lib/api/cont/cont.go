package cont

import (
	"context"

	"liveqa/entity"
)

type ctxKey string

const ModeratorKey ctxKey = "moderator"

func PutModerator(c context.Context, moderator *entity.Moderator) context.Context {
	return context.WithValue(c, ModeratorKey, *moderator)
}

// GetModerator returns nil when the request is not authenticated.
func GetModerator(c context.Context) *entity.Moderator {
	moderator, ok := c.Value(ModeratorKey).(entity.Moderator)
	if !ok {
		return nil
	}
	return &moderator
}
