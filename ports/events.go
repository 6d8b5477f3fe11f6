package ports

import (
	"context"

	"github.com/layer-3/rangda/core"
)

// EventPublisher notifies other services about completed logins.
type EventPublisher interface {
	PublishLogin(ctx context.Context, result *core.AuthResult) error
}
