package attr

import (
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/google/uuid"
)

// Thin wrappers over slog attrs so call sites stay short and consistently named.

func String(key, value string) slog.Attr {
	return slog.String(key, value)
}

func Int(key string, value int) slog.Attr {
	return slog.Int(key, value)
}

func Int64(key string, value int64) slog.Attr {
	return slog.Int64(key, value)
}

func Bool(key string, value bool) slog.Attr {
	return slog.Bool(key, value)
}

func Any(key string, value any) slog.Attr {
	return slog.Any(key, value)
}

func Error(err error) slog.Attr {
	return slog.Any("error", err)
}

func Time(key string, value time.Time) slog.Attr {
	return slog.Time(key, value)
}

func Duration(key string, value time.Duration) slog.Attr {
	return slog.Duration(key, value)
}

func UUID(key string, id uuid.UUID) slog.Attr {
	return slog.String(key, id.String())
}

func TournamentID(id uuid.UUID) slog.Attr {
	return slog.String("tournament_id", id.String())
}

func RoundNumber(n int) slog.Attr {
	return slog.Int("round", n)
}

// CorrelationIDFromMsg extracts the watermill correlation ID for log lines tied
// to a message flow.
func CorrelationIDFromMsg(msg *message.Message) slog.Attr {
	return slog.String("correlation_id", msg.Metadata.Get(middleware.CorrelationIDMetadataKey))
}
