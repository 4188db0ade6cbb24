package storelog

import (
	"fmt"

	"github.com/mr-tron/base58"
	"go.uber.org/zap"
)

// headMsg is a distinctive part of all messages.
const headMsg = "record store operation"

// Write writes message about store file modification to logger.
func Write(logger *zap.Logger, fields ...zap.Field) {
	logger.Info(headMsg, fields...)
}

// TitleField returns logger's field for record title.
func TitleField(title string) zap.Field {
	return zap.String("title", title)
}

// OpField returns logger's field for operation type.
func OpField(op string) zap.Field {
	return zap.String("op", op)
}

// PathField returns logger's field for store file path.
func PathField(p string) zap.Field {
	return zap.String("path", p)
}

// DigestField returns logger's field for content checksum.
func DigestField(sum []byte) zap.Field {
	return zap.String("digest", base58.Encode(sum))
}

// LevelField returns logger's field for store file level.
func LevelField(l fmt.Stringer) zap.Field {
	return zap.Stringer("store_level", l)
}

// DeltaField returns logger's field for file size change.
func DeltaField(delta int64) zap.Field {
	return zap.Int64("delta", delta)
}
