package pipeline

import (
	"context"
	"errors"
	"net"

	"github.com/rcliao/lessonforge/internal/generator"
	"github.com/rcliao/lessonforge/internal/httpx"
	"github.com/rcliao/lessonforge/internal/model"
	"github.com/rcliao/lessonforge/internal/scripture"
	"github.com/rcliao/lessonforge/internal/store"
	"github.com/rcliao/lessonforge/internal/story"
)

// Error kinds reported on failed items.
const (
	KindNotFound    = "not_found"
	KindUnavailable = "unavailable"
	KindInvalid     = "invalid"
	KindCanceled    = "canceled"
	KindInternal    = "internal"
)

// ErrorKind classifies err for result messages.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	case errors.Is(err, scripture.ErrNotFound),
		errors.Is(err, store.ErrItemNotFound),
		errors.Is(err, store.ErrPlanNotFound),
		errors.Is(err, store.ErrLessonNotFound):
		return KindNotFound
	case errors.Is(err, scripture.ErrProviderUnavailable):
		return KindUnavailable
	case errors.Is(err, generator.ErrGenerationInvalid),
		errors.Is(err, model.ErrInvalidContent),
		errors.Is(err, story.ErrInvalidManifest):
		return KindInvalid
	}
	var statusErr *httpx.StatusError
	if errors.As(err, &statusErr) && httpx.IsRetryableStatus(statusErr.StatusCode) {
		return KindUnavailable
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindUnavailable
	}
	return KindInternal
}
