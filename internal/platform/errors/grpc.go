package errors

import (
	stderrors "errors"

	"github.com/louisbranch/traitorops/internal/platform/errors/i18n"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// DefaultLocale is the locale used when a caller does not name one.
const DefaultLocale = "en-US"

// HandleError converts domain errors to gRPC status for client responses,
// formatting the user-facing message from the catalog for locale. Errors
// that already carry a gRPC status pass through; anything else becomes
// Internal with a generic message.
func HandleError(err error, locale string) error {
	if err == nil {
		return nil
	}
	if locale == "" {
		locale = DefaultLocale
	}

	var appErr *Error
	if stderrors.As(err, &appErr) {
		catalog := i18n.GetCatalog(locale)
		userMsg := catalog.Format(string(appErr.Code), appErr.Metadata)
		return appErr.ToGRPCStatus(catalog.Locale(), userMsg)
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	return status.Error(codes.Internal, "an unexpected error occurred")
}
