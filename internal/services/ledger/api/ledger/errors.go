package ledger

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	apperrors "github.com/louisbranch/elysium-descent/internal/platform/errors"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/i18n"
)

// HandleError converts a ledger error into a gRPC status carrying both the
// machine-readable ErrorInfo and a localized user message. Errors without a
// domain code surface as Internal.
func HandleError(err error, locale string) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		tag := i18n.MatchLocale(locale)
		return appErr.ToGRPCStatus(tag.String(), i18n.UserMessage(locale, appErr.Code))
	}
	return status.Errorf(codes.Internal, "%v", err)
}
