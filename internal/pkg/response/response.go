package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"estatebot/internal/domain/reason"
)

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// Reason writes a business rule denial. The code string goes to the client
// as error.code so the chat layer can pick its own localized text.
func Reason(c *gin.Context, code reason.Code) {
	Error(c, StatusFor(code), string(code), messages[code])
}

// Internal hides infrastructure errors from the client; the request logger
// picks them up from c.Errors.
func Internal(c *gin.Context, err error) {
	_ = c.Error(err)
	Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
}

func StatusFor(code reason.Code) int {
	switch code {
	case reason.UserNotFound, reason.TargetNotFound, reason.NotFound, reason.PropertyNotFound:
		return http.StatusNotFound
	case reason.AlreadyActive, reason.AlreadyPending, reason.AlreadyProcessed,
		reason.FreePeriodUsed, reason.RatingExists, reason.PropertyUnavailable, reason.InvalidStatusTransition, reason.AlreadyBlocked:
		return http.StatusConflict
	case reason.Forbidden, reason.RoleChangeLocked, reason.ContactRestricted, reason.NotChatMember, reason.UserBlocked,
		reason.NoActiveSubscription, reason.SubscriptionExpired:
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}

var messages = map[reason.Code]string{
	reason.UserNotFound:            "User not found",
	reason.TargetNotFound:          "Target user not found",
	reason.NotFound:                "Not found",
	reason.PropertyNotFound:        "Property not found",
	reason.AlreadyActive:           "An active subscription already exists",
	reason.AlreadyPending:          "A request is already pending",
	reason.AlreadyProcessed:        "Request already processed",
	reason.NoFreePeriod:            "No free period for this role",
	reason.FreePeriodUsed:          "The free period has already been used",
	reason.RoleMismatch:            "Free periods are granted for your current role only",
	reason.NoActiveSubscription:    "An active subscription is required",
	reason.SubscriptionExpired:     "Subscription expired",
	reason.RoleChangeLocked:        "Role cannot be changed",
	reason.InvalidRole:             "Unknown role",
	reason.InvalidPeriod:           "Subscription period must be positive",
	reason.InvalidListing:          "Listing data is invalid",
	reason.InvalidDateRange:        "Check-out must be at least one night after check-in",
	reason.PropertyUnavailable:     "Property is not available for these dates",
	reason.InvalidStatusTransition: "Status change not allowed",
	reason.InvalidRatingValue:      "Score must be between 1 and 5",
	reason.CannotRateSelf:          "You cannot rate yourself",
	reason.CannotRateRole:          "Users with this role cannot be rated",
	reason.RatingExists:            "You have already rated this user",
	reason.ContactRestricted:       "Contact details are available through the administrator",
	reason.CannotChatSelf:          "You cannot start a chat with yourself",
	reason.NotChatMember:           "You are not a member of this chat",
	reason.EmptyMessage:            "Message is empty",
	reason.CannotBlockSelf:         "You cannot block yourself",
	reason.AlreadyBlocked:          "User is already blocked",
	reason.UserBlocked:             "This conversation is blocked",
	reason.Forbidden:               "Access denied",
}
