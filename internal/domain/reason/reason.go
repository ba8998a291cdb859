// Package reason holds the outcome codes returned by the marketplace rules.
// Expected business outcomes are values of Code; only infrastructure
// failures travel as Go errors.
package reason

type Code string

// OK is the zero value: the rule passed.
const OK Code = ""

const (
	UserNotFound     Code = "USER_NOT_FOUND"
	TargetNotFound   Code = "TARGET_NOT_FOUND"
	NotFound         Code = "NOT_FOUND"
	PropertyNotFound Code = "PROPERTY_NOT_FOUND"

	AlreadyActive    Code = "ALREADY_ACTIVE"
	AlreadyPending   Code = "ALREADY_PENDING"
	AlreadyProcessed Code = "ALREADY_PROCESSED"

	NoFreePeriod         Code = "NO_FREE_PERIOD"
	FreePeriodUsed       Code = "FREE_PERIOD_USED"
	RoleMismatch         Code = "ROLE_MISMATCH"
	NoActiveSubscription Code = "NO_ACTIVE_SUBSCRIPTION"
	SubscriptionExpired  Code = "SUBSCRIPTION_EXPIRED"
	RoleChangeLocked     Code = "ROLE_CHANGE_LOCKED"
	InvalidRole          Code = "INVALID_ROLE"
	InvalidPeriod        Code = "INVALID_PERIOD"
	InvalidListing       Code = "INVALID_LISTING"

	InvalidDateRange        Code = "INVALID_DATE_RANGE"
	PropertyUnavailable     Code = "PROPERTY_UNAVAILABLE"
	InvalidStatusTransition Code = "INVALID_STATUS_TRANSITION"

	InvalidRatingValue Code = "INVALID_RATING_VALUE"
	CannotRateSelf     Code = "CANNOT_RATE_SELF"
	CannotRateRole     Code = "CANNOT_RATE_ROLE"
	RatingExists       Code = "RATING_EXISTS"

	ContactRestricted Code = "CONTACT_RESTRICTED"

	CannotChatSelf Code = "CANNOT_CHAT_SELF"
	NotChatMember  Code = "NOT_CHAT_MEMBER"
	EmptyMessage   Code = "EMPTY_MESSAGE"

	CannotBlockSelf Code = "CANNOT_BLOCK_SELF"
	AlreadyBlocked  Code = "ALREADY_BLOCKED"
	UserBlocked     Code = "USER_BLOCKED"

	Forbidden Code = "FORBIDDEN"
)

func (c Code) OK() bool { return c == OK }

func (c Code) String() string {
	if c == OK {
		return "OK"
	}
	return string(c)
}
