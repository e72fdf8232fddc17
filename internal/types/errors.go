package types

import "errors"

// Sentinel errors for bulkmsg operations.
var (
	// ErrFieldNotFound indicates a field path could not be resolved.
	ErrFieldNotFound = errors.New("field not found")

	// ErrCoercionFailed indicates a value could not be coerced for comparison.
	ErrCoercionFailed = errors.New("type coercion failed")

	// ErrInvalidOperator indicates an unknown operator or one not applicable to the field.
	ErrInvalidOperator = errors.New("invalid operator for field")

	// ErrMissingOperand indicates a binary operator has no value, or between has no secondValue.
	ErrMissingOperand = errors.New("operator operand missing")

	// ErrInvalidValue indicates a malformed filter operand.
	ErrInvalidValue = errors.New("invalid filter value")

	// ErrInvalidLogicalOperator indicates a group operator other than AND/OR.
	ErrInvalidLogicalOperator = errors.New("logical operator must be AND or OR")

	// ErrNodeNotFound indicates a filter node id is not part of the tree.
	ErrNodeNotFound = errors.New("filter node not found")

	// ErrNotAGroup indicates a child was added under a condition.
	ErrNotAGroup = errors.New("filter node is not a group")

	// ErrNotACondition indicates an operand update targeted a group.
	ErrNotACondition = errors.New("filter node is not a condition")

	// ErrSystemList indicates an attempt to mutate a seeded System list.
	ErrSystemList = errors.New("system lists cannot be modified")

	// ErrListNotFound indicates an unknown customer list id.
	ErrListNotFound = errors.New("customer list not found")

	// ErrDuplicateList indicates a save that would shadow a System list name.
	ErrDuplicateList = errors.New("list name collides with a system list")

	// ErrSessionNotFound indicates an unknown session id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrNoRecipients indicates a send with an empty recipient set.
	ErrNoRecipients = errors.New("no recipients selected")

	// ErrInvalidMessage indicates a message missing its body or subject, or too long for its channel.
	ErrInvalidMessage = errors.New("invalid message")

	// ErrMessageNotFound indicates an unknown message or draft id.
	ErrMessageNotFound = errors.New("message not found")

	// ErrFeedUnavailable indicates the customer feed could not be fetched or parsed.
	ErrFeedUnavailable = errors.New("customer feed unavailable")
)
