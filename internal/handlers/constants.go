package handlers

// Response messages and error codes produced by the handlers themselves
const (
	MsgCreated = "created"
	MsgUpdated = "updated"
	MsgDeleted = "deleted"

	ErrCodeInvalidBody   = "invalid_body"
	ErrCodeInvalidActive = "invalid_active"
)

// maxBodyBytes bounds JSON request bodies
const maxBodyBytes = 1 << 20
