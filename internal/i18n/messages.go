package i18n

// Message IDs shared by the error envelope and the field validators
const (
	MsgValidation     = "ErrorValidation"
	MsgInvalidBody    = "ErrorInvalidBody"
	MsgUnauthorized   = "ErrorUnauthorized"
	MsgForbidden      = "ErrorForbidden"
	MsgNotFound       = "ErrorNotFound"
	MsgRouteNotFound  = "ErrorRouteNotFound"
	MsgConflict       = "ErrorConflict"
	MsgInternal       = "ErrorInternal"
	MsgInvalidRequest = "ErrorInvalidReference"

	MsgPropertyNotFound  = "ErrorPropertyNotFound"
	MsgPropertyForbidden = "ErrorPropertyForbidden"

	MsgRoomNotFound          = "ErrorRoomNotFound"
	MsgRoomForbidden         = "ErrorRoomForbidden"
	MsgRoomNameExists        = "ErrorRoomNameExists"
	MsgRoomOccupied          = "ErrorRoomOccupied"
	MsgRoomHasActiveTenants  = "ErrorRoomHasActiveTenants"
	MsgRoomStatusUnavailable = "ErrorRoomStatusUnavailable"

	MsgTenantNotFound = "ErrorTenantNotFound"
)

// Field-level validation messages
const (
	FieldRequired = "FieldRequired"
	FieldMin      = "FieldMin"
	FieldMax      = "FieldMax"
	FieldLenMin   = "FieldLenMin"
	FieldLenMax   = "FieldLenMax"
	FieldGt       = "FieldGt"
	FieldEmail    = "FieldEmail"
	FieldURL      = "FieldURL"
	FieldUUID     = "FieldUUID"
	FieldPhone    = "FieldPhone"
	FieldOneOf    = "FieldOneOf"
	FieldType     = "FieldType"
	FieldDate     = "FieldDate"
	FieldInvalid  = "FieldInvalid"
)
