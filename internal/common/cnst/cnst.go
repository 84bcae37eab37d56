package cnst

const (
	// AppName is used for the default config directory and tracer names
	AppName = "rentmanager"

	// XLang is the request header (and gin context key) carrying the preferred language
	XLang = "X-Lang"

	// CtxKeyClaims holds the verified JWT claims in the gin context
	CtxKeyClaims = "claims"
	// CtxKeyUserID holds the caller's user id in the gin context
	CtxKeyUserID = "user_id"
)

// Supported languages
const (
	LangEN = "en"
	LangVI = "vi"
)

// Database types
const (
	DBTypePostgres = "postgres"
	DBTypeMySQL    = "mysql"
	DBTypeSQLite   = "sqlite"
)

// Notifier types
const (
	NotifierTypeMemory = "memory"
	NotifierTypeRedis  = "redis"
)
