package errors

// ErrorCode represents a unique error identifier
type ErrorCode int

// Error code ranges allocation:
// 10000-10099: Generic & configuration errors
// 10100-10199: Dependency wait errors
// 10200-10299: Initialization errors (migration, assets)
// 10300-10399: Privilege errors
// 10400-10499: Handoff errors

const (
	// Success
	Success ErrorCode = 10000

	// Generic & configuration errors (10000-10099)
	InternalError ErrorCode = 10001
	InvalidConfig ErrorCode = 10002
	MissingConfig ErrorCode = 10003

	// Dependency wait errors (10100-10199)
	DependencyUnavailable ErrorCode = 10100
	ProbeFailed           ErrorCode = 10101
	WaitCanceled          ErrorCode = 10102

	// Initialization errors (10200-10299)
	MigrationFailed      ErrorCode = 10200
	MigrationLedgerError ErrorCode = 10201
	AssetCollectFailed   ErrorCode = 10202
	AssetUploadFailed    ErrorCode = 10203

	// Privilege errors (10300-10399)
	IdentityNotFound ErrorCode = 10300
	PrivilegeDrop    ErrorCode = 10301
	RootNotAllowed   ErrorCode = 10302
	InvalidIdentity  ErrorCode = 10303

	// Handoff errors (10400-10499)
	CommandNotFound ErrorCode = 10400
	ExecFailed      ErrorCode = 10401
	SuperviseFailed ErrorCode = 10402
)

// errorMessages maps error codes to their default English messages
var errorMessages = map[ErrorCode]string{
	Success: "Success",

	InternalError: "Internal error",
	InvalidConfig: "Invalid configuration value",
	MissingConfig: "Required configuration is missing",

	DependencyUnavailable: "Dependency did not become reachable within the retry budget",
	ProbeFailed:           "Dependency probe failed",
	WaitCanceled:          "Dependency wait was canceled",

	MigrationFailed:      "Schema migration failed",
	MigrationLedgerError: "Schema migration ledger operation failed",
	AssetCollectFailed:   "Static asset collection failed",
	AssetUploadFailed:    "Static asset upload failed",

	IdentityNotFound: "Target identity not found",
	PrivilegeDrop:    "Failed to drop privileges",
	RootNotAllowed:   "Refusing to run the server as root",
	InvalidIdentity:  "Invalid identity spec",

	CommandNotFound: "Server command not found or not executable",
	ExecFailed:      "Failed to exec into the server process",
	SuperviseFailed: "Supervised server process failed to start",
}

// Message returns the default message for the error code
func (c ErrorCode) Message() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}
	return "Unknown error"
}

// ExitStatus returns the process exit code for the error code, so the
// failing bootstrap step is identifiable from the container exit status.
func (c ErrorCode) ExitStatus() int {
	switch {
	case c == Success:
		return 0
	case c >= 10100 && c < 10200:
		return 2
	case c >= 10200 && c < 10300:
		return 3
	case c >= 10300 && c < 10400:
		return 4
	case c >= 10400 && c < 10500:
		return 5
	default:
		return 1
	}
}
