package ports

// Login rejection reasons reported to a LoginObserver. They are for
// operators only and never reach the caller.
const (
	RejectUnknownAccount = "unknown_account"
	RejectInactive       = "inactive"
	RejectLocked         = "locked"
	RejectBadCredentials = "bad_credentials"
)

// LoginObserver receives login outcomes, e.g. for metrics.
type LoginObserver interface {
	LoginSucceeded()
	LoginRejected(reason string)
	AccountLocked()
}
