package vault

import (
	"context"
	"time"
)

// TransferFunc is the outbound token movement of an operation. Repositories
// invoke it inside the operation's transaction, strictly after the balance
// effects have been applied; a non-nil error rolls the whole operation back.
type TransferFunc func(ctx context.Context, amount uint64) error

// SettlementUpdate is the atomic mutation produced by one score report.
// ExpectedTestCount guards against a conflicting report applied between
// read and write.
type SettlementUpdate struct {
	ExpectedTestCount uint64
	TestCount         uint64
	LastScore         uint64
	AvgScore          uint64
	ReportTime        time.Time
	Passed            bool
	Amount            uint64
}

// ProjectRepository manages project persistence. Mutating methods insert the
// supplied event in the same transaction as the state change.
type ProjectRepository interface {
	// Create inserts the project, runs the initial deposit transfer, and
	// records the event (stamped with the allocated project ID).
	Create(ctx context.Context, proj *Project, evt *Event, transferIn TransferFunc) (int64, error)
	Get(ctx context.Context, id int64) (*Project, error)
	List(ctx context.Context) ([]Project, error)
	UpdateConfig(ctx context.Context, id int64, cfg ConfigParams, evt *Event) error
	SetActive(ctx context.Context, id int64, active bool, evt *Event) error
	// Deposit runs the inbound transfer and credits the escrow only if the
	// transfer succeeded.
	Deposit(ctx context.Context, id int64, amount uint64, evt *Event, transferIn TransferFunc) error
	// ApplySettlement moves upd.Amount from escrow to the reward pool
	// (upd.Passed) or the bounty pool, and writes the new metrics.
	ApplySettlement(ctx context.Context, id int64, upd SettlementUpdate, evt *Event) error
	// WithdrawReward zeroes the reward pool, then runs the outbound
	// transfer of the zeroed amount. expected must match the current
	// reward balance.
	WithdrawReward(ctx context.Context, id int64, expected uint64, evt *Event, transferOut TransferFunc) error
}

// ClaimRepository manages bounty claim entries.
type ClaimRepository interface {
	Get(ctx context.Context, projectID int64, claimant string) (*Claim, error)
	ListByProject(ctx context.Context, projectID int64) ([]Claim, error)
	// Allocate decrements the project's bounty pool and increments the
	// claim entry in one transaction.
	Allocate(ctx context.Context, projectID int64, claimant string, amount uint64, evt *Event) error
	// Redeem zeroes the claimant's entry, then runs the outbound transfer
	// of the zeroed amount, returning it. The event amount is stamped with
	// the zeroed value. A missing or empty entry is ErrNotFound.
	Redeem(ctx context.Context, projectID int64, claimant string, evt *Event, transferOut TransferFunc) (uint64, error)
}

// GlobalsRepository manages the global singleton row.
type GlobalsRepository interface {
	Get(ctx context.Context) (*Globals, error)
	SetAdministrator(ctx context.Context, addr string, evt *Event) error
	SetReporter(ctx context.Context, addr string, evt *Event) error
	SetPaused(ctx context.Context, paused bool, evt *Event) error
	// Bootstrap sets the administrator and reporter only if both are still
	// unset, so a restart never overrides a role transfer.
	Bootstrap(ctx context.Context, administrator, reporter string) error
}

// ListEventsOptions filters the audit log.
type ListEventsOptions struct {
	ProjectID *int64
	Kinds     []EventKind
	Limit     int
	Offset    int
}

// EventRepository reads the audit log. Events are only ever written inside
// the mutating methods above.
type EventRepository interface {
	List(ctx context.Context, opts ListEventsOptions) ([]Event, error)
}
