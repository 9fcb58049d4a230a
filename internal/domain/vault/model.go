package vault

import "time"

// Role classifies the caller of an operation. Roles are not stored: they are
// resolved once per operation from the global singletons and the target
// project.
type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleReporter      Role = "reporter"
	RoleOwner         Role = "owner"
	RoleClaimant      Role = "claimant"
)

// Score and rate bounds. Rates are fixed-point basis points.
const (
	MaxScore   uint64 = 100
	MaxRateBps uint64 = 10000
)

// Project is one registered safety SLA with its three disjoint pools.
type Project struct {
	ID             int64     `json:"id"`
	Owner          string    `json:"owner"`
	Token          string    `json:"token"`
	MinScore       uint64    `json:"min_score"`
	PayoutRateBps  uint64    `json:"payout_rate_bps"`
	PenaltyRateBps uint64    `json:"penalty_rate_bps"`
	EscrowBalance  uint64    `json:"escrow_balance"`
	RewardBalance  uint64    `json:"reward_balance"`
	BountyPool     uint64    `json:"bounty_pool_balance"`
	LastScore      uint64    `json:"last_score"`
	AvgScore       uint64    `json:"avg_score"`
	TestCount      uint64    `json:"test_count"`
	LastReportTime time.Time `json:"last_report_time,omitzero"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
}

// Balances is the three-pool view of a project.
type Balances struct {
	Escrow     uint64 `json:"escrow_balance"`
	Reward     uint64 `json:"reward_balance"`
	BountyPool uint64 `json:"bounty_pool_balance"`
}

// Metrics is the reporting-history view of a project.
type Metrics struct {
	LastScore      uint64    `json:"last_score"`
	AvgScore       uint64    `json:"avg_score"`
	TestCount      uint64    `json:"test_count"`
	LastReportTime time.Time `json:"last_report_time,omitzero"`
}

// Balances returns the project's pool balances.
func (p *Project) Balances() Balances {
	return Balances{Escrow: p.EscrowBalance, Reward: p.RewardBalance, BountyPool: p.BountyPool}
}

// Metrics returns the project's reporting metrics.
func (p *Project) Metrics() Metrics {
	return Metrics{
		LastScore:      p.LastScore,
		AvgScore:       p.AvgScore,
		TestCount:      p.TestCount,
		LastReportTime: p.LastReportTime,
	}
}

// ConfigParams are the owner-tunable settlement thresholds.
type ConfigParams struct {
	MinScore       uint64 `json:"min_score"`
	PayoutRateBps  uint64 `json:"payout_rate_bps"`
	PenaltyRateBps uint64 `json:"penalty_rate_bps"`
}

// Claim is a bounty entry keyed by (project, claimant). Created and
// incremented only by the project owner, zeroed only by the claimant.
type Claim struct {
	ProjectID int64     `json:"project_id"`
	Claimant  string    `json:"claimant"`
	Amount    uint64    `json:"amount"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Globals holds the process-wide singletons: exactly one administrator and
// one reporter at any time, plus the kill-switch.
type Globals struct {
	Administrator string `json:"administrator"`
	Reporter      string `json:"reporter"`
	Paused        bool   `json:"paused"`
}

// EventKind identifies an audit event.
type EventKind string

const (
	EventProjectCreated       EventKind = "project_created"
	EventEscrowDeposited      EventKind = "escrow_deposited"
	EventConfigUpdated        EventKind = "config_updated"
	EventProjectPaused        EventKind = "project_paused"
	EventProjectUnpaused      EventKind = "project_unpaused"
	EventResultRecorded       EventKind = "result_recorded"
	EventRewardWithdrawn      EventKind = "reward_withdrawn"
	EventBountyAllocated      EventKind = "bounty_allocated"
	EventBountyClaimed        EventKind = "bounty_claimed"
	EventAdministratorChanged EventKind = "administrator_changed"
	EventReporterChanged      EventKind = "reporter_changed"
	EventGlobalPaused         EventKind = "global_paused"
	EventGlobalUnpaused       EventKind = "global_unpaused"
)

// Event is the structured record emitted by every state-changing operation.
// The full balance history of a project can be reconstructed from its events
// without re-executing the ledger.
type Event struct {
	ID        string         `json:"id"`
	ProjectID int64          `json:"project_id"` // 0 for global operations
	Kind      EventKind      `json:"kind"`
	Actor     string         `json:"actor"`
	Role      Role           `json:"role"`
	Amount    uint64         `json:"amount"`
	Details   map[string]any `json:"details,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// ResultRecord is the outcome of a settlement, returned to the reporter and
// carried in the result_recorded event details.
type ResultRecord struct {
	ProjectID     int64    `json:"project_id"`
	Score         uint64   `json:"score"`
	CriticalCount uint64   `json:"critical_count"`
	EvidenceHash  string   `json:"evidence_hash,omitempty"`
	Passed        bool     `json:"passed"`
	AmountMoved   uint64   `json:"amount_moved"`
	Balances      Balances `json:"balances"`
	Metrics       Metrics  `json:"metrics"`
}
