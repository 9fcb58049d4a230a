package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/covenant-ledger/covenant/internal/domain/vault"
)

type ack struct {
	Status string `json:"status"`
}

var okAck = ack{Status: "ok"}

type projectIDArgs struct {
	ProjectID int64 `json:"project_id" jsonschema:"Project identifier"`
}

type createProjectArgs struct {
	MinScore       uint64 `json:"min_score" jsonschema:"Passing score threshold (0-100)"`
	PayoutRateBps  uint64 `json:"payout_rate_bps" jsonschema:"Reward rate in basis points of escrow (0-10000)"`
	PenaltyRateBps uint64 `json:"penalty_rate_bps" jsonschema:"Penalty rate in basis points of escrow (0-10000)"`
	InitialDeposit uint64 `json:"initial_deposit" jsonschema:"Initial escrow deposit in base token units (must be positive)"`
}

type updateConfigArgs struct {
	ProjectID      int64  `json:"project_id" jsonschema:"Project identifier"`
	MinScore       uint64 `json:"min_score" jsonschema:"Passing score threshold (0-100)"`
	PayoutRateBps  uint64 `json:"payout_rate_bps" jsonschema:"Reward rate in basis points of escrow (0-10000)"`
	PenaltyRateBps uint64 `json:"penalty_rate_bps" jsonschema:"Penalty rate in basis points of escrow (0-10000)"`
}

type depositArgs struct {
	ProjectID int64  `json:"project_id" jsonschema:"Project identifier"`
	Amount    uint64 `json:"amount" jsonschema:"Deposit amount in base token units"`
}

type recordResultArgs struct {
	ProjectID     int64  `json:"project_id" jsonschema:"Project identifier"`
	Score         uint64 `json:"score" jsonschema:"Safety score (0-100)"`
	CriticalCount uint64 `json:"critical_count" jsonschema:"Number of critical findings; any doubles the penalty"`
	EvidenceHash  string `json:"evidence_hash,omitempty" jsonschema:"Hash of the test evidence bundle"`
}

type allocateBountyArgs struct {
	ProjectID    int64  `json:"project_id" jsonschema:"Project identifier"`
	Claimant     string `json:"claimant" jsonschema:"Account address of the researcher"`
	Amount       uint64 `json:"amount" jsonschema:"Allocation amount in base token units"`
	EvidenceHash string `json:"evidence_hash,omitempty" jsonschema:"Hash of the finding being rewarded"`
}

type addressArgs struct {
	Address string `json:"address" jsonschema:"Account address"`
}

type amountResult struct {
	Amount uint64 `json:"amount"`
}

type claimArgs struct {
	ProjectID int64  `json:"project_id" jsonschema:"Project identifier"`
	Claimant  string `json:"claimant" jsonschema:"Account address of the researcher"`
}

type listEventsArgs struct {
	ProjectID *int64   `json:"project_id,omitempty" jsonschema:"Filter by project identifier"`
	Kinds     []string `json:"kinds,omitempty" jsonschema:"Filter by event kinds"`
	Limit     int      `json:"limit,omitempty" jsonschema:"Maximum number of events (default 100)"`
	Offset    int      `json:"offset,omitempty" jsonschema:"Offset for pagination"`
}

type projectListResult struct {
	Projects []vault.Project `json:"projects"`
}

type eventListResult struct {
	Events []vault.Event `json:"events"`
}

// registerTools registers all ledger tools on the server.
func registerTools(server *sdkmcp.Server, svc LedgerService) {
	// Project lifecycle
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "create_project",
		Description: "Register a new project; the caller becomes its owner and funds the initial escrow deposit",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args createProjectArgs) (*sdkmcp.CallToolResult, *vault.Project, error) {
		actor := getActor(ctx)
		if actor == "" {
			return nil, nil, errMissingActor
		}
		proj, err := svc.CreateProject(ctx, actor, vault.CreateProjectRequest{
			Config: vault.ConfigParams{
				MinScore:       args.MinScore,
				PayoutRateBps:  args.PayoutRateBps,
				PenaltyRateBps: args.PenaltyRateBps,
			},
			InitialDeposit: args.InitialDeposit,
		})
		if err != nil {
			return nil, nil, mapErr(err)
		}
		return nil, proj, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "update_project_config",
		Description: "Update a project's settlement thresholds (owner only); new rates apply from the next report",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args updateConfigArgs) (*sdkmcp.CallToolResult, ack, error) {
		actor := getActor(ctx)
		if actor == "" {
			return nil, ack{}, errMissingActor
		}
		err := svc.UpdateConfig(ctx, actor, args.ProjectID, vault.ConfigParams{
			MinScore:       args.MinScore,
			PayoutRateBps:  args.PayoutRateBps,
			PenaltyRateBps: args.PenaltyRateBps,
		})
		if err != nil {
			return nil, ack{}, mapErr(err)
		}
		return nil, okAck, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "pause_project",
		Description: "Pause a project: reports and deposits are rejected, withdrawals and claims keep working",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args projectIDArgs) (*sdkmcp.CallToolResult, ack, error) {
		actor := getActor(ctx)
		if actor == "" {
			return nil, ack{}, errMissingActor
		}
		if err := svc.PauseProject(ctx, actor, args.ProjectID); err != nil {
			return nil, ack{}, mapErr(err)
		}
		return nil, okAck, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "unpause_project",
		Description: "Unpause a project so reports and deposits are accepted again",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args projectIDArgs) (*sdkmcp.CallToolResult, ack, error) {
		actor := getActor(ctx)
		if actor == "" {
			return nil, ack{}, errMissingActor
		}
		if err := svc.UnpauseProject(ctx, actor, args.ProjectID); err != nil {
			return nil, ack{}, mapErr(err)
		}
		return nil, okAck, nil
	})

	// Custody
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "deposit_escrow",
		Description: "Deposit additional collateral into a project's escrow pool (owner only)",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args depositArgs) (*sdkmcp.CallToolResult, ack, error) {
		actor := getActor(ctx)
		if actor == "" {
			return nil, ack{}, errMissingActor
		}
		if err := svc.DepositEscrow(ctx, actor, args.ProjectID, args.Amount); err != nil {
			return nil, ack{}, mapErr(err)
		}
		return nil, okAck, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "withdraw_reward",
		Description: "Withdraw the project's entire accrued reward balance to the owner",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args projectIDArgs) (*sdkmcp.CallToolResult, amountResult, error) {
		actor := getActor(ctx)
		if actor == "" {
			return nil, amountResult{}, errMissingActor
		}
		amount, err := svc.WithdrawReward(ctx, actor, args.ProjectID)
		if err != nil {
			return nil, amountResult{}, mapErr(err)
		}
		return nil, amountResult{Amount: amount}, nil
	})

	// Settlement
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "record_test_result",
		Description: "Submit a safety score attestation and settle it against the project's escrow (reporter only)",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args recordResultArgs) (*sdkmcp.CallToolResult, *vault.ResultRecord, error) {
		actor := getActor(ctx)
		if actor == "" {
			return nil, nil, errMissingActor
		}
		rec, err := svc.RecordResult(ctx, actor, vault.ResultRequest{
			ProjectID:     args.ProjectID,
			Score:         args.Score,
			CriticalCount: args.CriticalCount,
			EvidenceHash:  args.EvidenceHash,
		})
		if err != nil {
			return nil, nil, mapErr(err)
		}
		return nil, rec, nil
	})

	// Bounties
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "allocate_bounty",
		Description: "Earmark part of the project's bounty pool for a researcher (owner only)",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args allocateBountyArgs) (*sdkmcp.CallToolResult, ack, error) {
		actor := getActor(ctx)
		if actor == "" {
			return nil, ack{}, errMissingActor
		}
		if err := svc.AllocateBounty(ctx, actor, args.ProjectID, args.Claimant, args.Amount, args.EvidenceHash); err != nil {
			return nil, ack{}, mapErr(err)
		}
		return nil, okAck, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "claim_bounty",
		Description: "Redeem the caller's entire allocated bounty for a project",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args projectIDArgs) (*sdkmcp.CallToolResult, amountResult, error) {
		actor := getActor(ctx)
		if actor == "" {
			return nil, amountResult{}, errMissingActor
		}
		amount, err := svc.ClaimBounty(ctx, actor, args.ProjectID)
		if err != nil {
			return nil, amountResult{}, mapErr(err)
		}
		return nil, amountResult{Amount: amount}, nil
	})

	// Administration
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "set_administrator",
		Description: "Transfer the administrator role to another account (administrator only)",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args addressArgs) (*sdkmcp.CallToolResult, ack, error) {
		actor := getActor(ctx)
		if actor == "" {
			return nil, ack{}, errMissingActor
		}
		if err := svc.SetAdministrator(ctx, actor, args.Address); err != nil {
			return nil, ack{}, mapErr(err)
		}
		return nil, okAck, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "set_reporter",
		Description: "Transfer the reporter role to another account (administrator only)",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args addressArgs) (*sdkmcp.CallToolResult, ack, error) {
		actor := getActor(ctx)
		if actor == "" {
			return nil, ack{}, errMissingActor
		}
		if err := svc.SetReporter(ctx, actor, args.Address); err != nil {
			return nil, ack{}, mapErr(err)
		}
		return nil, okAck, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "pause_all",
		Description: "Engage the global kill-switch: every operation except unpausing is rejected (administrator only)",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ struct{}) (*sdkmcp.CallToolResult, ack, error) {
		actor := getActor(ctx)
		if actor == "" {
			return nil, ack{}, errMissingActor
		}
		if err := svc.PauseGlobal(ctx, actor); err != nil {
			return nil, ack{}, mapErr(err)
		}
		return nil, okAck, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "unpause_all",
		Description: "Release the global kill-switch (administrator only)",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ struct{}) (*sdkmcp.CallToolResult, ack, error) {
		actor := getActor(ctx)
		if actor == "" {
			return nil, ack{}, errMissingActor
		}
		if err := svc.UnpauseGlobal(ctx, actor); err != nil {
			return nil, ack{}, mapErr(err)
		}
		return nil, okAck, nil
	})

	// Reads
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_project",
		Description: "Get a project's full state: configuration, pool balances, and reporting metrics",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args projectIDArgs) (*sdkmcp.CallToolResult, *vault.Project, error) {
		proj, err := svc.GetProject(ctx, args.ProjectID)
		if err != nil {
			return nil, nil, mapErr(err)
		}
		return nil, proj, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_projects",
		Description: "List all registered projects",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ struct{}) (*sdkmcp.CallToolResult, projectListResult, error) {
		projects, err := svc.ListProjects(ctx)
		if err != nil {
			return nil, projectListResult{}, mapErr(err)
		}
		if projects == nil {
			projects = []vault.Project{}
		}
		return nil, projectListResult{Projects: projects}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_balances",
		Description: "Get a project's escrow, reward, and bounty pool balances",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args projectIDArgs) (*sdkmcp.CallToolResult, vault.Balances, error) {
		balances, err := svc.GetBalances(ctx, args.ProjectID)
		if err != nil {
			return nil, vault.Balances{}, mapErr(err)
		}
		return nil, balances, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_project_metrics",
		Description: "Get a project's reporting history: last score, running average, and test count",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args projectIDArgs) (*sdkmcp.CallToolResult, vault.Metrics, error) {
		metrics, err := svc.GetMetrics(ctx, args.ProjectID)
		if err != nil {
			return nil, vault.Metrics{}, mapErr(err)
		}
		return nil, metrics, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_claim",
		Description: "Get the bounty amount currently allocated to a claimant on a project",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args claimArgs) (*sdkmcp.CallToolResult, *vault.Claim, error) {
		claim, err := svc.GetClaim(ctx, args.ProjectID, args.Claimant)
		if err != nil {
			return nil, nil, mapErr(err)
		}
		return nil, claim, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_events",
		Description: "List audit events, newest first, optionally filtered by project and kind",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args listEventsArgs) (*sdkmcp.CallToolResult, eventListResult, error) {
		opts := vault.ListEventsOptions{
			ProjectID: args.ProjectID,
			Limit:     args.Limit,
			Offset:    args.Offset,
		}
		for _, kind := range args.Kinds {
			opts.Kinds = append(opts.Kinds, vault.EventKind(kind))
		}
		events, err := svc.ListEvents(ctx, opts)
		if err != nil {
			return nil, eventListResult{}, mapErr(err)
		}
		if events == nil {
			events = []vault.Event{}
		}
		return nil, eventListResult{Events: events}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_globals",
		Description: "Get the current administrator, reporter, and global pause state",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ struct{}) (*sdkmcp.CallToolResult, *vault.Globals, error) {
		g, err := svc.GetGlobals(ctx)
		if err != nil {
			return nil, nil, mapErr(err)
		}
		return nil, g, nil
	})
}
