package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `covenant is a custody and settlement ledger for safety SLA projects.

Core concepts (keep this mental model small):
- Project: pooled collateral split into three disjoint pools: escrow, reward, and bounty.
- Escrow: the owner's collateral at stake. Only settlements move value out of it.
- Reward: value earned by passing safety reports. The owner withdraws it in full.
- Bounty pool: value accumulated from failing reports. The owner allocates it to researchers, who claim it.
- Settlement: the reporter submits a score; pass moves escrow*payout_rate into reward, fail moves escrow*penalty_rate into the bounty pool (doubled when critical findings are present).
- Roles: one administrator (kill-switch, role transfers), one reporter (score attestations), per-project owners, and claimants.

Rules of engagement (default workflow):
1) Orient: list_projects and get_globals to see what exists and who holds the roles.
2) Inspect cheaply: get_balances / get_project_metrics before pulling full project state.
3) Owners: create_project with an initial deposit, top up with deposit_escrow, tune thresholds with update_project_config.
4) Reporter: record_test_result once per test run; the result includes the settled amounts and post balances.
5) Bounties: owners allocate_bounty to a researcher; the researcher runs claim_bounty to redeem everything allocated to them.
6) Audit: list_events reconstructs every balance change; each settlement and transfer is one event.

Amounts are base token units (no decimals). Rates are basis points: 10000 = 100%.
Scores are 0-100; a score at or above the project's min_score passes.

Docs (progressive disclosure):
- covenant://docs/concepts (pools, roles, invariants)
- covenant://docs/settlement (exact settlement arithmetic)
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "covenant://docs/concepts",
		Name:        "docs_concepts",
		Title:       "Concepts and invariants",
		Description: "Pools, roles, pause semantics, and the conservation invariant.",
		Content: `# Concepts and invariants

## Pools

Every project holds three disjoint pools in base token units:

- **escrow**: collateral deposited by the owner. Decreases only through settlement.
- **reward**: accumulated payouts from passing reports. ` + "`withdraw_reward`" + ` empties it to the owner.
- **bounty pool**: accumulated penalties from failing reports. Owners carve allocations out of it; claimants redeem allocations.

Conservation: value moved out of escrow always lands in exactly one of the
other two pools. Outbound transfers (withdraw, claim) leave the ledger
entirely and are mirrored by the token accounts.

## Roles

- **administrator**: one account. Controls the global kill-switch and transfers both singleton roles.
- **reporter**: one account. The only caller allowed to submit score attestations.
- **owner**: per project, fixed at creation, never transferable.
- **claimant**: any account holding a bounty allocation.

Roles are resolved fresh on every call; there is no session state.

## Pause semantics

- Global pause rejects every operation except ` + "`unpause_all`" + ` (and ` + "`pause_all`" + ` itself).
- A paused project rejects ` + "`record_test_result`" + ` and ` + "`deposit_escrow`" + ` but still allows
  config updates, reward withdrawal, bounty allocation, and bounty claims.
- Projects are never deleted. Pausing is the only way to retire one.

## Failure atomicity

Every operation either fully applies (balances, token movement, audit event)
or leaves no trace. A failed token transfer rolls back the balance change it
belonged to.
`,
	},
	{
		URI:         "covenant://docs/settlement",
		Name:        "docs_settlement",
		Title:       "Settlement arithmetic",
		Description: "The exact integer arithmetic behind record_test_result.",
		Content: `# Settlement arithmetic

All arithmetic is unsigned integer math on base token units. Rates are basis
points (bps): 10000 bps = 100%.

## Pass (score >= min_score)

    moved = min(escrow * payout_rate_bps / 10000, escrow)
    escrow -= moved
    reward += moved

## Fail (score < min_score)

    penalty = escrow * penalty_rate_bps / 10000
    if critical_count > 0: penalty *= 2
    moved = min(penalty, escrow)
    escrow -= moved
    bounty_pool += moved

The doubling applies whenever at least one critical finding is present,
regardless of how many. The clamp to escrow means a settlement can drain the
pool but never overdraw it.

## Metrics fold

    avg_score = (avg_score * test_count + score) / (test_count + 1)   // truncating
    test_count += 1
    last_score = score

A zero-escrow project still folds metrics; the settlement just moves zero.

## Worked example

Escrow 10000, payout 500 bps, penalty 500 bps, min_score 70:

- score 85: moves 500 escrow -> reward (escrow 9500).
- then score 40, no criticals: penalty = 9500 * 500 / 10000 = 475 -> bounty pool.
- same fail with criticals: 950 instead.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
